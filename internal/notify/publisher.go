// Package notify publishes shader build events to a running renderer over
// socket.io, so that it can hot-reload artifacts as soon as they are written.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/slangbuild/internal/ctxlog"
	"github.com/vk/slangbuild/internal/shader"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	DefaultCompiledEvent = "shader_compiled"
	DefaultFailedEvent   = "build_failed"

	connectTimeout = 15 * time.Second
)

// Options configures the connection and event names.
type Options struct {
	URL                string
	Namespace          string
	CompiledEvent      string
	FailedEvent        string
	InsecureSkipVerify bool
}

// emitter is the subset of *socket.Socket the publisher needs.
type emitter interface {
	Emit(ev string, args ...any) error
	Disconnect() *socket.Socket
}

// Publisher implements shader.Observer by emitting socket.io events.
type Publisher struct {
	io            emitter
	compiledEvent string
	failedEvent   string
	logger        *slog.Logger
}

// Dial connects to the socket.io server at opts.URL and waits for the
// connection to be established, the context to end, or a fixed timeout.
func Dial(ctx context.Context, opts Options) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "notify", "url", opts.URL)
	logger.Debug("Connecting build event publisher...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("notify URL %q must include a scheme and host", opts.URL)
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", connectTimeout)
	}

	logger.Info("Build event publisher connected.", "sid", io.Id())
	return newPublisher(io, opts, logger), nil
}

func newPublisher(io emitter, opts Options, logger *slog.Logger) *Publisher {
	p := &Publisher{
		io:            io,
		compiledEvent: opts.CompiledEvent,
		failedEvent:   opts.FailedEvent,
		logger:        logger,
	}
	if p.compiledEvent == "" {
		p.compiledEvent = DefaultCompiledEvent
	}
	if p.failedEvent == "" {
		p.failedEvent = DefaultFailedEvent
	}
	return p
}

// Compiled emits the compiled event for a successfully built artifact.
func (p *Publisher) Compiled(ctx context.Context, result *shader.Result) {
	p.emit(p.compiledEvent, CompiledPayload(result))
}

// Failed emits the failure event with the compiler's error output.
func (p *Publisher) Failed(ctx context.Context, err *shader.CompileError) {
	p.emit(p.failedEvent, FailedPayload(err))
}

// Emission is best effort; a dropped event never fails the build.
func (p *Publisher) emit(event string, payload map[string]any) {
	if err := p.io.Emit(event, payload); err != nil {
		p.logger.Warn("Failed to emit build event.", "event", event, "error", err)
		return
	}
	p.logger.Debug("Emitted build event.", "event", event, "source", payload["source"])
}

// Close disconnects from the server.
func (p *Publisher) Close() {
	p.logger.Debug("Disconnecting build event publisher.")
	p.io.Disconnect()
}

// CompiledPayload is the body of a compiled event.
func CompiledPayload(result *shader.Result) map[string]any {
	entrypoints := make([]map[string]any, 0, len(result.Entrypoints))
	for _, ep := range result.Entrypoints {
		entrypoints = append(entrypoints, map[string]any{
			"stage":    ep.Stage,
			"function": ep.Function,
		})
	}
	return map[string]any{
		"source":      result.Source,
		"output":      result.Output,
		"entrypoints": entrypoints,
	}
}

// FailedPayload is the body of a failure event.
func FailedPayload(err *shader.CompileError) map[string]any {
	return map[string]any{
		"source":    err.Source,
		"exit_code": err.ExitCode,
		"stderr":    string(err.Stderr),
	}
}
