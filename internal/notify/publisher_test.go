package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/slangbuild/internal/shader"
	"github.com/zishang520/socket.io-client-go/socket"
)

type emitted struct {
	event   string
	payload map[string]any
}

type fakeEmitter struct {
	events       []emitted
	err          error
	disconnected bool
}

func (f *fakeEmitter) Emit(ev string, args ...any) error {
	f.events = append(f.events, emitted{event: ev, payload: args[0].(map[string]any)})
	return f.err
}

func (f *fakeEmitter) Disconnect() *socket.Socket {
	f.disconnected = true
	return nil
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func TestPublisher_Compiled(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	io := &fakeEmitter{}
	logger, _ := testLogger()
	p := newPublisher(io, Options{}, logger)
	result := &shader.Result{
		Source:      "assets/shaders/slang/foo/bar.slang",
		Output:      "assets/shaders/spirv/foo/bar.spv",
		Entrypoints: []shader.Entrypoint{{Stage: "fragment", Function: "main"}},
	}

	// --- Act ---
	p.Compiled(context.Background(), result)
	p.Close()

	// --- Assert ---
	want := []emitted{{
		event: DefaultCompiledEvent,
		payload: map[string]any{
			"source": "assets/shaders/slang/foo/bar.slang",
			"output": "assets/shaders/spirv/foo/bar.spv",
			"entrypoints": []map[string]any{
				{"stage": "fragment", "function": "main"},
			},
		},
	}}
	if diff := cmp.Diff(want, io.events, cmp.AllowUnexported(emitted{})); diff != "" {
		t.Errorf("emitted events mismatch (-want +got):\n%s", diff)
	}
	require.True(t, io.disconnected)
}

func TestPublisher_FailedUsesConfiguredEvent(t *testing.T) {
	t.Parallel()

	io := &fakeEmitter{}
	logger, _ := testLogger()
	p := newPublisher(io, Options{FailedEvent: "shader_error"}, logger)

	p.Failed(context.Background(), &shader.CompileError{
		Source:   "a.slang",
		ExitCode: 1,
		Stderr:   []byte("a.slang(3): error"),
	})

	require.Len(t, io.events, 1)
	require.Equal(t, "shader_error", io.events[0].event)
	require.Equal(t, "a.slang(3): error", io.events[0].payload["stderr"])
	require.Equal(t, 1, io.events[0].payload["exit_code"])
}

func TestPublisher_EmitErrorIsLoggedOnly(t *testing.T) {
	t.Parallel()

	io := &fakeEmitter{err: errors.New("socket closed")}
	logger, buf := testLogger()
	p := newPublisher(io, Options{}, logger)

	require.NotPanics(t, func() {
		p.Compiled(context.Background(), &shader.Result{Source: "a.slang"})
	})
	require.Contains(t, buf.String(), "socket closed")
}

func TestDial_InvalidURL(t *testing.T) {
	t.Parallel()

	testCases := []string{"://missing-scheme", "localhost:3000", ""}
	for _, raw := range testCases {
		_, err := Dial(context.Background(), Options{URL: raw})
		require.Error(t, err, "url %q", raw)
	}
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, Options{URL: "http://127.0.0.1:1/"})

	require.Error(t, err)
}
