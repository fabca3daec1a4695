package app

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vk/slangbuild/internal/shader"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// BatchRecord is the outcome of one batch observed during a test.
type BatchRecord struct {
	Summary *shader.Summary
	Err     error
}

// SetupAppTest creates a new app instance for system testing. Every batch
// outcome is sent to the returned channel, which is buffered generously so
// that watch-mode tests never block the watcher.
func SetupAppTest(t *testing.T, cfg *Config, compiler shader.Compiler) (*App, *SafeBuffer, <-chan BatchRecord) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, compiler)
	testApp.watchDebounce = 20 * time.Millisecond

	batches := make(chan BatchRecord, 64)
	testApp.batchDone = func(s *shader.Summary, err error) {
		batches <- BatchRecord{Summary: s, Err: err}
	}

	t.Cleanup(func() {
		if os.Getenv("SLANGBUILD_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer, batches
}
