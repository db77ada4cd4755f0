package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"sync"

	"github.com/dtroode/sessiongate/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))}
}

// Buffer is a goroutine-safe sink for captured log output.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// MakeCapturingLogger returns a debug-level text logger and the buffer it writes to.
func MakeCapturingLogger() (*logger.Logger, *Buffer) {
	buf := &Buffer{}
	return logger.NewWithFormat(int(slog.LevelDebug), "text", buf), buf
}
