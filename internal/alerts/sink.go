package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"wisecow/internal/models"
)

// Sink receives alerts one at a time. Emit must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, a models.Alert) error
}

// FileSink appends one JSON record per alert to a file. Records are never
// rewritten or deduplicated.
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Emit(_ context.Context, a models.Alert) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open alert file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}
