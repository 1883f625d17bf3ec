package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/cv-ranker/internal/candidate"
)

type row struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Score float64 `json:"score"`
}

// File appends candidates to a JSON lines file.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *json.Encoder
}

func OpenFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store file %q: %w", path, err)
	}

	return &File{path: path, f: f, enc: json.NewEncoder(f)}, nil
}

func (s *File) Path() string {
	return s.path
}

func (s *File) Record(ctx context.Context, rec candidate.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(row{Name: rec.Name, Email: rec.Email, Score: rec.Score}); err != nil {
		return fmt.Errorf("append candidate %q: %w", rec.Name, err)
	}
	return nil
}

func (s *File) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
