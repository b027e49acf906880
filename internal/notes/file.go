package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"example.com/daynotes/internal/stringsx"
)

// FileStore persists all records as a single JSON document.
// The full state lives in memory under one mutex; every mutation is
// written to a temp file and renamed over the store file, so readers
// of the file never observe a partial write.
type FileStore struct {
	path string

	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:    path,
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.records); err != nil {
			return nil, fmt.Errorf("parse notes file %s: %w", path, err)
		}
	}
	return s, nil
}

// SetClock overrides the timestamp source. Tests only.
func (s *FileStore) SetClock(now func() time.Time) { s.now = now }

// persist writes the whole record set atomically.
// Callers must hold s.mu.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".notes-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, date string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[date]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *FileStore) Upsert(_ context.Context, date, content string, preserveTitle bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	prev, had := s.records[date]
	r := prev
	if !had {
		r = Record{Date: date, CreatedAt: now}
	}
	if !preserveTitle {
		r.CustomTitle = ""
	}
	r.Content = content
	r.LastUpdated = now

	s.records[date] = r
	if err := s.persist(); err != nil {
		// Roll back the in-memory state so memory and disk agree.
		if had {
			s.records[date] = prev
		} else {
			delete(s.records, date)
		}
		return Record{}, fmt.Errorf("persist notes: %w", err)
	}
	return r, nil
}

func (s *FileStore) Delete(_ context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[date]
	if !ok {
		return false, nil
	}
	delete(s.records, date)
	if err := s.persist(); err != nil {
		s.records[date] = prev
		return false, fmt.Errorf("persist notes: %w", err)
	}
	return true, nil
}

func (s *FileStore) Rename(_ context.Context, oldDate, newDate, title string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.records[oldDate]
	if !ok {
		return Record{}, ErrNotFound
	}
	if oldDate != newDate {
		if _, occupied := s.records[newDate]; occupied {
			return Record{}, ErrCollision
		}
	}

	r := prev
	r.Date = newDate
	r.CustomTitle = title
	r.LastUpdated = s.now()

	delete(s.records, oldDate)
	s.records[newDate] = r
	if err := s.persist(); err != nil {
		delete(s.records, newDate)
		s.records[oldDate] = prev
		return Record{}, fmt.Errorf("persist notes: %w", err)
	}
	return r, nil
}

func (s *FileStore) List(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, Summary{
			Date:        r.Date,
			CustomTitle: r.CustomTitle,
			LastUpdated: r.LastUpdated,
			Preview:     stringsx.Clip(r.Content, PreviewLen),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
