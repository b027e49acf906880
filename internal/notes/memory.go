package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/daynotes/internal/stringsx"
)

// MemoryStore keeps all records in a map guarded by a single mutex.
// It backs unit tests and the STORAGE_BACKEND=memory mode.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source. Tests only.
func (s *MemoryStore) SetClock(now func() time.Time) { s.now = now }

func (s *MemoryStore) Get(_ context.Context, date string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[date]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Upsert(_ context.Context, date, content string, preserveTitle bool) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r, ok := s.records[date]
	if !ok {
		r = Record{Date: date, CreatedAt: now}
	}
	if !preserveTitle {
		r.CustomTitle = ""
	}
	r.Content = content
	r.LastUpdated = now
	s.records[date] = r
	return r, nil
}

func (s *MemoryStore) Delete(_ context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.records[date]
	delete(s.records, date)
	return ok, nil
}

func (s *MemoryStore) Rename(_ context.Context, oldDate, newDate, title string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[oldDate]
	if !ok {
		return Record{}, ErrNotFound
	}
	if oldDate != newDate {
		if _, occupied := s.records[newDate]; occupied {
			return Record{}, ErrCollision
		}
	}

	delete(s.records, oldDate)
	r.Date = newDate
	r.CustomTitle = title
	r.LastUpdated = s.now()
	s.records[newDate] = r
	return r, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
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
