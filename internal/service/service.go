package service

import (
	"context"
	"errors"
	"time"

	"example.com/daynotes/internal/notes"
	"example.com/daynotes/internal/stringsx"

	"github.com/rs/zerolog"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrBadDate          = errors.New("date must be formatted as YYYY-MM-DD")
)

// Service contains the note domain policy independent from
// transport and storage. It holds no cached record state: every
// operation re-reads through the store.
type Service struct {
	store notes.Store
	log   zerolog.Logger
	now   func() time.Time
}

func New(store notes.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// SetClock overrides the timestamp source. Tests only.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Today returns the current local date in store key format. Callers
// resolve it once per request so a date rollover mid-operation cannot
// split one request across two keys.
func (s *Service) Today() string {
	return s.now().Format(notes.DateFormat)
}

type SaveResult struct {
	Date        string
	LastUpdated time.Time
	Deleted     bool
}

// SaveNote persists content for date, or removes the record when the
// content trims to empty. Both branches succeed; deleting a missing
// record is a no-op.
func (s *Service) SaveNote(ctx context.Context, date, content string) (SaveResult, error) {
	if !notes.ValidDate(date) {
		return SaveResult{}, ErrBadDate
	}

	if stringsx.IsEmpty(content) {
		if _, err := s.store.Delete(ctx, date); err != nil {
			s.log.Error().Err(err).Str("date", date).Msg("save: delete empty note failed")
			return SaveResult{}, err
		}
		return SaveResult{Date: date, LastUpdated: s.now().UTC(), Deleted: true}, nil
	}

	r, err := s.store.Upsert(ctx, date, content, true)
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("save note failed")
		return SaveResult{}, err
	}
	return SaveResult{Date: r.Date, LastUpdated: r.LastUpdated}, nil
}

type DeleteResult struct {
	Date    string
	Existed bool
}

// DeleteNote removes the record for date. A missing record is
// reported, not an error; repeating the call is safe.
func (s *Service) DeleteNote(ctx context.Context, date string) (DeleteResult, error) {
	if !notes.ValidDate(date) {
		return DeleteResult{}, ErrBadDate
	}

	existed, err := s.store.Delete(ctx, date)
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("delete note failed")
		return DeleteResult{}, err
	}
	return DeleteResult{Date: date, Existed: existed}, nil
}

type RenameResult struct {
	OldDate string
	NewDate string
	Record  notes.Record
}

// RenameNote re-keys the record at oldDate and applies title (empty
// clears any existing title). Collisions and a missing source are
// surfaced as notes.ErrCollision and notes.ErrNotFound.
func (s *Service) RenameNote(ctx context.Context, oldDate, newDate, title string) (RenameResult, error) {
	if oldDate == "" || newDate == "" {
		return RenameResult{}, ErrMissingParameter
	}
	if !notes.ValidDate(oldDate) || !notes.ValidDate(newDate) {
		return RenameResult{}, ErrBadDate
	}

	r, err := s.store.Rename(ctx, oldDate, newDate, title)
	if err != nil {
		if !errors.Is(err, notes.ErrNotFound) && !errors.Is(err, notes.ErrCollision) {
			s.log.Error().Err(err).Str("old_date", oldDate).Str("new_date", newDate).Msg("rename note failed")
		}
		return RenameResult{}, err
	}
	return RenameResult{OldDate: oldDate, NewDate: newDate, Record: r}, nil
}

// ListNotes returns all record summaries, newest date first. On
// storage failure it degrades to an empty list and reports the error
// alongside, so the index view stays renderable.
func (s *Service) ListNotes(ctx context.Context) ([]notes.Summary, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list notes failed")
		return []notes.Summary{}, err
	}
	return out, nil
}

type NoteView struct {
	Date        string
	Content     string
	CustomTitle string
	LastUpdated *time.Time
}

// GetNote returns the note for date. Absence is not an error: the
// view comes back with empty content and nil timestamp.
func (s *Service) GetNote(ctx context.Context, date string) (NoteView, error) {
	if !notes.ValidDate(date) {
		return NoteView{}, ErrBadDate
	}

	r, err := s.store.Get(ctx, date)
	if errors.Is(err, notes.ErrNotFound) {
		return NoteView{Date: date}, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("date", date).Msg("get note failed")
		return NoteView{Date: date}, err
	}
	lu := r.LastUpdated
	return NoteView{
		Date:        r.Date,
		Content:     r.Content,
		CustomTitle: r.CustomTitle,
		LastUpdated: &lu,
	}, nil
}
