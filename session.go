package magicpix

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode is the screen a session is on.
type Mode int

const (
	// ModeCreating shows the prompt box for a brand new image.
	ModeCreating Mode = iota

	// ModeEditing shows the current image with edit controls. A session in
	// this mode always has a current image.
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeCreating:
		return "creating"
	case ModeEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// SessionSnapshot is a consistent copy of a session's state.
type SessionSnapshot struct {
	Mode    Mode
	Current *ImageRecord
	History []ImageRecord // most recent first
}

// Session owns the current image, the image history and the active mode for
// one user's interaction. History only ever grows.
type Session struct {
	mu sync.RWMutex

	mode    Mode
	current *ImageRecord

	// records is kept oldest first; readers see it reversed.
	records []ImageRecord

	now   func() time.Time
	newID func() string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock sets the time source used to stamp new records.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDGenerator sets the function used to assign record IDs.
func WithIDGenerator(newID func() string) SessionOption {
	return func(s *Session) {
		s.newID = newID
	}
}

// NewSession creates an empty session in ModeCreating.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		mode:  ModeCreating,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnGenerated records a freshly generated image, makes it current and
// switches to ModeEditing. Only valid while creating.
func (s *Session) OnGenerated(image, prompt string) (ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeCreating {
		return ImageRecord{}, fmt.Errorf("%w: generated while %s", ErrInvalidTransition, s.mode)
	}
	return s.generatedLocked(image, prompt)
}

// recordGenerated is OnGenerated without the mode check. A generation that
// finishes after the user navigated away is still kept and shown.
func (s *Session) recordGenerated(image, prompt string) (ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generatedLocked(image, prompt)
}

func (s *Session) generatedLocked(image, prompt string) (ImageRecord, error) {
	rec, err := s.record(image, prompt)
	if err != nil {
		return ImageRecord{}, err
	}
	s.mode = ModeEditing
	return rec, nil
}

// OnEdited records the result of an edit and makes it current. The record's
// prompt is the edit instruction. Only valid while editing.
func (s *Session) OnEdited(image, instruction string) (ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeEditing {
		return ImageRecord{}, fmt.Errorf("%w: edited while %s", ErrInvalidTransition, s.mode)
	}

	return s.record(image, instruction)
}

// recordEdited is OnEdited without the mode check. The mode is left alone:
// an edit landing on the create screen becomes current without leaving it.
func (s *Session) recordEdited(image, instruction string) (ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(image, instruction)
}

// GoToCreate switches to ModeCreating. The current image and history are kept.
func (s *Session) GoToCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeCreating
}

// SelectFromHistory makes the record with the given id current and switches
// to ModeEditing. History order is unchanged.
func (s *Session) SelectFromHistory(id string) (ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			s.current = &rec
			s.mode = ModeEditing
			return rec, nil
		}
	}
	return ImageRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// Mode returns the active mode.
func (s *Session) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Current returns the current image, if any.
func (s *Session) Current() (ImageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ImageRecord{}, false
	}
	return *s.current, true
}

// History returns every record, most recent first.
func (s *Session) History() []ImageRecord {
	return s.Recent(-1)
}

// Recent returns up to n records, most recent first. A negative n returns all.
func (s *Session) Recent(n int) []ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(n)
}

// Len returns the number of records in history.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a consistent copy of the whole session.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SessionSnapshot{
		Mode:    s.mode,
		History: s.recentLocked(-1),
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	return snap
}

func (s *Session) recentLocked(n int) []ImageRecord {
	if n < 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]ImageRecord, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// record must be called with mu held.
func (s *Session) record(image, prompt string) (ImageRecord, error) {
	if image == "" {
		return ImageRecord{}, ErrEmptyImageData
	}

	rec := ImageRecord{
		ID:        s.newID(),
		Data:      image,
		Prompt:    prompt,
		Timestamp: s.now(),
	}
	s.records = append(s.records, rec)

	cur := rec
	s.current = &cur
	return rec, nil
}
