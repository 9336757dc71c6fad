package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrIndexOutOfRange is reported by Switch and Rename when the index does not
// point at a live consultation.
var ErrIndexOutOfRange = errors.New("consultation index out of range")

// ErrNoActiveConsultation is reported when an operation needs an active
// consultation and the store is empty.
var ErrNoActiveConsultation = errors.New("no active consultation")

// Saver is the persistence hook invoked after every state-mutating operation,
// before control returns to the caller. The default backend is in-memory, but
// the contract is kept so a durable backend can be swapped in.
type Saver interface {
	Save(ctx context.Context, c *Consultation) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, c *Consultation) error

func (f SaverFunc) Save(ctx context.Context, c *Consultation) error {
	return f(ctx, c)
}

// Store owns the consultations of one user session and the active-selection
// pointer. It is not safe for concurrent use; the design assumes one active
// caller per session.
type Store struct {
	consultations []*Consultation
	active        int // -1 when the store is empty
	nextID        int
	saver         Saver
}

func NewStore(saver Saver) *Store {
	return &Store{
		active: -1,
		nextID: 1,
		saver:  saver,
	}
}

// Create builds a consultation with a fresh sequential id and an empty message
// log, appends it, and shifts focus to it.
func (s *Store) Create(ctx context.Context) (*Consultation, error) {
	now := time.Now()
	c := &Consultation{
		ID:             s.nextID,
		Title:          fmt.Sprintf("Consultation %d", s.nextID),
		CreatedAt:      now,
		UpdatedAt:      now,
		OnboardingStep: stepGreeting,
	}
	s.nextID++

	s.consultations = append(s.consultations, c)
	s.active = len(s.consultations) - 1

	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Switch moves the active pointer to index.
func (s *Store) Switch(index int) error {
	if index < 0 || index >= len(s.consultations) {
		return ErrIndexOutOfRange
	}
	s.active = index
	return nil
}

// Rename sets the title of the consultation at index.
func (s *Store) Rename(ctx context.Context, index int, newTitle string) error {
	if index < 0 || index >= len(s.consultations) {
		return ErrIndexOutOfRange
	}
	s.consultations[index].Title = newTitle
	return s.Save(ctx, s.consultations[index])
}

// Active returns the consultation the pointer selects, or nil when the store
// is empty.
func (s *Store) Active() *Consultation {
	if s.active < 0 || s.active >= len(s.consultations) {
		return nil
	}
	return s.consultations[s.active]
}

// ActiveIndex returns the active pointer, -1 when the store is empty.
func (s *Store) ActiveIndex() int {
	if s.active < 0 || s.active >= len(s.consultations) {
		return -1
	}
	return s.active
}

// List returns the consultations in insertion order.
func (s *Store) List() []*Consultation {
	return s.consultations
}

func (s *Store) Len() int {
	return len(s.consultations)
}

// Save runs the persistence hook for c.
func (s *Store) Save(ctx context.Context, c *Consultation) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.Save(ctx, c); err != nil {
		return fmt.Errorf("save consultation %d: %w", c.ID, err)
	}
	return nil
}
