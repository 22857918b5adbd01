// Package state owns the live entity values and their availability.
// The poll loop is the only writer; everyone else reads immutable
// snapshots.
package state

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Availability says whether an entity's last value can be trusted.
type Availability uint8

const (
	// Unknown: never successfully read since startup.
	Unknown Availability = iota
	// Available: the most recent read succeeded.
	Available
	// Unavailable: too many consecutive failures, or the connection
	// is down, or a derived metric's inputs are invalid.
	Unavailable
)

func (a Availability) String() string {
	switch a {
	case Unknown:
		return "unknown"
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("availability(%d)", uint8(a))
}

// EntityValue is one logical quantity as last observed. Values handed
// out in snapshots are copies; holders can never see a torn update.
type EntityValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`

	Value  float64 `json:"value"`
	Text   string  `json:"text,omitempty"`
	Binary *bool   `json:"binary,omitempty"`

	// Raw holds the register words behind the value; nil for
	// computed entities.
	Raw []uint16 `json:"-"`

	Computed bool `json:"computed,omitempty"`
	Writable bool `json:"writable,omitempty"`

	Availability Availability `json:"availability"`
	LastUpdated  time.Time    `json:"last_updated"`
}

// Snapshot is a point-in-time copy of every entity.
type Snapshot map[string]EntityValue

// DefaultFailureThreshold is how many consecutive block failures flip
// an entity to Unavailable.
const DefaultFailureThreshold = 3

// Store tracks entity values plus the two-level availability state:
// a per-entity consecutive-failure counter, and a connection-level
// override that hides everything the moment the link is down.
type Store struct {
	threshold int

	mu        sync.Mutex
	connected bool
	order     []string
	entities  map[string]*entity

	snap atomic.Pointer[Snapshot]
}

type entity struct {
	val       EntityValue
	failures  int
	permanent bool
}

// NewStore builds an empty store. threshold <= 0 selects the default.
func NewStore(threshold int) *Store {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	s := &Store{
		threshold: threshold,
		entities:  make(map[string]*entity),
	}
	empty := Snapshot{}
	s.snap.Store(&empty)
	return s
}

// Register announces an entity. Values start Unknown. Registration
// happens once at startup, before polling begins.
func (s *Store) Register(ev EntityValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.entities[ev.ID]; dup {
		return
	}
	ev.Availability = Unknown
	s.entities[ev.ID] = &entity{val: ev}
	s.order = append(s.order, ev.ID)
	s.publishLocked()
}

// MarkPermanentlyUnavailable pins an entity Unavailable for the life
// of the process (schema errors found at startup).
func (s *Store) MarkPermanentlyUnavailable(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entities[id]; ok {
		e.permanent = true
		e.val.Availability = Unavailable
		s.publishLocked()
	}
}

// SetNumeric records a successful read of a numeric entity.
func (s *Store) SetNumeric(id string, raw []uint16, value float64, text string, now time.Time) {
	s.set(id, func(e *entity) {
		e.val.Raw = raw
		e.val.Value = value
		e.val.Text = text
	}, now)
}

// SetBinary records a successful read of a bitfield bit.
func (s *Store) SetBinary(id string, b bool, now time.Time) {
	s.set(id, func(e *entity) {
		v := b
		e.val.Binary = &v
		if b {
			e.val.Value = 1
		} else {
			e.val.Value = 0
		}
	}, now)
}

// SetComputed records a derived metric output.
func (s *Store) SetComputed(id string, value float64, now time.Time) {
	s.set(id, func(e *entity) {
		e.val.Value = value
	}, now)
}

func (s *Store) set(id string, apply func(*entity), now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entities[id]
	if !ok || e.permanent {
		return
	}
	apply(e)
	e.failures = 0
	e.val.Availability = Available
	e.val.LastUpdated = now
	s.publishLocked()
}

// SetInvalid marks a derived output Unavailable because its validity
// predicate failed or an input is missing. The last value is kept for
// diagnostics but no longer advertised as current.
func (s *Store) SetInvalid(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entities[id]; ok && !e.permanent {
		e.failures = 0
		e.val.Availability = Unavailable
		s.publishLocked()
	}
}

// Fail counts one failed read (or decode) against each entity. The
// entity flips to Unavailable only after the configured number of
// consecutive failures, so a single lost block does not flap it.
func (s *Store) Fail(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		e, ok := s.entities[id]
		if !ok || e.permanent {
			continue
		}
		e.failures++
		if e.failures >= s.threshold && e.val.Availability != Unknown {
			e.val.Availability = Unavailable
		}
	}
	s.publishLocked()
}

// SetConnected flips the connection-level override. While down, every
// entity reads Unavailable regardless of its own counter; counters
// are preserved and resume untouched after reconnect.
func (s *Store) SetConnected(up bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected == up {
		return
	}
	s.connected = up
	s.publishLocked()
}

// Connected reports the connection-level override.
func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Get returns one entity from the current snapshot.
func (s *Store) Get(id string) (EntityValue, bool) {
	ev, ok := (*s.snap.Load())[id]
	return ev, ok
}

// View returns the current snapshot. The map is immutable; a new one
// is published on every change.
func (s *Store) View() Snapshot {
	return *s.snap.Load()
}

// IDs lists entity IDs in registration order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) publishLocked() {
	snap := make(Snapshot, len(s.entities))
	for id, e := range s.entities {
		ev := e.val
		if !s.connected && !e.permanent && ev.Availability != Unknown {
			ev.Availability = Unavailable
		}
		snap[id] = ev
	}
	s.snap.Store(&snap)
}
