// Package writer is the set-value path: validate against the schema,
// encode through the same scale the decoder uses, and queue the
// register write for the poll loop to issue between block reads.
package writer

import (
	"errors"
	"fmt"

	"github.com/openashp/aerona3-bridge/internal/decode"
	"github.com/openashp/aerona3-bridge/internal/schema"
)

// ErrQueueFull means the bounded write queue is saturated. The caller
// sees it synchronously; nothing was enqueued.
var ErrQueueFull = errors.New("writer: queue full")

// ValidationError rejects a set-value request before any wire traffic.
type ValidationError struct {
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("writer: %s: %s", e.ID, e.Reason)
}

// Request is one validated, encoded register write awaiting the wire.
type Request struct {
	Desc  *schema.Descriptor
	Value float64
	Words []uint16

	done chan error
}

// Complete delivers the wire outcome to the caller.
func (r Request) Complete(err error) {
	if r.done == nil {
		return
	}
	select {
	case r.done <- err:
	default:
	}
}

// DefaultQueueSize bounds how many writes may wait for the wire.
const DefaultQueueSize = 16

// Queue validates and buffers write requests. Producers are the
// presentation layers; the single consumer is the poll loop, which
// drains between block reads so reads and writes interleave only at
// block boundaries.
type Queue struct {
	schema *schema.Schema
	ch     chan Request
}

// NewQueue builds a queue. size <= 0 selects the default.
func NewQueue(s *schema.Schema, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		schema: s,
		ch:     make(chan Request, size),
	}
}

// SetValue validates value against the descriptor and enqueues the
// register write. Validation failures return a *ValidationError with
// zero wire traffic. The returned channel delivers the eventual wire
// outcome; on success the local value was already updated
// optimistically, to be confirmed by the next poll cycle.
func (q *Queue) SetValue(id string, value float64) (<-chan error, error) {
	d, ok := q.schema.ByID(id)
	if !ok {
		return nil, &ValidationError{ID: id, Reason: "unknown entity"}
	}
	if !d.Writable() {
		return nil, &ValidationError{ID: id, Reason: "entity is read-only"}
	}
	if d.Limits != nil && (value < d.Limits.Min || value > d.Limits.Max) {
		return nil, &ValidationError{
			ID:     id,
			Reason: fmt.Sprintf("value %v outside [%v, %v]", value, d.Limits.Min, d.Limits.Max),
		}
	}

	words, err := decode.Words(d, value)
	if err != nil {
		return nil, &ValidationError{ID: id, Reason: err.Error()}
	}

	req := Request{
		Desc:  d,
		Value: value,
		Words: words,
		done:  make(chan error, 1),
	}

	select {
	case q.ch <- req:
		return req.done, nil
	default:
		return nil, ErrQueueFull
	}
}

// TryNext pops the oldest pending write without blocking.
func (q *Queue) TryNext() (Request, bool) {
	select {
	case req := <-q.ch:
		return req, true
	default:
		return Request{}, false
	}
}

// Len reports how many writes are waiting.
func (q *Queue) Len() int { return len(q.ch) }
