// Package decode turns raw register words into typed physical values
// and back. Pure functions, no I/O.
package decode

import (
	"fmt"
	"math"

	"github.com/openashp/aerona3-bridge/internal/schema"
)

// Error is a per-entity decode failure. It never spills over to other
// entities sharing the same block.
type Error struct {
	ID     string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode: %s: %s", e.ID, e.Reason)
}

// Raw combines a descriptor's words into one signed integer.
// Two's complement for the signed kinds; 32-bit values combine per
// the declared word order.
func Raw(d *schema.Descriptor, words []uint16) (int64, error) {
	if len(words) < int(d.Span()) {
		return 0, &Error{ID: d.ID, Reason: fmt.Sprintf("want %d words, have %d", d.Span(), len(words))}
	}

	switch d.Kind {
	case schema.U16, schema.Bitfield:
		return int64(words[0]), nil
	case schema.S16:
		return int64(int16(words[0])), nil
	case schema.U32, schema.S32:
		hi, lo := words[0], words[1]
		if d.Order == schema.LowHigh {
			hi, lo = lo, hi
		}
		u := uint32(hi)<<16 | uint32(lo)
		if d.Kind == schema.S32 {
			return int64(int32(u)), nil
		}
		return int64(u), nil
	}
	return 0, &Error{ID: d.ID, Reason: fmt.Sprintf("unknown kind %s", d.Kind)}
}

// Value decodes and scales a descriptor's words into a physical value.
func Value(d *schema.Descriptor, words []uint16) (float64, error) {
	raw, err := Raw(d, words)
	if err != nil {
		return 0, err
	}
	return d.Scale.Apply(raw), nil
}

// Bits expands a bitfield register into per-bit booleans keyed by the
// schema's named bits.
func Bits(d *schema.Descriptor, word uint16) map[schema.BitSpec]bool {
	out := make(map[schema.BitSpec]bool, len(d.Bits))
	for _, b := range d.Bits {
		out[b] = word&(1<<b.Bit) != 0
	}
	return out
}

// Words encodes a physical value into register words for the write
// path. The value is snapped to the descriptor's scale step; values
// the encoding cannot hold are rejected.
func Words(d *schema.Descriptor, v float64) ([]uint16, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &Error{ID: d.ID, Reason: "not a finite value"}
	}

	raw := d.Scale.Raw(v)

	switch d.Kind {
	case schema.U16:
		if raw < 0 || raw > math.MaxUint16 {
			return nil, &Error{ID: d.ID, Reason: fmt.Sprintf("raw %d out of u16", raw)}
		}
		return []uint16{uint16(raw)}, nil
	case schema.S16:
		if raw < math.MinInt16 || raw > math.MaxInt16 {
			return nil, &Error{ID: d.ID, Reason: fmt.Sprintf("raw %d out of s16", raw)}
		}
		return []uint16{uint16(int16(raw))}, nil
	case schema.U32, schema.S32:
		if d.Kind == schema.U32 && (raw < 0 || raw > math.MaxUint32) {
			return nil, &Error{ID: d.ID, Reason: fmt.Sprintf("raw %d out of u32", raw)}
		}
		if d.Kind == schema.S32 && (raw < math.MinInt32 || raw > math.MaxInt32) {
			return nil, &Error{ID: d.ID, Reason: fmt.Sprintf("raw %d out of s32", raw)}
		}
		u := uint32(raw)
		hi, lo := uint16(u>>16), uint16(u)
		if d.Order == schema.LowHigh {
			hi, lo = lo, hi
		}
		return []uint16{hi, lo}, nil
	}
	return nil, &Error{ID: d.ID, Reason: fmt.Sprintf("kind %s is not writable", d.Kind)}
}
