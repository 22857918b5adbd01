// Package schema holds the compiled register map of the heat pump.
// Descriptors are geometry plus meaning: where a value lives on the
// wire and how to turn it into a physical quantity.
package schema

import (
	"fmt"
	"sort"
)

// Bank selects the Modbus register table a descriptor lives in.
type Bank uint8

const (
	// Input registers, read with FC 4.
	Input Bank = iota
	// Holding registers, read with FC 3, written with FC 6/16.
	Holding
)

func (b Bank) String() string {
	switch b {
	case Input:
		return "input"
	case Holding:
		return "holding"
	}
	return fmt.Sprintf("bank(%d)", uint8(b))
}

// Kind is the closed set of wire encodings.
type Kind uint8

const (
	U16 Kind = iota
	S16
	U32
	S32
	Bitfield
)

func (k Kind) String() string {
	switch k {
	case U16:
		return "u16"
	case S16:
		return "s16"
	case U32:
		return "u32"
	case S32:
		return "s32"
	case Bitfield:
		return "bitfield"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Words is the register count a kind occupies.
func (k Kind) Words() uint16 {
	switch k {
	case U32, S32:
		return 2
	}
	return 1
}

// WordOrder is how the two registers of a 32-bit value combine.
type WordOrder uint8

const (
	// HighLow: first register holds the high word. Aerona3 default.
	HighLow WordOrder = iota
	// LowHigh: first register holds the low word.
	LowHigh
)

// Access declares what the bridge may do with a register.
type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
	// WriteOnly registers are excluded from the read plan.
	WriteOnly
)

// Scale is a rational scale factor. Physical = raw * Num / Den.
type Scale struct {
	Num int64
	Den int64
}

// One is the identity scale.
var One = Scale{Num: 1, Den: 1}

// Apply converts a decoded raw integer to a physical value.
func (s Scale) Apply(raw int64) float64 {
	return float64(raw) * float64(s.Num) / float64(s.Den)
}

// Raw converts a physical value back to the raw integer, rounding to
// the nearest representable step.
func (s Scale) Raw(v float64) int64 {
	x := v * float64(s.Den) / float64(s.Num)
	if x >= 0 {
		return int64(x + 0.5)
	}
	return int64(x - 0.5)
}

// BitSpec names one bit of a bitfield register as its own binary entity.
type BitSpec struct {
	Bit  uint8
	ID   string
	Name string
}

// Range is a closed physical-value interval for writable registers.
type Range struct {
	Min float64
	Max float64
}

// Descriptor describes one addressable quantity. Immutable after Compile.
type Descriptor struct {
	ID      string
	Name    string
	Bank    Bank
	Address uint16
	Kind    Kind
	Order   WordOrder
	Scale   Scale
	Unit    string
	Access  Access

	// Limits is nil for read-only registers and for writable registers
	// the device bounds itself.
	Limits *Range

	// Bits is set only for Kind == Bitfield.
	Bits []BitSpec

	// Enum maps raw values to display labels (operating modes etc).
	Enum map[int64]string
}

// Span is the register count the descriptor occupies.
func (d *Descriptor) Span() uint16 { return d.Kind.Words() }

// Readable reports whether the descriptor belongs in the read plan.
func (d *Descriptor) Readable() bool { return d.Access != WriteOnly }

// Writable reports whether the write path may target the descriptor.
func (d *Descriptor) Writable() bool {
	return d.Bank == Holding && (d.Access == ReadWrite || d.Access == WriteOnly)
}

// EntityIDs lists the logical entities the descriptor produces: the
// descriptor's own ID, or one ID per named bit for bitfields.
func (d *Descriptor) EntityIDs() []string {
	if d.Kind != Bitfield {
		return []string{d.ID}
	}
	ids := make([]string, 0, len(d.Bits))
	for _, b := range d.Bits {
		ids = append(ids, b.ID)
	}
	return ids
}

// Error is a per-descriptor schema fault found at compile time. It is
// fatal to the descriptor only: the rest of the schema stays usable.
type Error struct {
	ID     string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.ID, e.Reason)
}

// Schema is the compiled descriptor set.
type Schema struct {
	byID    map[string]*Descriptor
	ordered []*Descriptor
}

// Compile validates descriptors and builds the lookup tables. Faulty
// descriptors are reported and dropped; they never abort the compile.
func Compile(descs []Descriptor) (*Schema, []*Error) {
	s := &Schema{byID: make(map[string]*Descriptor, len(descs))}
	var errs []*Error

	seen := make(map[string]bool, len(descs))

	for i := range descs {
		d := descs[i]

		if reason := check(&d, seen); reason != "" {
			errs = append(errs, &Error{ID: d.ID, Reason: reason})
			continue
		}

		seen[d.ID] = true
		for _, b := range d.Bits {
			seen[b.ID] = true
		}

		cp := d
		s.byID[cp.ID] = &cp
		s.ordered = append(s.ordered, &cp)
	}

	sort.SliceStable(s.ordered, func(i, j int) bool {
		a, b := s.ordered[i], s.ordered[j]
		if a.Bank != b.Bank {
			return a.Bank < b.Bank
		}
		return a.Address < b.Address
	})

	return s, errs
}

func check(d *Descriptor, seen map[string]bool) string {
	if d.ID == "" {
		return "empty entity id"
	}
	if seen[d.ID] {
		return "duplicate entity id"
	}
	if d.Scale.Num == 0 || d.Scale.Den == 0 {
		return "zero scale factor"
	}
	if d.Kind == Bitfield {
		if len(d.Bits) == 0 {
			return "bitfield without named bits"
		}
		bits := make(map[uint8]bool, len(d.Bits))
		for _, b := range d.Bits {
			if b.Bit > 15 {
				return fmt.Sprintf("bit index %d out of a 16-bit register", b.Bit)
			}
			if bits[b.Bit] {
				return fmt.Sprintf("duplicate bit index %d", b.Bit)
			}
			if b.ID == "" || seen[b.ID] {
				return fmt.Sprintf("bad entity id for bit %d", b.Bit)
			}
			bits[b.Bit] = true
		}
	}
	if int(d.Address)+int(d.Span()) > 0x10000 {
		return "register span past address space"
	}
	if d.Writable() {
		if d.Kind == Bitfield {
			return "bitfield registers are not writable"
		}
		if d.Limits != nil && d.Limits.Min > d.Limits.Max {
			return "inverted limits"
		}
	}
	return ""
}

// ByID returns the descriptor owning the entity ID, if any. For bit
// entities this is the parent bitfield descriptor.
func (s *Schema) ByID(id string) (*Descriptor, bool) {
	if d, ok := s.byID[id]; ok {
		return d, true
	}
	for _, d := range s.ordered {
		for _, b := range d.Bits {
			if b.ID == id {
				return d, true
			}
		}
	}
	return nil, false
}

// Descriptors returns all compiled descriptors in bank/address order.
// Callers must not mutate the result.
func (s *Schema) Descriptors() []*Descriptor { return s.ordered }

// EntityIDs lists every logical entity the schema produces, in
// bank/address order.
func (s *Schema) EntityIDs() []string {
	var ids []string
	for _, d := range s.ordered {
		ids = append(ids, d.EntityIDs()...)
	}
	return ids
}
