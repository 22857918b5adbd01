// Package plan compiles the register schema into the minimal set of
// contiguous read blocks.
package plan

import (
	"fmt"
	"sort"

	"github.com/openashp/aerona3-bridge/internal/schema"
)

// MaxRegisters is the protocol ceiling for one read request (FC 3/4).
const MaxRegisters = 125

// DefaultGap is how many unmapped registers a block may span to
// absorb its neighbour. Reading a few dead registers is cheaper than
// an extra round trip.
const DefaultGap = 8

// Block is one contiguous read request covering one or more
// descriptors. Blocks never overlap; every readable descriptor
// belongs to exactly one block.
type Block struct {
	Bank  schema.Bank
	Start uint16
	Count uint16

	Descriptors []*schema.Descriptor
}

// End returns the first address past the block.
func (b Block) End() uint16 { return b.Start + b.Count }

func (b Block) String() string {
	return fmt.Sprintf("%s[%d..%d)", b.Bank, b.Start, b.End())
}

// EntityIDs lists every entity the block feeds.
func (b Block) EntityIDs() []string {
	var ids []string
	for _, d := range b.Descriptors {
		ids = append(ids, d.EntityIDs()...)
	}
	return ids
}

// Options tune the planner.
type Options struct {
	// Gap is the largest hole (in registers) merged into one block.
	Gap uint16
	// MaxRegisters caps the block span; zero means the protocol max.
	MaxRegisters uint16
}

func (o Options) max() uint16 {
	if o.MaxRegisters == 0 || o.MaxRegisters > MaxRegisters {
		return MaxRegisters
	}
	return o.MaxRegisters
}

// Build computes the read plan. The result depends only on the
// descriptor set, never on input order: descriptors are sorted by
// bank then address before merging, ties broken by the sort being
// stable on an already address-keyed slice.
//
// Descriptors whose own span exceeds the request ceiling are returned
// in rejected; they are excluded from the plan and should be marked
// permanently unavailable by the caller.
func Build(s *schema.Schema, opts Options) (blocks []Block, rejected []*schema.Error) {
	max := opts.max()

	var readable []*schema.Descriptor
	for _, d := range s.Descriptors() {
		if !d.Readable() {
			continue
		}
		if d.Span() > max {
			rejected = append(rejected, &schema.Error{
				ID:     d.ID,
				Reason: fmt.Sprintf("span %d exceeds %d registers per read", d.Span(), max),
			})
			continue
		}
		readable = append(readable, d)
	}

	sort.SliceStable(readable, func(i, j int) bool {
		a, b := readable[i], readable[j]
		if a.Bank != b.Bank {
			return a.Bank < b.Bank
		}
		return a.Address < b.Address
	})

	var cur *Block
	for _, d := range readable {
		if cur != nil && d.Bank == cur.Bank {
			// Int math: a span ending at 65536 must not wrap.
			// Descriptors may overlap an already-planned span (two
			// entities sharing a register); those always merge.
			curEnd := int(cur.Start) + int(cur.Count)
			end := int(d.Address) + int(d.Span())
			if end < curEnd {
				end = curEnd
			}
			if int(d.Address) <= curEnd+int(opts.Gap) && end-int(cur.Start) <= int(max) {
				cur.Count = uint16(end - int(cur.Start))
				cur.Descriptors = append(cur.Descriptors, d)
				continue
			}
		}

		blocks = append(blocks, Block{
			Bank:        d.Bank,
			Start:       d.Address,
			Count:       d.Span(),
			Descriptors: []*schema.Descriptor{d},
		})
		cur = &blocks[len(blocks)-1]
	}

	return blocks, rejected
}
