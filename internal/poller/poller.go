// Package poller drives the read cycles: one connection, blocks in
// address order, queued writes drained between block reads.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openashp/aerona3-bridge/internal/decode"
	"github.com/openashp/aerona3-bridge/internal/derived"
	"github.com/openashp/aerona3-bridge/internal/plan"
	"github.com/openashp/aerona3-bridge/internal/schema"
	"github.com/openashp/aerona3-bridge/internal/state"
	"github.com/openashp/aerona3-bridge/internal/telemetry"
	"github.com/openashp/aerona3-bridge/internal/transport"
	"github.com/openashp/aerona3-bridge/internal/writer"
)

// Bus abstracts the wire operations the poll loop needs. The poller
// depends on geometry only; transport.Manager is the production Bus.
type Bus interface {
	EnsureConnected() error
	ReadHolding(addr, qty uint16) ([]uint16, error)
	ReadInput(addr, qty uint16) ([]uint16, error)
	WriteSingle(addr, value uint16) error
	WriteMultiple(addr uint16, values []uint16) error
	ResetBackoff()
}

// Sink is notified after entities change, with the snapshot the
// change produced. Sinks must not block the poll loop.
type Sink interface {
	PublishChanges(snap state.Snapshot, changed []string)
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

// Poller is the single poll loop plus the write-queue consumer.
type Poller struct {
	cfg    Config
	blocks []plan.Block
	bus    Bus
	store  *state.Store
	engine *derived.Engine
	writes *writer.Queue
	sinks  []Sink

	metrics *telemetry.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, blocks []plan.Block, bus Bus, store *state.Store,
	engine *derived.Engine, writes *writer.Queue, logger *slog.Logger) (*Poller, error) {

	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if len(blocks) == 0 {
		return nil, errors.New("poller: at least one poll block required")
	}
	return &Poller{
		cfg:    cfg,
		blocks: blocks,
		bus:    bus,
		store:  store,
		engine: engine,
		writes: writes,
		logger: logger,
		now:    time.Now,
	}, nil
}

// AddSink attaches a change listener. Call before Run.
func (p *Poller) AddSink(s Sink) { p.sinks = append(p.sinks, s) }

// SetMetrics attaches telemetry counters. Call before Run.
func (p *Poller) SetMetrics(m *telemetry.Metrics) { p.metrics = m }

// Cycle performs exactly one poll cycle. A cycle that cannot get a
// connection is skipped whole: entities keep their prior state and
// the availability policy decides what to show. Block failures are
// isolated; only a dead session aborts the remaining blocks.
func (p *Poller) Cycle(ctx context.Context) {
	if err := p.bus.EnsureConnected(); err != nil {
		p.store.SetConnected(false)
		// Queued writes fail fast with the connection error instead of
		// waiting out the outage.
		p.failWrites(err)
		if errors.Is(err, transport.ErrBackoff) {
			p.logger.Debug("cycle skipped, waiting out backoff")
		}
		return
	}
	p.store.SetConnected(true)

	allOK := true

	for i := range p.blocks {
		// Shutdown lets the in-flight request finish, then stops at
		// the next block boundary.
		if ctx.Err() != nil {
			return
		}

		p.drainWrites()

		b := &p.blocks[i]
		regs, err := p.readBlock(b)
		if err != nil {
			allOK = false
			if transport.Fatal(err) {
				// Session is gone; the manager armed its backoff.
				p.store.SetConnected(false)
				if p.metrics != nil {
					p.metrics.BlockReads.WithLabelValues("transport_error").Inc()
				}
				return
			}

			// Device exception or discarded frame: this block only.
			// Derived metrics still recompute: an input that just
			// crossed the failure threshold must pull its dependents
			// down with it.
			ids := b.EntityIDs()
			p.store.Fail(ids)
			ids = append(ids, p.engine.Recompute(ids, p.now())...)
			p.notify(ids)
			p.logger.Warn("block read failed", "block", b.String(), "error", err)
			if p.metrics != nil {
				p.metrics.BlockReads.WithLabelValues("device_error").Inc()
			}
			continue
		}

		if p.metrics != nil {
			p.metrics.BlockReads.WithLabelValues("ok").Inc()
		}

		changed := p.decodeBlock(b, regs)
		changed = append(changed, p.engine.Recompute(changed, p.now())...)
		p.notify(changed)
	}

	p.drainWrites()

	if allOK {
		// One fully successful cycle resets the reconnect delay.
		p.bus.ResetBackoff()
	}
	if p.metrics != nil {
		p.metrics.PollCycles.Inc()
	}
}

func (p *Poller) readBlock(b *plan.Block) ([]uint16, error) {
	if b.Bank == schema.Holding {
		return p.bus.ReadHolding(b.Start, b.Count)
	}
	return p.bus.ReadInput(b.Start, b.Count)
}

// decodeBlock updates the store from one block's raw words. A decode
// failure is charged to its own entity only; the rest of the block
// still lands.
func (p *Poller) decodeBlock(b *plan.Block, regs []uint16) []string {
	now := p.now()
	var changed []string

	for _, d := range b.Descriptors {
		off := int(d.Address - b.Start)
		if off+int(d.Span()) > len(regs) {
			p.store.Fail(d.EntityIDs())
			changed = append(changed, d.EntityIDs()...)
			continue
		}
		words := regs[off : off+int(d.Span())]

		if d.Kind == schema.Bitfield {
			for bit, on := range decode.Bits(d, words[0]) {
				p.store.SetBinary(bit.ID, on, now)
				changed = append(changed, bit.ID)
			}
			continue
		}

		raw, err := decode.Raw(d, words)
		if err != nil {
			p.store.Fail([]string{d.ID})
			changed = append(changed, d.ID)
			p.logger.Warn("decode failed", "entity", d.ID, "error", err)
			continue
		}

		wcopy := make([]uint16, len(words))
		copy(wcopy, words)
		p.store.SetNumeric(d.ID, wcopy, d.Scale.Apply(raw), d.Enum[raw], now)
		changed = append(changed, d.ID)
	}
	return changed
}

// drainWrites services queued writes at a block boundary, in enqueue
// order, never splitting a block read.
func (p *Poller) drainWrites() {
	for {
		req, ok := p.writes.TryNext()
		if !ok {
			return
		}

		err := p.issueWrite(req)
		if err == nil {
			// Optimistic local update; the next cycle confirms.
			raw, rerr := decode.Raw(req.Desc, req.Words)
			if rerr == nil {
				now := p.now()
				p.store.SetNumeric(req.Desc.ID, req.Words, req.Desc.Scale.Apply(raw), req.Desc.Enum[raw], now)
				changed := append([]string{req.Desc.ID}, p.engine.Recompute([]string{req.Desc.ID}, now)...)
				p.notify(changed)
			}
		} else {
			p.logger.Warn("write failed", "entity", req.Desc.ID, "error", err)
		}

		if p.metrics != nil {
			result := "ok"
			if err != nil {
				result = "error"
			}
			p.metrics.Writes.WithLabelValues(result).Inc()
		}

		req.Complete(err)
	}
}

// failWrites rejects every queued write with the given error.
func (p *Poller) failWrites(err error) {
	for {
		req, ok := p.writes.TryNext()
		if !ok {
			return
		}
		p.logger.Warn("write rejected, connection down", "entity", req.Desc.ID, "error", err)
		if p.metrics != nil {
			p.metrics.Writes.WithLabelValues("error").Inc()
		}
		req.Complete(err)
	}
}

func (p *Poller) issueWrite(req writer.Request) error {
	if len(req.Words) == 1 {
		return p.bus.WriteSingle(req.Desc.Address, req.Words[0])
	}
	// Multi-word values go out as one FC 16 request so the device
	// never observes a torn update.
	return p.bus.WriteMultiple(req.Desc.Address, req.Words)
}

func (p *Poller) notify(changed []string) {
	if len(changed) == 0 || len(p.sinks) == 0 {
		return
	}
	snap := p.store.View()
	for _, s := range p.sinks {
		s.PublishChanges(snap, changed)
	}
}
