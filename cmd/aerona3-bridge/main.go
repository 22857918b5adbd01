// Command aerona3-bridge polls a Grant Aerona3 heat pump over Modbus
// TCP and exposes its state over MQTT and HTTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openashp/aerona3-bridge/internal/config"
	"github.com/openashp/aerona3-bridge/internal/derived"
	"github.com/openashp/aerona3-bridge/internal/mqttpub"
	"github.com/openashp/aerona3-bridge/internal/plan"
	"github.com/openashp/aerona3-bridge/internal/poller"
	"github.com/openashp/aerona3-bridge/internal/schema"
	"github.com/openashp/aerona3-bridge/internal/state"
	"github.com/openashp/aerona3-bridge/internal/telemetry"
	"github.com/openashp/aerona3-bridge/internal/transport"
	"github.com/openashp/aerona3-bridge/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: aerona3-bridge <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)

	// --------------------
	// Compile schema and read plan
	// --------------------

	sch, schemaErrs := schema.Compile(schema.Aerona3Registers)
	for _, serr := range schemaErrs {
		logger.Error("schema error, descriptor dropped", "entity", serr.ID, "reason", serr.Reason)
	}

	blocks, rejected := plan.Build(sch, plan.Options{
		Gap:          uint16(cfg.Poll.GapThreshold),
		MaxRegisters: uint16(cfg.Poll.MaxBlockSize),
	})
	logger.Info("read plan compiled", "blocks", len(blocks), "rejected", len(rejected))

	// --------------------
	// Entity store
	// --------------------

	store := state.NewStore(cfg.Availability.FailureThreshold)
	registerEntities(store, sch)
	for _, serr := range rejected {
		logger.Error("descriptor excluded from polling", "entity", serr.ID, "reason", serr.Reason)
		store.MarkPermanentlyUnavailable(serr.ID)
	}

	engine := derived.NewEngine(store, derived.Aerona3Specs(cfg.Derived.NominalFlowLPS, cfg.Derived.TariffPerKWh))

	// --------------------
	// Transport + write queue + poller
	// --------------------

	metrics := telemetry.NewMetrics()

	conn := transport.NewManager(transport.Config{
		Endpoint: cfg.Target.Endpoint(),
		UnitID:   uint8(cfg.Target.UnitID),
		Timeout:  time.Duration(cfg.Target.TimeoutMs) * time.Millisecond,
	}, logger)
	conn.OnState = metrics.ConnectionObserver()

	queue := writer.NewQueue(sch, cfg.Poll.WriteQueueSize)

	p, err := poller.New(
		poller.Config{Interval: time.Duration(cfg.Poll.IntervalSeconds) * time.Second},
		blocks, conn, store, engine, queue, logger,
	)
	if err != nil {
		log.Fatalf("poller build failed: %v", err)
	}
	p.SetMetrics(metrics)

	// --------------------
	// Presentation surfaces (both optional)
	// --------------------

	if cfg.MQTT.Broker != "" {
		pub := mqttpub.New(mqttpub.Config{
			Broker:          cfg.MQTT.Broker,
			ClientID:        cfg.MQTT.ClientID,
			Username:        cfg.MQTT.Username,
			Password:        cfg.MQTT.Password,
			TopicPrefix:     cfg.MQTT.TopicPrefix,
			DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
			DeviceName:      cfg.MQTT.DeviceName,
		}, queue, store.View, logger)
		pub.SetSchema(sch)

		if err := pub.Connect(); err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
		defer pub.Close()

		p.AddSink(pub)
	}

	var srv *telemetry.Server
	if cfg.Telemetry.Addr != "" {
		srv = telemetry.NewServer(
			cfg.Telemetry.Addr,
			metrics,
			store.View,
			func() string { return conn.State().String() },
			logger,
		)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("telemetry server failed", "error", err)
			}
		}()
	}

	// --------------------
	// Run until signalled
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("polling started",
		"endpoint", cfg.Target.Endpoint(),
		"unit_id", cfg.Target.UnitID,
		"interval_s", cfg.Poll.IntervalSeconds)

	p.Run(ctx)

	// Let the in-flight request finish, then tear down.
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	_ = conn.Close()
	logger.Info("shut down")
}

// registerEntities announces every schema entity on the store before
// polling starts, so snapshots carry the full set from the first tick.
func registerEntities(store *state.Store, sch *schema.Schema) {
	for _, d := range sch.Descriptors() {
		if d.Kind == schema.Bitfield {
			for _, b := range d.Bits {
				off := false
				store.Register(state.EntityValue{
					ID:     b.ID,
					Name:   b.Name,
					Binary: &off,
				})
			}
			continue
		}
		store.Register(state.EntityValue{
			ID:       d.ID,
			Name:     d.Name,
			Unit:     d.Unit,
			Writable: d.Writable(),
		})
	}
}
