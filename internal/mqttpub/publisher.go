// Package mqttpub pushes entity state to an MQTT broker and accepts
// set-value commands back, speaking Home Assistant's discovery
// convention. It is one consumer of the core's snapshots; the core
// never depends on it.
package mqttpub

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/openashp/aerona3-bridge/internal/schema"
	"github.com/openashp/aerona3-bridge/internal/state"
)

// Config is the broker connection plus topic layout.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string

	// TopicPrefix roots all state topics, e.g. "aerona3".
	TopicPrefix string
	// DiscoveryPrefix roots HA discovery configs, normally
	// "homeassistant".
	DiscoveryPrefix string
	// DeviceName labels the device in HA.
	DeviceName string
}

func (c *Config) fill() {
	if c.ClientID == "" {
		c.ClientID = "aerona3-bridge"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "aerona3"
	}
	if c.DiscoveryPrefix == "" {
		c.DiscoveryPrefix = "homeassistant"
	}
	if c.DeviceName == "" {
		c.DeviceName = "Grant Aerona3"
	}
}

// SetValuer is the slice of the write path the publisher needs.
type SetValuer interface {
	SetValue(id string, value float64) (<-chan error, error)
}

// Publisher bridges snapshots to MQTT. It implements poller.Sink.
type Publisher struct {
	cfg    Config
	cli    mqtt.Client
	writes SetValuer
	sch    *schema.Schema
	logger *slog.Logger

	// seed provides entity metadata for discovery and the initial
	// retained availability publishes.
	seed func() state.Snapshot
}

// New builds a publisher. seed is usually store.View.
func New(cfg Config, writes SetValuer, seed func() state.Snapshot, logger *slog.Logger) *Publisher {
	cfg.fill()
	p := &Publisher{
		cfg:    cfg,
		writes: writes,
		seed:   seed,
		logger: logger,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true).
		SetWill(p.bridgeAvailabilityTopic(), "offline", 0, true)

	opts.OnConnect = func(cli mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.Broker)
		cli.Publish(p.bridgeAvailabilityTopic(), 0, true, "online").Wait()
		p.publishDiscovery()
		p.subscribeCommands()
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	}

	p.cli = mqtt.NewClient(opts)
	return p
}

// Connect dials the broker. Discovery and subscriptions happen in the
// OnConnect hook so they survive broker restarts.
func (p *Publisher) Connect() error {
	if tok := p.cli.Connect(); tok.Wait() && tok.Error() != nil {
		return fmt.Errorf("mqttpub: connect: %w", tok.Error())
	}
	return nil
}

// Close announces offline and disconnects.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Publish(p.bridgeAvailabilityTopic(), 0, true, "offline").Wait()
	}
	p.cli.Disconnect(250)
}

// PublishChanges pushes changed entities as retained state topics.
func (p *Publisher) PublishChanges(snap state.Snapshot, changed []string) {
	if !p.cli.IsConnected() {
		return
	}
	for _, id := range changed {
		ev, ok := snap[id]
		if !ok {
			continue
		}

		avail := "offline"
		if ev.Availability == state.Available {
			avail = "online"
		}
		p.cli.Publish(p.availabilityTopic(id), 0, true, avail)

		if ev.Availability != state.Available {
			continue
		}
		p.cli.Publish(p.stateTopic(id), 0, true, statePayload(ev))
	}
}

func statePayload(ev state.EntityValue) string {
	if ev.Binary != nil {
		if *ev.Binary {
			return "ON"
		}
		return "OFF"
	}
	if ev.Text != "" {
		return ev.Text
	}
	return strconv.FormatFloat(ev.Value, 'f', -1, 64)
}

func (p *Publisher) subscribeCommands() {
	for id, ev := range p.seed() {
		if !ev.Writable {
			continue
		}
		topic := p.commandTopic(id)
		entity := id

		tok := p.cli.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			p.handleCommand(entity, string(msg.Payload()))
		})
		if tok.Wait() && tok.Error() != nil {
			p.logger.Error("mqtt subscribe failed", "topic", topic, "error", tok.Error())
		}
	}
}

func (p *Publisher) handleCommand(id, payload string) {
	value, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		p.logger.Warn("ignoring malformed command", "entity", id, "payload", payload)
		return
	}

	done, err := p.writes.SetValue(id, value)
	if err != nil {
		p.logger.Warn("set value rejected", "entity", id, "value", value, "error", err)
		return
	}

	// Outcome arrives once the poll loop reaches the queue.
	go func() {
		if werr := <-done; werr != nil {
			p.logger.Warn("set value failed on the wire", "entity", id, "value", value, "error", werr)
		} else {
			p.logger.Info("set value applied", "entity", id, "value", value)
		}
	}()
}

// ---- topics ----

func (p *Publisher) bridgeAvailabilityTopic() string {
	return p.cfg.TopicPrefix + "/bridge/availability"
}

func (p *Publisher) stateTopic(id string) string {
	return p.cfg.TopicPrefix + "/" + id + "/state"
}

func (p *Publisher) availabilityTopic(id string) string {
	return p.cfg.TopicPrefix + "/" + id + "/availability"
}

func (p *Publisher) commandTopic(id string) string {
	return p.cfg.TopicPrefix + "/" + id + "/set"
}
