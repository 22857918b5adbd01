package mqttpub

import (
	"encoding/json"

	"github.com/openashp/aerona3-bridge/internal/schema"
)

// autoconfig is the Home Assistant MQTT discovery payload, with the
// usual abbreviated keys.
type autoconfig struct {
	Name              string           `json:"name"`
	UniqueID          string           `json:"uniq_id"`
	StateTopic        string           `json:"stat_t"`
	CommandTopic      string           `json:"cmd_t,omitempty"`
	AvailabilityTopic string           `json:"avty_t"`
	DeviceClass       string           `json:"dev_cla,omitempty"`
	StateClass        string           `json:"stat_cla,omitempty"`
	Unit              string           `json:"unit_of_meas,omitempty"`
	Min               *float64         `json:"min,omitempty"`
	Max               *float64         `json:"max,omitempty"`
	Step              float64          `json:"step,omitempty"`
	Device            autoconfigDevice `json:"dev"`
}

type autoconfigDevice struct {
	IDs          string `json:"ids"`
	Name         string `json:"name"`
	Manufacturer string `json:"mf"`
	Model        string `json:"mdl"`
}

// SetSchema gives discovery access to descriptor limits for number
// entities. Optional; without it writables are announced as plain
// sensors.
func (p *Publisher) SetSchema(s *schema.Schema) { p.sch = s }

func (p *Publisher) publishDiscovery() {
	dev := autoconfigDevice{
		IDs:          p.cfg.ClientID,
		Name:         p.cfg.DeviceName,
		Manufacturer: "Grant",
		Model:        "Aerona3",
	}

	for id, ev := range p.seed() {
		ac := autoconfig{
			Name:              ev.Name,
			UniqueID:          p.cfg.ClientID + "_" + id,
			StateTopic:        p.stateTopic(id),
			AvailabilityTopic: p.availabilityTopic(id),
			Unit:              ev.Unit,
			DeviceClass:       deviceClass(ev.Unit),
			Device:            dev,
		}
		if ac.Name == "" {
			ac.Name = id
		}

		component := "sensor"
		switch {
		case ev.Binary != nil:
			component = "binary_sensor"
			ac.Unit = ""
			ac.DeviceClass = ""
		case ev.Writable && p.sch != nil:
			if d, ok := p.sch.ByID(id); ok {
				component = "number"
				ac.CommandTopic = p.commandTopic(id)
				ac.Step = float64(d.Scale.Num) / float64(d.Scale.Den)
				if d.Limits != nil {
					min, max := d.Limits.Min, d.Limits.Max
					ac.Min, ac.Max = &min, &max
				}
			}
		default:
			if ev.Unit != "" && ev.Text == "" {
				ac.StateClass = "measurement"
			}
		}

		payload, err := json.Marshal(&ac)
		if err != nil {
			p.logger.Error("discovery marshal failed", "entity", id, "error", err)
			continue
		}

		topic := p.cfg.DiscoveryPrefix + "/" + component + "/" + p.cfg.ClientID + "/" + id + "/config"
		p.cli.Publish(topic, 0, true, string(payload))
	}
}

func deviceClass(unit string) string {
	switch unit {
	case "°C":
		return "temperature"
	case "W":
		return "power"
	case "Hz":
		return "frequency"
	default:
		return ""
	}
}
