package chamber

import (
	"time"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/measure"
	"github.com/itohio/ambre/pkg/protocol"
	"github.com/itohio/ambre/pkg/valve"
)

// Readings are the latest cached measurements.
type Readings struct {
	DS18Temp  measure.Measurement `json:"ds18b20_temp"`
	DHT22Temp measure.Measurement `json:"dht22_temp"`
	DHT22Humi measure.Measurement `json:"dht22_humi"`
}

// All returns the three readings in status-line order.
func (r Readings) All() []measure.Measurement {
	return []measure.Measurement{r.DS18Temp, r.DHT22Temp, r.DHT22Humi}
}

// State is the chamber state. Only the loop writes it.
type State struct {
	Readings
	ValveOpen bool
	Valve     valve.Config

	boot        time.Time
	lastDS18    time.Time
	ds18Sampled bool
	dhtSampled  bool
}

// Sampled reports whether every reading has been attempted at least once.
func (s *State) Sampled() bool {
	return s.ds18Sampled && s.dhtSampled
}

// status builds the status line snapshot. The timestamp is the last DS18B20
// sample time relative to boot.
func (s *State) status() protocol.Status {
	var uptime time.Duration
	if s.ds18Sampled {
		uptime = s.lastDS18.Sub(s.boot)
	}
	return protocol.Status{
		Uptime:    uptime,
		DS18Temp:  s.DS18Temp,
		DHT22Temp: s.DHT22Temp,
		DHT22Humi: s.DHT22Humi,
		ValveOpen: s.ValveOpen,
	}
}

// Snapshot is a read-only copy of the state handed to observers.
type Snapshot struct {
	Time       time.Time
	Uptime     time.Duration
	Readings   Readings
	ValveOpen  bool
	Valve      valve.Config
	Status     indicator.State
	Brightness indicator.Brightness
}
