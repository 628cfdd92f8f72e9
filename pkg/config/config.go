package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/indicator"
	"github.com/itohio/ambre/pkg/valve"
	"gopkg.in/yaml.v3"
)

// Config represents the controller configuration.
type Config struct {
	Serial    SerialConfig    `yaml:"serial"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Valve     valve.Config    `yaml:"valve"`
	Indicator IndicatorConfig `yaml:"indicator"`
	Hardware  HardwareConfig  `yaml:"hardware"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Mock      MockConfig      `yaml:"mock"`
}

// SerialConfig contains the command port configuration. An empty port means
// stdin/stdout.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains sensor periods and the loop idle time.
type SamplingConfig struct {
	DS18B20Period time.Duration `yaml:"ds18b20_period"`
	DHT22Period   time.Duration `yaml:"dht22_period"`
	Idle          time.Duration `yaml:"idle"` // Sleep between loop iterations
}

// IndicatorConfig contains the two heartbeat brightness levels [0 - 255].
type IndicatorConfig struct {
	Dim    uint8 `yaml:"dim"`
	Bright uint8 `yaml:"bright"`
}

// HardwareConfig describes where the chamber is wired on a Linux board.
type HardwareConfig struct {
	Chip      string `yaml:"chip"`       // GPIO character device, e.g. gpiochip0
	ValveLine int    `yaml:"valve_line"` // Solenoid valve output
	LEDRed    int    `yaml:"led_red"`
	LEDGreen  int    `yaml:"led_green"`
	LEDBlue   int    `yaml:"led_blue"`
	DS18B20   string `yaml:"ds18b20"` // w1_slave file of the DS18B20
	DHT22     string `yaml:"dht22"`   // IIO device directory of the DHT22
}

// MQTTConfig contains telemetry publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// MockConfig contains simulated chamber parameters.
type MockConfig struct {
	Temperature  float32       `yaml:"temperature"`   // Ambient temperature ('C)
	Humidity     float32       `yaml:"humidity"`      // Starting relative humidity (%)
	Ambient      float32       `yaml:"ambient"`       // Humidity the chamber drifts to with the valve closed (%)
	Purged       float32       `yaml:"purged"`        // Humidity the chamber drifts to with N2 flowing (%)
	TimeConstant time.Duration `yaml:"time_constant"` // Humidity response time constant
	NoiseLevel   float32       `yaml:"noise_level"`   // Reading noise amplitude
	FailureRate  float32       `yaml:"failure_rate"`  // Probability of a failed read [0 - 1]
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "",
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			DS18B20Period: chamber.DefaultDS18B20Period,
			DHT22Period:   chamber.DefaultDHT22Period,
			Idle:          time.Millisecond,
		},
		Valve: valve.DefaultConfig(),
		Indicator: IndicatorConfig{
			Dim:    uint8(indicator.DefaultDim),
			Bright: uint8(indicator.DefaultBright),
		},
		Hardware: HardwareConfig{
			Chip:      "gpiochip0",
			ValveLine: 12,
			LEDRed:    17,
			LEDGreen:  27,
			LEDBlue:   22,
			DS18B20:   "/sys/bus/w1/devices/28-000000000000/w1_slave",
			DHT22:     "/sys/bus/iio/devices/iio:device0",
		},
		MQTT: MQTTConfig{
			Broker:   "",
			Topic:    "ambre/chamber/status",
			ClientID: "ambre-chamber",
		},
		Mock: MockConfig{
			Temperature:  21.0,
			Humidity:     60.0,
			Ambient:      70.0,
			Purged:       5.0,
			TimeConstant: 2 * time.Minute,
			NoiseLevel:   0.2,
			FailureRate:  0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Options converts the configuration into main loop options.
func (c *Config) Options() chamber.Options {
	return chamber.Options{
		DS18B20Period: c.Sampling.DS18B20Period,
		DHT22Period:   c.Sampling.DHT22Period,
		Valve:         c.Valve,
		Dim:           indicator.Brightness(c.Indicator.Dim),
		Bright:        indicator.Brightness(c.Indicator.Bright),
		Idle:          c.Sampling.Idle,
	}
}

// ensureDefaults fills missing fields with defaults and clamps the rest.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.DS18B20Period <= 0 {
		c.Sampling.DS18B20Period = def.Sampling.DS18B20Period
	}
	if c.Sampling.DHT22Period <= 0 {
		c.Sampling.DHT22Period = def.Sampling.DHT22Period
	}
	if c.Sampling.Idle < 0 {
		c.Sampling.Idle = 0
	}

	c.Valve.SetThreshold(c.Valve.Threshold)

	if c.Indicator.Dim == 0 && c.Indicator.Bright == 0 {
		c.Indicator = def.Indicator
	}

	if c.Hardware.Chip == "" {
		c.Hardware.Chip = def.Hardware.Chip
	}

	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}

	if c.Mock.TimeConstant <= 0 {
		c.Mock.TimeConstant = def.Mock.TimeConstant
	}
	if c.Mock.FailureRate < 0 {
		c.Mock.FailureRate = 0
	} else if c.Mock.FailureRate > 1 {
		c.Mock.FailureRate = 1
	}
}
