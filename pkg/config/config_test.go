package config

import (
	"os"
	"testing"
	"time"

	"github.com/itohio/ambre/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Second, cfg.Sampling.DS18B20Period)
	assert.Equal(t, 2*time.Second, cfg.Sampling.DHT22Period)
	assert.Equal(t, float32(50), cfg.Valve.Threshold)
	assert.True(t, cfg.Valve.OpenWhenAbove)
	assert.Equal(t, uint8(3), cfg.Indicator.Dim)
	assert.Equal(t, uint8(8), cfg.Indicator.Bright)
	assert.Equal(t, "gpiochip0", cfg.Hardware.Chip)
	assert.Equal(t, "", cfg.MQTT.Broker)
	assert.Equal(t, 2*time.Minute, cfg.Mock.TimeConstant)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestLoad_ValidYAML(t *testing.T) {
	yamlContent := `
serial:
  port: "/dev/ttyACM0"
  baud_rate: 9600

sampling:
  ds18b20_period: 500ms
  dht22_period: 4s
  idle: 2ms

valve:
  threshold: 65
  open_when_above: false

indicator:
  dim: 10
  bright: 200

hardware:
  chip: gpiochip4
  valve_line: 5
  ds18b20: /tmp/w1_slave
  dht22: /tmp/iio

mqtt:
  broker: tcp://localhost:1883
  topic: lab/chamber
`

	cfg, err := Load(writeTemp(t, yamlContent))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Sampling.DS18B20Period)
	assert.Equal(t, 4*time.Second, cfg.Sampling.DHT22Period)
	assert.Equal(t, 2*time.Millisecond, cfg.Sampling.Idle)
	assert.Equal(t, float32(65), cfg.Valve.Threshold)
	assert.False(t, cfg.Valve.OpenWhenAbove)
	assert.Equal(t, uint8(10), cfg.Indicator.Dim)
	assert.Equal(t, uint8(200), cfg.Indicator.Bright)
	assert.Equal(t, "gpiochip4", cfg.Hardware.Chip)
	assert.Equal(t, 5, cfg.Hardware.ValveLine)
	assert.Equal(t, "/tmp/w1_slave", cfg.Hardware.DS18B20)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "lab/chamber", cfg.MQTT.Topic)
	assert.Equal(t, "ambre-chamber", cfg.MQTT.ClientID) // default
}

func TestLoad_InvalidYAML(t *testing.T) {
	cfg, err := Load(writeTemp(t, "invalid: yaml: content: ["))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	cfg, err := Load(writeTemp(t, "serial:\n  port: \"/dev/ttyUSB0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)

	// Should use defaults for missing fields
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, float32(50), cfg.Valve.Threshold)
	assert.Equal(t, 2*time.Second, cfg.Sampling.DHT22Period)
}

func TestLoad_ClampsOutOfRange(t *testing.T) {
	yamlContent := `
sampling:
  ds18b20_period: -1s
  idle: -5ms
valve:
  threshold: 180
mock:
  failure_rate: 3
`
	cfg, err := Load(writeTemp(t, yamlContent))
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Sampling.DS18B20Period)
	assert.Equal(t, time.Duration(0), cfg.Sampling.Idle)
	assert.Equal(t, float32(100), cfg.Valve.Threshold)
	assert.Equal(t, float32(1), cfg.Mock.FailureRate)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Valve.Threshold = 42

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	defer os.Remove(tmpfile.Name())

	require.NoError(t, cfg.Save(tmpfile.Name()))

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, float32(42), loaded.Valve.Threshold)
	assert.Equal(t, cfg.Sampling, loaded.Sampling)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Valve.OpenWhenAbove = false
	opts := cfg.Options()

	assert.Equal(t, cfg.Sampling.DS18B20Period, opts.DS18B20Period)
	assert.Equal(t, cfg.Sampling.DHT22Period, opts.DHT22Period)
	assert.Equal(t, cfg.Sampling.Idle, opts.Idle)
	assert.False(t, opts.Valve.OpenWhenAbove)
	assert.Equal(t, indicator.DefaultDim, opts.Dim)
	assert.Equal(t, indicator.DefaultBright, opts.Bright)
}
