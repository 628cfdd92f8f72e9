// Package sensor provides the chamber's temperature and humidity sources on
// a Linux host: kernel sysfs drivers, background sampling, and a simulated
// chamber.
package sensor

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/measure"
)

var (
	_ chamber.TemperatureSensor = (*DS18B20)(nil)
	_ chamber.ClimateSensor     = (*DHT22)(nil)
)

// DS18B20 reads a 1-Wire thermometer through the w1_therm driver.
// A read blocks for the conversion time (~750 ms); wrap it in Async.
type DS18B20 struct {
	Path string // .../w1/devices/28-xxxxxxxxxxxx/w1_slave
}

// Temperature reads the sensor. Failures are logged and yield Invalid.
func (d *DS18B20) Temperature() measure.Measurement {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		log.Printf("DS18B20 read failed: %v", err)
		return measure.Invalid
	}

	m, err := ParseW1Slave(data)
	if err != nil {
		log.Printf("DS18B20 %s: %v", d.Path, err)
		return measure.Invalid
	}
	return m
}

// ParseW1Slave parses the two-line w1_slave output:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func ParseW1Slave(data []byte) (measure.Measurement, error) {
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) < 2 {
		return measure.Invalid, fmt.Errorf("invalid w1_slave format: expected 2 lines, got %d", len(lines))
	}

	if !bytes.HasSuffix(bytes.TrimSpace(lines[0]), []byte("YES")) {
		return measure.Invalid, fmt.Errorf("crc check failed")
	}

	idx := bytes.LastIndex(lines[1], []byte("t="))
	if idx < 0 {
		return measure.Invalid, fmt.Errorf("missing temperature field")
	}

	milli, err := strconv.ParseInt(string(bytes.TrimSpace(lines[1][idx+2:])), 10, 32)
	if err != nil {
		return measure.Invalid, fmt.Errorf("invalid temperature: %w", err)
	}

	return measure.FromDS18B20(float32(milli) / 1000), nil
}

// DHT22 reads the dht11 IIO driver, which also serves the DHT22.
type DHT22 struct {
	Dir string // /sys/bus/iio/devices/iio:deviceN
}

// Climate reads temperature and humidity. Each failed channel is Invalid.
func (d *DHT22) Climate() (temperature, humidity measure.Measurement) {
	temperature = d.read("in_temp_input")
	humidity = d.read("in_humidityrelative_input")
	return temperature, humidity
}

func (d *DHT22) read(name string) measure.Measurement {
	v, err := readMilli(filepath.Join(d.Dir, name))
	if err != nil {
		log.Printf("DHT22 read failed: %v", err)
		return measure.Invalid
	}
	return measure.New(v)
}

// readMilli reads a sysfs attribute holding an integer in milli-units.
func readMilli(path string) (float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	milli, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value in %s: %w", path, err)
	}
	return float32(milli) / 1000, nil
}
