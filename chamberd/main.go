// Command chamberd runs the Ambre chamber controller on a Linux board or
// against a simulated chamber.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/ambre/pkg/chamber"
	"github.com/itohio/ambre/pkg/config"
	"github.com/itohio/ambre/pkg/gpio"
	"github.com/itohio/ambre/pkg/link"
	"github.com/itohio/ambre/pkg/sensor"
	"github.com/itohio/ambre/pkg/telemetry"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		mockFlag   = flag.Bool("mock", false, "Simulate the chamber instead of using GPIO and sensors")
		brokerFlag = flag.String("broker", "", "MQTT broker override (e.g., tcp://localhost:1883)")
		listFlag   = flag.Bool("list", false, "List serial ports and exit")
		saveFlag   = flag.Bool("save-config", false, "Write the effective configuration and exit")
	)
	flag.Parse()

	if *listFlag {
		if err := listPorts(os.Stdout); err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *brokerFlag != "" {
		cfg.MQTT.Broker = *brokerFlag
	}

	if *saveFlag {
		if err := cfg.Save(*configFlag); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mockFlag); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, mock bool) error {
	transport, err := openLink(cfg)
	if err != nil {
		return err
	}

	dev, closers, err := newDevices(cfg, mock, transport)
	if err != nil {
		transport.Close()
		return err
	}
	defer func() { closeAll(closers) }()

	if cfg.MQTT.Broker != "" {
		pub, err := telemetry.NewMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			// Telemetry is optional; the chamber runs without it.
			log.Printf("MQTT disabled: %v", err)
		} else {
			reporter := telemetry.NewReporter(pub, telemetry.DefaultQueueSize)
			dev.Observer = reporter
			closers = append(closers, reporter)
			log.Printf("Publishing status to %s on %s", cfg.MQTT.Broker, cfg.MQTT.Topic)
		}
	}

	loop := chamber.New(cfg.Options(), dev, time.Now())

	log.Printf("started: ds18b20=%v dht22=%v threshold=%.0f open_when_above=%v mock=%v",
		cfg.Sampling.DS18B20Period, cfg.Sampling.DHT22Period, cfg.Valve.Threshold, cfg.Valve.OpenWhenAbove, mock)

	// A closed command stream (e.g., EOF on stdin) does not stop the chamber;
	// only a signal does.
	err = loop.Run(ctx, time.Now)
	log.Printf("shutting down")
	return err
}

// openLink opens the serial port, or the console when no port is configured.
func openLink(cfg *config.Config) (*link.Lines, error) {
	if cfg.Serial.Port == "" {
		log.Printf("Using console for commands")
		return link.Console(), nil
	}

	l, err := link.OpenSerial(cfg.Serial.Port, cfg.Serial.BaudRate)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to serial port: %s", cfg.Serial.Port)
	return l, nil
}

// newDevices wires the chamber peripherals. The returned closers are closed
// in reverse order on shutdown; the transport is always among them.
func newDevices(cfg *config.Config, mock bool, transport *link.Lines) (chamber.Devices, []io.Closer, error) {
	closers := []io.Closer{transport}

	if mock {
		sim := sensor.NewMock(&cfg.Mock, time.Now, time.Now().UnixNano())
		log.Printf("Using simulated chamber")
		return chamber.Devices{
			DS18B20: sim,
			DHT22:   sim,
			Valve:   sim,
			LED:     sim,
			Link:    transport,
		}, closers, nil
	}

	board, err := gpio.Open(gpio.Pins{
		Chip:     cfg.Hardware.Chip,
		Valve:    cfg.Hardware.ValveLine,
		LEDRed:   cfg.Hardware.LEDRed,
		LEDGreen: cfg.Hardware.LEDGreen,
		LEDBlue:  cfg.Hardware.LEDBlue,
	})
	if err != nil {
		return chamber.Devices{}, nil, fmt.Errorf("init gpio: %w", err)
	}

	ds18 := sensor.NewAsyncThermometer(&sensor.DS18B20{Path: cfg.Hardware.DS18B20}, cfg.Sampling.DS18B20Period)
	dht := sensor.NewAsyncClimate(&sensor.DHT22{Dir: cfg.Hardware.DHT22}, cfg.Sampling.DHT22Period)

	// Board last in the list so it is closed first and the valve shuts early.
	closers = append(closers, ds18, dht, board)

	return chamber.Devices{
		DS18B20: ds18,
		DHT22:   dht,
		Valve:   board,
		LED:     board,
		Link:    transport,
	}, closers, nil
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Printf("Close error: %v", err)
		}
	}
}

func listPorts(w io.Writer) error {
	ports, err := link.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(w, p.Name)
	}
	return nil
}
