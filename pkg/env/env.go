package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config provides the deployment options of the decoder daemon.
// Empty endpoints disable the corresponding output.
type Config struct {
	// DeviceID identifies this decoder in telemetry topics.
	DeviceID string

	// MQTTBrokerURL specifies the MQTT broker to publish to.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	// HostPort is the serial port of the host display controller.
	HostPort string
	HostBaud int
	// HostRaw adds an ECU_RAW dump after every ECU_DATA line.
	HostRaw bool

	// Pin is the GPIO name the ALDL line is wired to.
	Pin string
	// PinInverted is set behind an inverting level shifter.
	PinInverted bool

	// WebSocketAddr is the listen address of the live feed.
	WebSocketAddr string

	// DBPath is the sqlite trip recorder database.
	DBPath string

	// Simulate replaces the GPIO line with a simulated ECU.
	Simulate bool

	HeartbeatInterval time.Duration
}

var defaultConfig = Config{
	MQTTBrokerURL:     "mqtt://localhost:1883/aldl/",
	HostBaud:          9600,
	Pin:               "GPIO4",
	HeartbeatInterval: 5 * time.Second,
}

func init() {
	if err := loadEnv(&defaultConfig, os.LookupEnv); err != nil {
		log.Fatalln(err)
	}
}

// loadEnv overrides conf from ALDL_* variables. A value which doesn't
// parse is an error rather than silently ignored.
func loadEnv(conf *Config, lookup func(string) (string, bool)) error {
	str := func(name string, val *string) {
		if v, ok := lookup(name); ok && v != "" {
			*val = v
		}
	}
	if v, _ := lookup("ALDL_DEVICE_ID"); v != "" {
		conf.DeviceID = v
	} else {
		conf.DeviceID = MachineID()
	}
	if v, ok := lookup("ALDL_MQTT_URL"); ok {
		conf.MQTTBrokerURL = v
	}
	str("ALDL_HOST_PORT", &conf.HostPort)
	str("ALDL_PIN", &conf.Pin)
	str("ALDL_WS_ADDR", &conf.WebSocketAddr)
	str("ALDL_DB", &conf.DBPath)

	var errs []string
	parse := func(name string, fn func(string) error) {
		if v, ok := lookup(name); ok && v != "" {
			if err := fn(v); err != nil {
				errs = append(errs, fmt.Sprintf("%s=%q: %v", name, v, err))
			}
		}
	}
	parse("ALDL_HOST_BAUD", func(v string) (err error) {
		conf.HostBaud, err = strconv.Atoi(v)
		return
	})
	parse("ALDL_HOST_RAW", func(v string) (err error) {
		conf.HostRaw, err = strconv.ParseBool(v)
		return
	})
	parse("ALDL_PIN_INVERTED", func(v string) (err error) {
		conf.PinInverted, err = strconv.ParseBool(v)
		return
	})
	parse("ALDL_HEARTBEAT", func(v string) (err error) {
		conf.HeartbeatInterval, err = time.ParseDuration(v)
		return
	})
	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, ", "))
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.HostPort, "host-port", defaultConfig.HostPort, "Serial port of the host display")
	flag.IntVar(&defaultConfig.HostBaud, "host-baud", defaultConfig.HostBaud, "Baud rate of the host display")
	flag.BoolVar(&defaultConfig.HostRaw, "host-raw", defaultConfig.HostRaw, "Dump raw ECU bytes to the host display")
	flag.StringVar(&defaultConfig.Pin, "pin", defaultConfig.Pin, "GPIO the ALDL line is connected to")
	flag.BoolVar(&defaultConfig.PinInverted, "pin-inverted", defaultConfig.PinInverted, "The GPIO reads high when the ALDL line is low")
	flag.StringVar(&defaultConfig.WebSocketAddr, "ws", defaultConfig.WebSocketAddr, "WebSocket listen address, e.g. :8080")
	flag.StringVar(&defaultConfig.DBPath, "db", defaultConfig.DBPath, "Trip recorder sqlite path")
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Decode a simulated ECU instead of GPIO")
	flag.DurationVar(&defaultConfig.HeartbeatInterval, "heartbeat", defaultConfig.HeartbeatInterval, "Heartbeat interval")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
