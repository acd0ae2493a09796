// Package env provides deploy-time configuration of a terminal.
package env

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/gate.go/pkg/l0/line"
	"github.com/robotalks/gate.go/pkg/l0/terminal"
	"github.com/robotalks/gate.go/pkg/l0/tick"
	"github.com/robotalks/gate.go/pkg/l1"
)

// ErrInvalidConfig indicates the configuration is rejected by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// maxTicks is the largest limit that can still expire on a wrapping counter.
const maxTicks = 0xfffe

// GPIOConfig selects the sensor line. A negative Line disables the sensor.
type GPIOConfig struct {
	Chip     string        `yaml:"chip"`
	Line     int           `yaml:"line"`
	Debounce time.Duration `yaml:"debounce"`
}

// Config provides options to setup a terminal.
type Config struct {
	Type        string `yaml:"type"`
	ID          string `yaml:"id"`
	Description string `yaml:"description"`

	// Link is the verifier link URL.
	// e.g. serial:///dev/ttyUSB0?baud=9600 or ws://host:port/path
	Link string `yaml:"link"`
	// LinkRetry is the delay before reopening a lost link.
	LinkRetry time.Duration `yaml:"link_retry"`

	// MQTTBrokerURL specifies the MQTT broker for status publishing,
	// empty disables it. e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`

	GPIO GPIOConfig `yaml:"gpio"`

	TickPeriod     time.Duration `yaml:"tick_period"`
	BufferCapacity int           `yaml:"buffer_capacity"`
	CheckTimeout   uint          `yaml:"check_timeout"`
	HoldTime       uint          `yaml:"hold_time"`
}

var defaultConfig = Config{
	Type:           "gate",
	Link:           "serial:///dev/ttyUSB0?baud=9600",
	LinkRetry:      time.Second,
	GPIO:           GPIOConfig{Chip: "gpiochip0", Line: -1},
	TickPeriod:     tick.DefaultPeriod,
	BufferCapacity: line.DefaultCapacity,
	CheckTimeout:   uint(terminal.DefaultTiming.CheckTimeout),
	HoldTime:       uint(terminal.DefaultTiming.HoldTime),
}

func init() {
	if val := os.Getenv("GATE_TYPE"); val != "" {
		defaultConfig.Type = val
	}
	if val := os.Getenv("GATE_ID"); val != "" {
		defaultConfig.ID = val
	}
	if val := os.Getenv("GATE_LINK"); val != "" {
		defaultConfig.Link = val
	}
	if val := os.Getenv("GATE_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Type, "type", defaultConfig.Type, "Terminal type")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Terminal ID, defaults to machine ID")
	flag.StringVar(&defaultConfig.Link, "link", defaultConfig.Link, "Verifier link URL")
	flag.DurationVar(&defaultConfig.LinkRetry, "link-retry", defaultConfig.LinkRetry, "Delay before reopening a lost link")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for status")
	flag.StringVar(&defaultConfig.GPIO.Chip, "gpio-chip", defaultConfig.GPIO.Chip, "GPIO chip of the sensor")
	flag.IntVar(&defaultConfig.GPIO.Line, "gpio-line", defaultConfig.GPIO.Line, "GPIO line offset of the sensor, negative disables")
	flag.DurationVar(&defaultConfig.GPIO.Debounce, "gpio-debounce", defaultConfig.GPIO.Debounce, "Sensor debounce period")
	flag.DurationVar(&defaultConfig.TickPeriod, "tick", defaultConfig.TickPeriod, "Tick period")
	flag.IntVar(&defaultConfig.BufferCapacity, "rx-buffer", defaultConfig.BufferCapacity, "Receive line buffer capacity")
	flag.UintVar(&defaultConfig.CheckTimeout, "check-timeout", defaultConfig.CheckTimeout, "Check timeout in ticks")
	flag.UintVar(&defaultConfig.HoldTime, "hold-time", defaultConfig.HoldTime, "Result hold time in ticks")
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

// Load creates a Config from defaults overlaid with a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := NewConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return conf, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Type == "":
		return fmt.Errorf("%w: terminal type must be specified", ErrInvalidConfig)
	case c.Link == "":
		return fmt.Errorf("%w: link must be specified", ErrInvalidConfig)
	case c.LinkRetry <= 0:
		return fmt.Errorf("%w: link retry must be positive", ErrInvalidConfig)
	case c.TickPeriod <= 0:
		return fmt.Errorf("%w: tick period must be positive", ErrInvalidConfig)
	case c.BufferCapacity < 2:
		return fmt.Errorf("%w: buffer capacity %d too small", ErrInvalidConfig, c.BufferCapacity)
	case c.CheckTimeout == 0 || c.CheckTimeout > maxTicks:
		return fmt.Errorf("%w: check timeout %d out of range", ErrInvalidConfig, c.CheckTimeout)
	case c.HoldTime == 0 || c.HoldTime > maxTicks:
		return fmt.Errorf("%w: hold time %d out of range", ErrInvalidConfig, c.HoldTime)
	}
	return nil
}

// Ref returns the terminal reference, filling in the machine ID.
func (c *Config) Ref() l1.TerminalRef {
	ref := l1.TerminalRef{Type: c.Type, ID: c.ID}
	if ref.ID == "" {
		ref.ID = MachineID()
	}
	return ref
}

// Timing returns the state machine timing.
func (c *Config) Timing() terminal.Timing {
	return terminal.Timing{
		CheckTimeout: tick.Tick(c.CheckTimeout),
		HoldTime:     tick.Tick(c.HoldTime),
	}
}
