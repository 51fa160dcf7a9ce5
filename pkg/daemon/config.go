// Package daemon assembles a transmitter daemon from its configuration.
package daemon

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/robotalks/fmtx/pkg/audio"
	"github.com/robotalks/fmtx/pkg/chiplink"
	"github.com/robotalks/fmtx/pkg/fmtx"
	"github.com/robotalks/fmtx/pkg/i2cbus"
	"github.com/robotalks/fmtx/pkg/l1/env/device"
)

// Transports.
const (
	TransportSim    = "sim"
	TransportSerial = "serial"
	TransportI2C    = "i2c"
)

// Config is the daemon configuration.
type Config struct {
	ID       string        `yaml:"id"`
	Type     string        `yaml:"type"`
	Registry device.Config `yaml:",inline"`

	Transport string          `yaml:"transport"`
	Serial    chiplink.Config `yaml:"serial"`
	I2C       i2cbus.Config   `yaml:"i2c"`
	Sim       SimConfig       `yaml:"sim"`
	Scripts   ScriptsConfig   `yaml:"scripts"`
	Engine    EngineConfig    `yaml:"engine"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Audio     audio.Config    `yaml:"audio"`
}

// SimConfig configures the simulated chip.
type SimConfig struct {
	Latency time.Duration `yaml:"latency"`
}

// ScriptsConfig locates script files.
type ScriptsConfig struct {
	Dir string `yaml:"dir"`
}

// EngineConfig configures the command engine.
type EngineConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxPending int           `yaml:"maxPending"`
	ChunkSize  int           `yaml:"chunkSize"`
	InitScript string        `yaml:"initScript"`
	// AutoEnable enables the transmitter when the daemon starts.
	AutoEnable bool `yaml:"autoEnable"`
}

// DefaultsConfig is the configuration restored by Enable and Disable.
type DefaultsConfig struct {
	Frequency   uint32 `yaml:"frequency"` // kHz
	PowerLevel  uint8  `yaml:"powerLevel"`
	PreEmphasis uint8  `yaml:"preEmphasis"`
	Channels    uint8  `yaml:"channels"`
	PSText      string `yaml:"psText"`
	PICode      uint16 `yaml:"piCode"`
	PTY         uint8  `yaml:"pty"`
	ECC         uint8  `yaml:"ecc"`
	AFCode      uint8  `yaml:"afCode"`
}

// Cache converts the defaults to a firmware cache.
func (d DefaultsConfig) Cache() fmtx.FirmwareCache {
	fc := fmtx.DefaultCache()
	fc.Frequency = d.Frequency
	fc.PowerLevel = d.PowerLevel
	fc.PreEmphasis = fmtx.PreEmphasis(d.PreEmphasis)
	fc.Channels = d.Channels
	fc.PSText = []byte(d.PSText)
	fc.PICode = d.PICode
	fc.PTY = d.PTY
	fc.ECC = d.ECC
	fc.AFCode = d.AFCode
	return fc
}

func defaultsFrom(fc fmtx.FirmwareCache) DefaultsConfig {
	return DefaultsConfig{
		Frequency:   fc.Frequency,
		PowerLevel:  fc.PowerLevel,
		PreEmphasis: uint8(fc.PreEmphasis),
		Channels:    fc.Channels,
		PSText:      string(fc.PSText),
		PICode:      fc.PICode,
		PTY:         fc.PTY,
		ECC:         fc.ECC,
		AFCode:      fc.AFCode,
	}
}

// Default returns the default configuration, including the registry
// defaults and their environment overrides.
func Default() *Config {
	opts := fmtx.DefaultOptions()
	reg := device.NewConfig()
	return &Config{
		ID:        reg.Info.Ref.ID,
		Type:      reg.Info.Ref.Type,
		Registry:  *reg,
		Transport: TransportSim,
		Serial:    chiplink.DefaultConfig(),
		I2C:       i2cbus.DefaultConfig(),
		Sim:       SimConfig{Latency: time.Millisecond},
		Engine: EngineConfig{
			Timeout:    opts.Timeout,
			MaxPending: opts.MaxPending,
			ChunkSize:  opts.ChunkSize,
			InitScript: opts.InitScript,
		},
		Defaults: defaultsFrom(opts.Defaults),
		Audio:    audio.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when empty), then environment variables. Flags are applied by
// the caller afterwards, followed by Validate.
func Load(path string) (*Config, error) {
	conf := Default()
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %v", path, err)
		}
		if err := yaml.UnmarshalStrict(data, conf); err != nil {
			return nil, fmt.Errorf("parse config %s: %v", path, err)
		}
	}
	conf.ApplyEnv()
	return conf, nil
}

// ApplyEnv overrides the config with FMTX_* environment variables.
func (c *Config) ApplyEnv() {
	reg := &c.Registry
	reg.Info.Ref.ID, reg.Info.Ref.Type = c.ID, c.Type
	reg.ApplyEnv()
	c.ID = reg.Info.Ref.ID
	if val := os.Getenv("FMTX_TRANSPORT"); val != "" {
		c.Transport = val
	}
	if val := os.Getenv("FMTX_SERIAL_PORT"); val != "" {
		c.Serial.Port = val
	}
	if val := os.Getenv("FMTX_SCRIPTS_DIR"); val != "" {
		c.Scripts.Dir = val
	}
}

// SetupFlags registers command line flags overriding the config.
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	device.SetupIdentityFlags(fs, &c.Type, &c.ID)
	device.SetupRegistryFlags(fs, &c.Registry)
	fs.StringVar(&c.Transport, "transport", c.Transport, "Chip transport: sim, serial or i2c")
	fs.StringVar(&c.Serial.Port, "serial-port", c.Serial.Port, "Serial port of the chip link")
	fs.IntVar(&c.Serial.Baud, "serial-baud", c.Serial.Baud, "Baud rate of the chip link")
	fs.StringVar(&c.I2C.Bus, "i2c-bus", c.I2C.Bus, "I2C bus name")
	fs.StringVar(&c.I2C.IRQ, "i2c-irq", c.I2C.IRQ, "GPIO pin of the interrupt line")
	fs.StringVar(&c.Scripts.Dir, "scripts", c.Scripts.Dir, "Directory of script files")
	fs.DurationVar(&c.Engine.Timeout, "timeout", c.Engine.Timeout, "Command timeout")
	fs.BoolVar(&c.Engine.AutoEnable, "enable", c.Engine.AutoEnable, "Enable the transmitter on start")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ID == "" || c.Type == "" {
		return errors.New("device id and type must be specified")
	}
	switch c.Transport {
	case TransportSim, TransportSerial, TransportI2C:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.Transport == TransportSerial && c.Serial.Port == "" {
		return errors.New("serial port must be specified")
	}
	if c.Engine.ChunkSize < 0 || c.Engine.ChunkSize > fmtx.MaxChunkSize {
		return fmt.Errorf("chunk size must be within 1..%d", fmtx.MaxChunkSize)
	}
	if c.Engine.MaxPending < 0 {
		return errors.New("maxPending must not be negative")
	}
	if c.Defaults.PowerLevel > fmtx.MaxPowerLevel {
		return fmt.Errorf("default power level exceeds %d", fmtx.MaxPowerLevel)
	}
	if c.Defaults.Channels != 1 && c.Defaults.Channels != 2 {
		return errors.New("default channels must be 1 or 2")
	}
	if len(c.Defaults.PSText) > fmtx.MaxPSTextLength {
		return fmt.Errorf("default PS text exceeds %d bytes", fmtx.MaxPSTextLength)
	}
	if c.Defaults.Frequency == 0 {
		return errors.New("default frequency must be specified")
	}
	return nil
}

// RegistryConfig returns the registry configuration with the device identity.
func (c *Config) RegistryConfig() *device.Config {
	reg := c.Registry
	reg.Info.Ref.ID, reg.Info.Ref.Type = c.ID, c.Type
	return &reg
}

// Options returns the engine options.
func (c *Config) Options() fmtx.Options {
	opts := fmtx.DefaultOptions()
	opts.Timeout = c.Engine.Timeout
	opts.MaxPending = c.Engine.MaxPending
	opts.ChunkSize = c.Engine.ChunkSize
	if c.Engine.InitScript != "" {
		opts.InitScript = c.Engine.InitScript
	}
	opts.Defaults = c.Defaults.Cache()
	return opts
}
