package device

import (
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
	"github.com/robotalks/fmtx/pkg/l1/comm/mqtt"
	"github.com/robotalks/fmtx/pkg/l1/comm/stream"
	"github.com/robotalks/fmtx/pkg/l1/comm/websocket"
	"github.com/robotalks/fmtx/pkg/l1/env"
)

// DefaultType is the device type of FM transmitters.
const DefaultType = "fmtx"

// Config provides common options to expose a device to clients.
type Config struct {
	Info l1.DeviceInfo `yaml:"-"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt"`
	// WebsocketAddr is the listen address of the websocket server.
	WebsocketAddr string `yaml:"ws"`
	// StreamAddr is the listen address of the raw TCP server.
	StreamAddr string `yaml:"listen"`
}

var defaultConfig = Config{
	Info: l1.DeviceInfo{
		Ref: l1.DeviceRef{Type: DefaultType},
		Meta: l1.DeviceMeta{
			Description: "FM transmitter",
		},
	},
	MQTTBrokerURL: "mqtt://localhost:1883/fmtx/",
}

func init() {
	defaultConfig.Info.Ref.ID = env.MachineID()
	defaultConfig.ApplyEnv()
}

// ApplyEnv overrides the config with FMTX_* environment variables.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("FMTX_DEVICE_ID"); val != "" {
		c.Info.Ref.ID = val
	}
	if val := os.Getenv("FMTX_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := os.Getenv("FMTX_WS_ADDR"); val != "" {
		c.WebsocketAddr = val
	}
	if val := os.Getenv("FMTX_LISTEN_ADDR"); val != "" {
		c.StreamAddr = val
	}
}

// SetupFlags sets command line flags on fs.
func SetupFlags(fs *flag.FlagSet, conf *Config) {
	SetupIdentityFlags(fs, &conf.Info.Ref.Type, &conf.Info.Ref.ID)
	SetupRegistryFlags(fs, conf)
}

// SetupIdentityFlags sets the device type and ID flags.
func SetupIdentityFlags(fs *flag.FlagSet, typ, id *string) {
	fs.StringVar(typ, "type", *typ, "Device type")
	fs.StringVar(id, "id", *id, "Device ID")
}

// SetupRegistryFlags sets the flags of registry endpoints.
func SetupRegistryFlags(fs *flag.FlagSet, conf *Config) {
	fs.StringVar(&conf.MQTTBrokerURL, "mqtt", conf.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	fs.StringVar(&conf.WebsocketAddr, "ws", conf.WebsocketAddr, "Websocket listen address")
	fs.StringVar(&conf.StreamAddr, "listen", conf.StreamAddr, "TCP listen address")
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

// Env is the env of a device exposed to clients.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
	// Websocket and Stream are the servers enabled by the config.
	Websocket *websocket.Server
	Stream    *stream.Server

	hub *comm.Hub
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	env := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %v", err)
		}
		env.Registrar.Add(reg)
		env.RegistryURLs = append(env.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.WebsocketAddr != "" || c.StreamAddr != "" {
		env.hub = comm.NewHub()
		env.Registrar.Add(env.hub)
	}
	if c.WebsocketAddr != "" {
		env.Websocket = websocket.NewServer(c.WebsocketAddr, c.Info, env.hub)
		env.RegistryURLs = append(env.RegistryURLs, "ws://"+c.WebsocketAddr)
	}
	if c.StreamAddr != "" {
		env.Stream = stream.NewServer(c.StreamAddr, env.hub)
		env.RegistryURLs = append(env.RegistryURLs, "tcp://"+c.StreamAddr)
	}
	if len(env.Registrar.Registrars) == 0 {
		return nil, fmt.Errorf("at least one registrar is required")
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds registrars, servers and the fallback for unsupported
// commands to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	if e.Websocket != nil {
		loop.Add(e.Websocket)
	}
	if e.Stream != nil {
		loop.Add(e.Stream)
	}
	loop.Add(&comm.UnsupportedCommands{})
}
