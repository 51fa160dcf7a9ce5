package daemon

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/audio"
	"github.com/robotalks/fmtx/pkg/fmtx"
	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1/env/device"
	"github.com/robotalks/fmtx/pkg/script"
	"github.com/robotalks/fmtx/pkg/sim"
	"github.com/robotalks/fmtx/pkg/transmitter"
)

// Daemon is an assembled transmitter: chip transport, engine, script
// player, audio arbiter, loop controller and client registrars.
type Daemon struct {
	Config     *Config
	Device     *fmtx.Device
	Controller *transmitter.Controller
	Player     *script.Player
	Arbiter    *audio.Arbiter
	Env        *device.Env
	// Sim is the simulated chip when Transport is "sim".
	Sim *sim.Chip

	transport fx.Runnable
	closers   []io.Closer
}

type notifiable interface {
	fmtx.Transport
	fx.Runnable
}

// New assembles a Daemon, the configuration must be valid.
func New(conf *Config) (*Daemon, error) {
	d := &Daemon{
		Config:  conf,
		Device:  fmtx.New(conf.Options()),
		Player:  script.NewPlayer(conf.Scripts.Dir),
		Arbiter: audio.New(conf.Audio),
	}
	d.Controller = transmitter.New(d.Device)

	env, err := conf.RegistryConfig().NewEnv()
	if err != nil {
		return nil, err
	}
	d.Env = env
	d.Controller.Registrar = env.Registrar

	t, err := d.openTransport()
	if err != nil {
		d.Close()
		return nil, err
	}
	d.transport = t
	d.Device.Transport = t
	d.Device.Player = d.Player
	d.Device.Arbiter = d.Arbiter
	d.Arbiter.Notifier = d.Controller
	return d, nil
}

func (d *Daemon) openTransport() (notifiable, error) {
	switch d.Config.Transport {
	case TransportSim:
		chip := sim.NewChip()
		chip.Latency = d.Config.Sim.Latency
		chip.Notifier = d.Controller
		d.Sim = chip
		return chip, nil
	case TransportSerial:
		link, port, err := d.Config.Serial.Open()
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, port)
		link.Notifier = d.Controller
		return link, nil
	case TransportI2C:
		t, bus, err := d.Config.I2C.Open()
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, bus)
		t.Notifier = d.Controller
		return t, nil
	}
	return nil, fmt.Errorf("unknown transport %q", d.Config.Transport)
}

// AddToLoop implements LoopAdder.
func (d *Daemon) AddToLoop(l *fx.Loop) {
	l.Add(d.Controller, d.Env)
	l.AddRunnable(fx.NamedRun("transport", d.transport))
	if d.Config.Engine.AutoEnable {
		l.AddRunnable(fx.NamedRun("auto-enable", fx.RunFunc(d.autoEnable)))
	}
}

func (d *Daemon) autoEnable(ctx context.Context) error {
	_, err := d.Controller.Do(fmtx.Request{Kind: fmtx.CmdEnable}).Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		glog.Errorf("enable failed: %v", err)
		return nil
	}
	glog.Info("transmitter enabled")
	return nil
}

// Close releases the chip connection.
func (d *Daemon) Close() error {
	var errs fx.AggregatedError
	for _, c := range d.closers {
		errs.Add(c.Close())
	}
	d.closers = nil
	return errs.Aggregate()
}

// Run runs the daemon until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.Close()
	glog.Infof("%s serving on %v", d.Config.RegistryConfig().Info.Ref.Name(), d.Env.RegistryURLs)
	return fx.NewLoop().Add(d).Run(ctx)
}
