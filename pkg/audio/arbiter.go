// Package audio provides an in-process audio resource arbiter.
package audio

import (
	"sort"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/fmtx/pkg/fmtx"
)

// Owner identifies a holder of audio resources.
type Owner string

// OwnerTransmitter holds the resources of the FM transmitter path.
const OwnerTransmitter Owner = "fmtx"

// NativeSampleRate is handled without sample rate conversion.
const NativeSampleRate = 48000

// Config describes the audio hardware.
type Config struct {
	// DigitalInput indicates a digital audio input exists.
	DigitalInput bool `yaml:"digitalInput"`
	// SampleRates lists the accepted digital sample rates, empty accepts any.
	SampleRates []uint32 `yaml:"sampleRates"`
	// Deferred replies through the Notifier instead of synchronously.
	Deferred bool `yaml:"deferred"`
}

// DefaultConfig returns the default audio hardware.
func DefaultConfig() Config {
	return Config{
		DigitalInput: true,
		SampleRates:  []uint32{32000, 44100, NativeSampleRate},
	}
}

// Arbiter implements fmtx.AudioArbiter. Other subsystems compete for
// the same resources with Reserve and Release.
type Arbiter struct {
	Config
	Notifier fmtx.Notifier

	lock    sync.Mutex
	owners  map[fmtx.AudioResource]Owner
	active  bool
	current fmtx.AudioRequest
	// seq numbers deferred replies, only the latest one is delivered.
	seq uint64
}

// New creates an Arbiter.
func New(conf Config) *Arbiter {
	return &Arbiter{Config: conf, owners: make(map[fmtx.AudioResource]Owner)}
}

// StartOperation implements fmtx.AudioArbiter.
func (a *Arbiter) StartOperation(req fmtx.AudioRequest) fmtx.AudioReply {
	a.lock.Lock()
	defer a.lock.Unlock()
	reply := a.claim(req)
	if reply.Result == fmtx.AudioSuccess {
		a.active = true
	}
	return a.reply("start", reply)
}

// StopOperation implements fmtx.AudioArbiter.
func (a *Arbiter) StopOperation(req fmtx.AudioRequest) fmtx.AudioReply {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.releaseOwner(OwnerTransmitter)
	a.active = false
	return a.reply("stop", fmtx.AudioReply{Result: fmtx.AudioSuccess})
}

// ChangeResource implements fmtx.AudioArbiter.
func (a *Arbiter) ChangeResource(req fmtx.AudioRequest) fmtx.AudioReply {
	return a.reconfigure("change-resource", req)
}

// ChangeConfiguration implements fmtx.AudioArbiter.
func (a *Arbiter) ChangeConfiguration(req fmtx.AudioRequest) fmtx.AudioReply {
	return a.reconfigure("change-config", req)
}

func (a *Arbiter) reconfigure(name string, req fmtx.AudioRequest) fmtx.AudioReply {
	a.lock.Lock()
	defer a.lock.Unlock()
	if !a.active {
		return a.reply(name, fmtx.AudioReply{Result: fmtx.AudioError})
	}
	return a.reply(name, a.claim(req))
}

// claim switches the transmitter path to the resources of req.
// Must be called with lock held.
func (a *Arbiter) claim(req fmtx.AudioRequest) fmtx.AudioReply {
	if !a.supports(req) {
		return fmtx.AudioReply{Result: fmtx.AudioNotSupported}
	}
	want := Resources(req)
	var unavailable []fmtx.AudioResource
	for _, r := range want {
		if owner, ok := a.owners[r]; ok && owner != OwnerTransmitter {
			unavailable = append(unavailable, r)
		}
	}
	if len(unavailable) > 0 {
		return fmtx.AudioReply{Result: fmtx.AudioNoResources, Unavailable: unavailable}
	}
	a.releaseOwner(OwnerTransmitter)
	for _, r := range want {
		a.owners[r] = OwnerTransmitter
	}
	a.current = req
	return fmtx.AudioReply{Result: fmtx.AudioSuccess}
}

func (a *Arbiter) supports(req fmtx.AudioRequest) bool {
	if req.Channels != 1 && req.Channels != 2 {
		return false
	}
	if req.Source != fmtx.AudioDigital {
		return true
	}
	if !a.DigitalInput {
		return false
	}
	if len(a.SampleRates) == 0 {
		return true
	}
	for _, rate := range a.SampleRates {
		if rate == req.SampleRate {
			return true
		}
	}
	return false
}

func (a *Arbiter) reply(name string, reply fmtx.AudioReply) fmtx.AudioReply {
	glog.V(2).Infof("audio: %s: %s %v", name, reply.Result, reply.Unavailable)
	if !a.Deferred || a.Notifier == nil {
		return reply
	}
	a.seq++
	go a.notify(a.seq, fmtx.NewAudioEvent(reply.Result, reply.Unavailable))
	return fmtx.AudioReply{Result: fmtx.AudioPending}
}

func (a *Arbiter) notify(seq uint64, ev fmtx.TransportEvent) {
	a.lock.Lock()
	current := seq == a.seq
	a.lock.Unlock()
	if !current {
		glog.V(2).Infof("audio: superseded reply dropped")
		return
	}
	a.Notifier.HandleTransportEvent(ev)
}

// Resources lists the resources an audio path requires.
func Resources(req fmtx.AudioRequest) []fmtx.AudioResource {
	res := []fmtx.AudioResource{fmtx.ResourceFMTransmitter}
	if req.Source == fmtx.AudioDigital {
		res = append(res, fmtx.ResourceDigitalInput)
		if req.SampleRate != NativeSampleRate {
			res = append(res, fmtx.ResourceSampleRateConverter)
		}
	} else {
		res = append(res, fmtx.ResourceAnalogInput)
	}
	return res
}

// Reserve claims resources for another owner. Resources held by a different
// owner are returned and not claimed.
func (a *Arbiter) Reserve(owner Owner, res ...fmtx.AudioResource) []fmtx.AudioResource {
	a.lock.Lock()
	defer a.lock.Unlock()
	var conflicts []fmtx.AudioResource
	for _, r := range res {
		if cur, ok := a.owners[r]; ok && cur != owner {
			conflicts = append(conflicts, r)
			continue
		}
		a.owners[r] = owner
	}
	return conflicts
}

// Release gives up resources held by owner. No resources releases all.
func (a *Arbiter) Release(owner Owner, res ...fmtx.AudioResource) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if len(res) == 0 {
		a.releaseOwner(owner)
		return
	}
	for _, r := range res {
		if a.owners[r] == owner {
			delete(a.owners, r)
		}
	}
}

func (a *Arbiter) releaseOwner(owner Owner) {
	for r, cur := range a.owners {
		if cur == owner {
			delete(a.owners, r)
		}
	}
}

// Held lists the resources held by owner in ascending order.
func (a *Arbiter) Held(owner Owner) []fmtx.AudioResource {
	a.lock.Lock()
	defer a.lock.Unlock()
	var res []fmtx.AudioResource
	for r, cur := range a.owners {
		if cur == owner {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Active reports whether the transmitter path is started.
func (a *Arbiter) Active() (fmtx.AudioRequest, bool) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.current, a.active
}
