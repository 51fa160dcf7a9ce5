package fmtx

import "github.com/golang/glog"

type audioOp int

const (
	audioStart audioOp = iota
	audioStop
	audioChangeResource
	audioChangeConfig
)

var audioOpNames = []string{"start", "stop", "change-resource", "change-config"}

func (op audioOp) String() string {
	return audioOpNames[op]
}

func (d *Device) callArbiter(op audioOp, req AudioRequest) AudioReply {
	if d.Arbiter == nil {
		return AudioReply{Result: AudioSuccess}
	}
	switch op {
	case audioStart:
		return d.Arbiter.StartOperation(req)
	case audioStop:
		return d.Arbiter.StopOperation(req)
	case audioChangeResource:
		return d.Arbiter.ChangeResource(req)
	}
	return d.Arbiter.ChangeConfiguration(req)
}

// audioRequest derives the arbiter parameters from the cache and the command.
func (d *Device) audioRequest(op audioOp, c *command) AudioRequest {
	req := d.cache.audioRequest()
	switch c.kind {
	case CmdSetMonoStereo:
		req.Channels = uint8(c.value)
	case CmdChangeAudioSource:
		req.Source = c.audio.Source
	case CmdChangeDigitalConfig:
		req.SampleRate = c.audio.SampleRate
	}
	return req
}

// audioResult maps an arbiter result onto the next step. Success skips
// the wait stage when the reply was synchronous.
func (d *Device) audioResult(res AudioResult, unavailable []AudioResource, sync bool) step {
	switch res {
	case AudioSuccess:
		if sync {
			return d.skip(1)
		}
		return d.advance()
	case AudioNoResources:
		d.info.audioHeld = false
		d.info.unavailable = append(d.info.unavailable[:0], unavailable...)
		return d.finish(StatusAudioUnavailableResources)
	case AudioNotSupported:
		d.info.audioHeld = false
		return d.finish(StatusAudioNotSupported)
	}
	glog.Errorf("fmtx: %s: audio operation failed: %s", d.info.cmd.kind, res)
	d.info.audioHeld = false
	return d.finish(StatusInternalError)
}

// audioStage calls the arbiter when cond holds, otherwise skips itself and
// the following wait stage.
func audioStage(op audioOp, cond func(d *Device, c *command) bool) stage {
	return func(d *Device, c *command) step {
		if cond != nil && !cond(d, c) {
			return d.skip(1)
		}
		d.info.hasEvent = false
		reply := d.callArbiter(op, d.audioRequest(op, c))
		glog.V(2).Infof("fmtx: %s: audio %s: %s", c.kind, op, reply.Result)
		if op == audioStart {
			d.info.audioHeld = true
		}
		if reply.Result == AudioPending {
			d.out.audio = true
			return d.suspend(WaitAudio)
		}
		return d.audioResult(reply.Result, reply.Unavailable, true)
	}
}

func waitAudioStage(d *Device, c *command) step {
	if !d.info.hasEvent {
		return d.advance()
	}
	ev := &d.info.event
	return d.audioResult(ev.Audio, ev.Unavailable(), false)
}

// finishStartTransmission releases what a failed or cancelled start
// acquired: the transmitter power and the audio operation. Once the cleanup
// itself timed out, the audio operation is released without waiting.
func finishStartTransmission(d *Device, c *command) step {
	info := &d.info
	if info.status == StatusSuccess && d.cancellation() == CancelNone {
		return d.done()
	}
	if info.txWritten && !info.aborted {
		info.txWritten = false
		info.hasEvent = false
		if d.Transport.SendWrite(OpTransmission, EncodeValue(0)) == TransportPending {
			d.out.chipOp(OpTransmission)
			return d.stay(WaitCommandComplete)
		}
	}
	if info.audioHeld {
		info.audioHeld = false
		info.hasEvent = false
		reply := d.callArbiter(audioStop, d.audioRequest(audioStop, c))
		if reply.Result == AudioPending && !info.aborted {
			d.out.audio = true
			return d.stay(WaitAudio)
		}
	}
	return d.done()
}
