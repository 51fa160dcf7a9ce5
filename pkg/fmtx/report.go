package fmtx

import "github.com/golang/glog"

// complete reports the executing command and releases it.
func (d *Device) complete() {
	info := &d.info
	c := info.cmd
	status := info.status
	if reason := d.cancellation(); reason != CancelNone {
		status = reason.Status()
	}
	if status == StatusSuccess {
		d.cache.update(c, info, &d.opts.Defaults)
	}
	switch c.kind {
	case CmdEnable:
		if status == StatusSuccess {
			glog.Infof("fmtx: enabled, ASIC version 0x%04x", d.cache.ASICVersion)
		}
	case CmdDisable:
		d.disableRequested = d.queue.contains(CmdDisable)
		if status == StatusSuccess {
			d.irq.reset()
			glog.Infof("fmtx: disabled")
		}
	}
	ev := d.buildEvent(c, status)
	glog.V(2).Infof("fmtx: %s done: %s", c.kind, status)

	d.info = currentInfo{}
	d.pool.release(c)
	if d.Handler != nil {
		d.Handler.HandleEvent(ev)
	}
}

func (d *Device) buildEvent(c *command, status Status) *Event {
	fc := &d.cache
	ev := &Event{Kind: c.kind, Status: status, Context: c.ctx}
	switch c.kind {
	case CmdEnable, CmdDisable:
		ev.Value = uint32(fc.ASICVersion)
	case CmdTune, CmdSetPowerLevel, CmdSetMuteMode, CmdSetPreEmphasis, CmdSetMonoStereo,
		CmdSetRDSTransmission, CmdSetRDSPICode, CmdSetRDSPTY, CmdSetRDSECC, CmdSetRDSAFCode,
		CmdSetRDSMusicSpeech, CmdSetRDSFieldMask, CmdSetRDSPSDisplayMode:
		ev.Value = c.value
	case CmdSetRDSPSText, CmdSetRDSRawData:
		ev.Text = cloneBytes(c.text)
		ev.Value = uint32(len(c.text))
	case CmdSetRDSRTText:
		ev.Text = cloneBytes(c.text)
		ev.Value = c.value
	case CmdSetRDSTrafficCodes:
		ev.TrafficAnnouncement, ev.TrafficProgram = c.ta, c.tp
	case CmdStartTransmission, CmdStopTransmission:
		ev.Value = boolValue(fc.TransmissionOn)
		ev.Audio = fc.audioRequest()
	case CmdChangeAudioSource, CmdChangeDigitalConfig:
		ev.Audio = d.audioRequest(audioChangeConfig, c)
	case CmdGetTunedFrequency:
		ev.Value = fc.Frequency
	case CmdGetPowerLevel:
		ev.Value = uint32(fc.PowerLevel)
	case CmdGetMuteMode:
		ev.Value = uint32(fc.MuteMode)
	case CmdGetPreEmphasis:
		ev.Value = uint32(fc.PreEmphasis)
	case CmdGetMonoStereo:
		ev.Value = uint32(fc.Channels)
	case CmdGetAudioConfig:
		ev.Audio = fc.audioRequest()
	case CmdGetRDSTransmission:
		ev.Value = boolValue(fc.RDSEnabled)
	case CmdGetRDSPSText:
		ev.Text = cloneBytes(fc.PSText)
		ev.Value = uint32(len(fc.PSText))
	case CmdGetRDSRTText:
		ev.Text = cloneBytes(fc.RTText)
		ev.Value = uint32(fc.RTType)
	case CmdGetRDSPICode:
		ev.Value = uint32(fc.PICode)
	case CmdGetRDSPTY:
		ev.Value = uint32(fc.PTY)
	case CmdGetRDSECC:
		ev.Value = uint32(fc.ECC)
	case CmdGetRDSAFCode:
		ev.Value = uint32(fc.AFCode)
	case CmdGetRDSTrafficCodes:
		ev.TrafficAnnouncement, ev.TrafficProgram = fc.TrafficAnnouncement, fc.TrafficProgram
	case CmdGetRDSMusicSpeech:
		ev.Value = uint32(fc.MusicSpeech)
	case CmdGetRDSFieldMask:
		ev.Value = fc.FieldMask
	case CmdGetRDSPSDisplayMode:
		ev.Value = uint32(fc.PSDisplayMode)
	}
	if len(d.info.unavailable) > 0 {
		ev.Unavailable = append([]AudioResource(nil), d.info.unavailable...)
	}
	return ev
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
