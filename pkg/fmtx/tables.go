package fmtx

// stageTables maps every command kind to its stage sequence. The last stage
// of each sequence completes the command.
var stageTables [numCommandKinds]stageTable

func init() {
	getters := []CommandKind{
		CmdGetTunedFrequency,
		CmdGetPowerLevel,
		CmdGetMuteMode,
		CmdGetPreEmphasis,
		CmdGetMonoStereo,
		CmdGetAudioConfig,
		CmdGetRDSTransmission,
		CmdGetRDSPSText,
		CmdGetRDSRTText,
		CmdGetRDSPICode,
		CmdGetRDSPTY,
		CmdGetRDSECC,
		CmdGetRDSAFCode,
		CmdGetRDSTrafficCodes,
		CmdGetRDSMusicSpeech,
		CmdGetRDSFieldMask,
		CmdGetRDSPSDisplayMode,
	}
	for _, k := range getters {
		stageTables[k] = stageTable{stages: []stage{completeStage}}
	}

	setters := []struct {
		kind  CommandKind
		op    Opcode
		value func(d *Device, c *command) []byte
	}{
		{CmdSetPowerLevel, OpPowerLevel, commandValue},
		{CmdSetMuteMode, OpMuteMode, commandValue},
		{CmdSetPreEmphasis, OpPreEmphasis, commandValue},
		{CmdSetRDSTransmission, OpRDSTransmission, commandValue},
		{CmdSetRDSPICode, OpRDSPICode, commandValue},
		{CmdSetRDSPTY, OpRDSPTY, commandValue},
		{CmdSetRDSECC, OpRDSECC, commandValue},
		{CmdSetRDSAFCode, OpRDSAFCode, commandValue},
		{CmdSetRDSTrafficCodes, OpRDSTraffic, trafficValue},
		{CmdSetRDSMusicSpeech, OpRDSMusicSpeech, commandValue},
		{CmdSetRDSPSDisplayMode, OpRDSPSDisplay, commandValue},
	}
	for _, s := range setters {
		stageTables[s.kind] = stageTable{chip: true, stages: []stage{
			skipStage(cached, StatusSuccess),
			writeStage(s.op, s.value),
			waitCompleteStage,
			completeStage,
		}}
	}

	stageTables[CmdTune] = stageTable{chip: true, stages: []stage{
		skipStage(cached, StatusSuccess),
		armedWriteStage(OpFrequency, IntFrequencyReady, commandValue),
		waitCompleteStage,
		waitInterruptStage(IntFrequencyReady),
		completeStage,
	}}

	stageTables[CmdStartTransmission] = stageTable{chip: true, stages: []stage{
		skipStage(cached, StatusSuccess),
		audioStage(audioStart, nil),
		waitAudioStage,
		powerOnTransmitterStage,
		waitCompleteStage,
		waitInterruptStage(IntPowerEnabled),
		finishStartTransmission,
	}}

	stageTables[CmdStopTransmission] = stageTable{chip: true, stages: []stage{
		skipStage(cached, StatusSuccess),
		writeStage(OpTransmission, constValue(0)),
		waitCompleteStage,
		audioStage(audioStop, nil),
		waitAudioStage,
		completeStage,
	}}

	stageTables[CmdSetMonoStereo] = stageTable{chip: true, stages: []stage{
		skipStage(cached, StatusSuccess),
		audioStage(audioChangeConfig, transmitting),
		waitAudioStage,
		writeStage(OpMonoStereo, commandValue),
		waitCompleteStage,
		completeStage,
	}}

	stageTables[CmdChangeAudioSource] = stageTable{chip: true, stages: []stage{
		skipStage(cached, StatusSuccess),
		audioStage(audioChangeResource, transmitting),
		waitAudioStage,
		writeStage(OpAudioIO, audioSourceValue),
		waitCompleteStage,
		completeStage,
	}}

	stageTables[CmdChangeDigitalConfig] = stageTable{chip: true, stages: []stage{
		skipStage(analogSource, StatusNotApplicable),
		skipStage(cached, StatusSuccess),
		audioStage(audioChangeConfig, transmitting),
		waitAudioStage,
		writeStage(OpDigitalConfig, sampleRateValue),
		waitCompleteStage,
		completeStage,
	}}

	payloads := []struct {
		kind     CommandKind
		lengthOp Opcode
		dataOp   Opcode
		payload  payloadFunc
		extra    func(c *command) uint32
	}{
		{CmdSetRDSPSText, OpRDSPSLength, OpRDSPSData, commandText, nil},
		{CmdSetRDSRTText, OpRDSRTLength, OpRDSRTData, commandText, rtType},
		{CmdSetRDSRawData, OpRDSRawLength, OpRDSRawData, commandText, nil},
		{CmdSetRDSFieldMask, OpRDSMaskLength, OpRDSMaskData, fieldMaskPayload, nil},
	}
	for _, p := range payloads {
		stages := chunkLoop(p.lengthOp, p.dataOp, p.payload, p.extra)
		stageTables[p.kind] = stageTable{chip: true, stages: append(stages, completeStage)}
	}

	enable := []stage{
		skipStage(enabled, StatusNotApplicable),
		powerOnStage,
		waitCompleteStage,
		readStage(OpASICVersion, 2),
		waitReadStage(storeASICVersion),
		scriptStage,
		waitScriptStage,
		writeStage(OpInterruptMask, interruptMaskValue),
		waitThenStage(enableInterrupts),
		writeStage(OpPowerLevel, defaultPowerLevel),
		waitCompleteStage,
	}
	enable = append(enable, chunkLoop(OpRDSPSLength, OpRDSPSData, defaultPSText, nil)...)
	stageTables[CmdEnable] = stageTable{stages: append(enable, finishEnable)}

	stageTables[CmdDisable] = stageTable{stages: []stage{
		skipStage(disabled, StatusNotApplicable),
		writeIfStage(transmitting, OpTransmission, constValue(0)),
		waitCompleteStage,
		audioStage(audioStop, transmitting),
		waitAudioStage,
		writeStage(OpPower, constValue(0)),
		waitCompleteStage,
		completeStage,
	}}
}

func enabled(d *Device, c *command) bool {
	return d.cache.Enabled
}

func disabled(d *Device, c *command) bool {
	return !d.cache.Enabled
}

func analogSource(d *Device, c *command) bool {
	return d.cache.AudioSource != AudioDigital
}

func trafficValue(d *Device, c *command) []byte {
	var v uint32
	if c.ta {
		v |= 2
	}
	if c.tp {
		v |= 1
	}
	return EncodeValue(v)
}

func audioSourceValue(d *Device, c *command) []byte {
	return EncodeValue(uint32(c.audio.Source))
}

func sampleRateValue(d *Device, c *command) []byte {
	return EncodeValue(c.audio.SampleRate)
}

func interruptMaskValue(d *Device, c *command) []byte {
	return EncodeValue(uint32(d.opts.InterruptMask))
}

func defaultPowerLevel(d *Device, c *command) []byte {
	return EncodeValue(uint32(d.opts.Defaults.PowerLevel))
}

func storeASICVersion(d *Device, c *command, data []byte) {
	d.info.asic = uint16(DecodeValue(data))
}

func enableInterrupts(d *Device, c *command) {
	d.irq.enabled = d.opts.InterruptMask
}

func powerOnStage(d *Device, c *command) step {
	s := d.write(OpPower, EncodeValue(1))
	d.info.powerWritten = d.info.status == StatusSuccess
	return s
}

// finishEnable powers the chip off again when Enable failed or was
// cancelled after the power-on write.
func finishEnable(d *Device, c *command) step {
	info := &d.info
	if info.status == StatusSuccess && d.cancellation() == CancelNone {
		return d.done()
	}
	if info.powerWritten && !info.aborted {
		info.powerWritten = false
		info.hasEvent = false
		if d.Transport.SendWrite(OpPower, EncodeValue(0)) == TransportPending {
			d.out.chipOp(OpPower)
			return d.stay(WaitCommandComplete)
		}
	}
	d.irq.enabled = 0
	return d.done()
}

func powerOnTransmitterStage(d *Device, c *command) step {
	d.irq.arm(IntPowerEnabled)
	s := d.write(OpTransmission, EncodeValue(1))
	d.info.txWritten = d.info.status == StatusSuccess
	return s
}
