package fmtx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func freeSlots(p *commandPool) (n int) {
	for c := p.free; c != nil; c = c.next {
		n++
	}
	return
}

func TestCommandQueueOrder(t *testing.T) {
	var pool commandPool
	pool.init(4)
	var q commandQueue
	kinds := []CommandKind{CmdTune, CmdSetPowerLevel, CmdGetPowerLevel}
	for _, k := range kinds {
		c, err := pool.alloc(k)
		require.NoError(t, err)
		q.push(c)
	}
	require.Equal(t, 3, q.size)
	require.True(t, q.contains(CmdSetPowerLevel))
	require.False(t, q.contains(CmdDisable))
	for _, k := range kinds {
		c := q.pop()
		require.NotNil(t, c)
		require.Equal(t, k, c.kind)
		require.Nil(t, c.next)
	}
	require.Nil(t, q.pop())
	require.Nil(t, q.tail)
	require.Equal(t, 0, q.size)
}

func TestCommandPoolExhaustion(t *testing.T) {
	var pool commandPool
	pool.init(2)
	c1, err := pool.alloc(CmdTune)
	require.NoError(t, err)
	_, err = pool.alloc(CmdTune)
	require.NoError(t, err)
	_, err = pool.alloc(CmdTune)
	require.Equal(t, ErrTooManyPending, err)
	require.Equal(t, 0, freeSlots(&pool))

	// dedicated kinds do not use the general pool
	ps, err := pool.alloc(CmdSetRDSPSText)
	require.NoError(t, err)
	require.True(t, ps.dedicated)

	pool.release(c1)
	require.Equal(t, 1, freeSlots(&pool))
	_, err = pool.alloc(CmdSetPowerLevel)
	require.NoError(t, err)
}

func TestCommandPoolDedicatedSlots(t *testing.T) {
	var pool commandPool
	pool.init(1)
	for _, k := range []CommandKind{CmdSetRDSPSText, CmdSetRDSRTText, CmdSetRDSRawData} {
		t.Run(k.String(), func(t *testing.T) {
			c, err := pool.alloc(k)
			require.NoError(t, err)
			c.load(&Request{Kind: k, Text: []byte("hello")})
			require.Equal(t, []byte("hello"), c.text)
			_, err = pool.alloc(k)
			require.Equal(t, ErrConflictingCommand, err)
			pool.release(c)
			c2, err := pool.alloc(k)
			require.NoError(t, err)
			require.True(t, c == c2)
			require.Empty(t, c2.text)
			pool.release(c2)
		})
	}
	require.Equal(t, 1, freeSlots(&pool))
}

func TestCommandLoadCopiesText(t *testing.T) {
	var pool commandPool
	pool.init(1)
	text := []byte("RADIO")
	c, err := pool.alloc(CmdSetRDSPSText)
	require.NoError(t, err)
	c.load(&Request{Kind: CmdSetRDSPSText, Text: text})
	text[0] = 'X'
	require.Equal(t, []byte("RADIO"), c.text)
	require.Equal(t, MaxPSTextLength, cap(c.text))
}

func TestRequestValidation(t *testing.T) {
	testCases := []struct {
		name string
		req  Request
		ok   bool
	}{
		{"tune", Request{Kind: CmdTune, Value: 94500}, true},
		{"tune-zero", Request{Kind: CmdTune}, false},
		{"power", Request{Kind: CmdSetPowerLevel, Value: MaxPowerLevel}, true},
		{"power-high", Request{Kind: CmdSetPowerLevel, Value: MaxPowerLevel + 1}, false},
		{"mute", Request{Kind: CmdSetMuteMode, Value: 3}, false},
		{"mono", Request{Kind: CmdSetMonoStereo, Value: 1}, true},
		{"channels", Request{Kind: CmdSetMonoStereo, Value: 3}, false},
		{"source", Request{Kind: CmdChangeAudioSource, Audio: AudioRequest{Source: 7}}, false},
		{"rate", Request{Kind: CmdChangeDigitalConfig}, false},
		{"pi", Request{Kind: CmdSetRDSPICode, Value: 0x10000}, false},
		{"pty", Request{Kind: CmdSetRDSPTY, Value: 32}, false},
		{"rt-type", Request{Kind: CmdSetRDSRTText, Value: 2}, false},
		{"ps", Request{Kind: CmdSetRDSPSText, Text: make([]byte, MaxPSTextLength)}, true},
		{"ps-long", Request{Kind: CmdSetRDSPSText, Text: make([]byte, MaxPSTextLength+1)}, false},
		{"raw-long", Request{Kind: CmdSetRDSRawData, Text: make([]byte, MaxRawDataLength+1)}, false},
		{"get", Request{Kind: CmdGetRDSPICode}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			_, ok := err.(*ParamError)
			require.True(t, ok)
		})
	}
	require.Equal(t, ErrUnknownCommand, (&Request{Kind: numCommandKinds}).validate())
}

func TestCommandKindNames(t *testing.T) {
	for k := CommandKind(0); k < numCommandKinds; k++ {
		require.NotEmpty(t, k.String())
		parsed, ok := ParseCommandKind(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
		require.NotEmpty(t, stageTables[k].stages, k.String())
	}
	_, ok := ParseCommandKind("bogus")
	require.False(t, ok)
}
