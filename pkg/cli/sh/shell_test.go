package sh

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/fmtx/pkg/fmtx"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

func TestFormatInfo(t *testing.T) {
	info := l1.DeviceInfo{Ref: l1.DeviceRef{Type: "fmtx", ID: "bench"}}
	require.Equal(t, "fmtx/bench", FormatInfo(info))
	info.Meta.Description = "FM transmitter"
	require.Equal(t, "fmtx/bench: FM transmitter", FormatInfo(info))
}

func TestFormatResult(t *testing.T) {
	out, err := FormatResult(msgs.NewCommandOK(), false)
	require.NoError(t, err)
	require.Equal(t, "OK", out)

	done := msgs.NewCommandDone(&fmtx.Event{Kind: fmtx.CmdTune, Value: 94500})
	out, err = FormatResult(done, false)
	require.NoError(t, err)
	require.Contains(t, out, "CommandDone")
	require.Contains(t, out, "94500")

	out, err = FormatResult(done, true)
	require.NoError(t, err)
	require.Contains(t, out, `"value":94500`)

	failed := msgs.NewCommandDone(&fmtx.Event{Kind: fmtx.CmdTune, Status: fmtx.StatusNotApplicable})
	_, err = FormatResult(failed, false)
	var se *fmtx.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, fmtx.StatusNotApplicable, se.Status)

	_, err = FormatResult(struct{}{}, true)
	require.Equal(t, msgs.ErrNotSerializable, err)
}
