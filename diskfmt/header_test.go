package diskfmt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/viking-sudo-rm/rusty-dawg/diskfmt"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := diskfmt.Header{Version: diskfmt.Version, ElemSize: 24, Count: 42, Flags: diskfmt.FlagCounts}
	got, err := diskfmt.Decode(h.Encode(), 24)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestHeaderDecodeRejectsBadMagic(t *testing.T) {
	buf := make([]byte, diskfmt.HeaderSize)
	_, err := diskfmt.Decode(buf, 0)
	require.Error(t, err)
}

func TestHeaderDecodeRejectsElemSizeMismatch(t *testing.T) {
	h := diskfmt.Header{Version: diskfmt.Version, ElemSize: 24, Count: 1}
	_, err := diskfmt.Decode(h.Encode(), 32)
	require.Error(t, err)
}
