package slp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 2, 127, 128, 255, 25565, 1 << 20, 1<<31 - 1}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, v))
		assert.Equal(t, buf.Len(), VarIntSize(v))

		got, err := ReadVarInt(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadVarIntTooLong(t *testing.T) {
	// Six bytes, each with the continuation bit set, exceeds the 5-byte
	// limit and must fail with MalformedFrame.
	overlong := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	_, err := ReadVarInt(bytes.NewReader(overlong))
	require.Error(t, err)

	f, ok := err.(*Failure)
	require.True(t, ok)
	assert.Equal(t, MalformedFrame, f.Kind)
}

func TestWriteVarIntHandshakeByte(t *testing.T) {
	// spec.md's golden vector: protocol 47 encodes as a single byte 0x2F.
	var buf bytes.Buffer
	require.NoError(t, WriteVarInt(&buf, 47))
	assert.Equal(t, []byte{0x2F}, buf.Bytes())
}
