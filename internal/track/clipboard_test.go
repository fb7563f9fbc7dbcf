package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingClipboard struct{ copied string }

func (r *recordingClipboard) Copy(text string) error {
	r.copied = text
	return nil
}

func TestCopyAsJSON(t *testing.T) {
	clip := &recordingClipboard{}
	require.NoError(t, CopyAsJSON(clip, map[string]string{"name": "Alice"}))
	assert.JSONEq(t, `{"name":"Alice"}`, clip.copied)
}

func TestDefaultClipboardIsNoop(t *testing.T) {
	clip := DefaultClipboard()
	assert.NoError(t, clip.Copy("anything"))
}
