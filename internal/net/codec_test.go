package net

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{1, 2, 3}))
	require.NoError(t, WriteFrame(&buf, []byte{4}))
	assert.Equal(t, []byte{5, 0, 1, 2, 3, 3, 0, 4}, buf.Bytes())

	p, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, p)
	p, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, p)

	_, err = ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrames_Invalid(t *testing.T) {
	assert.Error(t, WriteFrame(io.Discard, nil))
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.ErrorContains(t, err, "invalid frame length")
	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 1}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
