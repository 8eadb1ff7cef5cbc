package render_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/render"
)

func TestRenderText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render.Render(&out, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", false))
	assert.Equal(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2\n", out.String())
}

func TestRenderBytesAsHex(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render.Render(&out, []byte{0xde, 0xad, 0xbe, 0xef}, false))
	assert.Equal(t, "deadbeef\n", out.String())
}

func TestRenderJSON(t *testing.T) {
	var out bytes.Buffer
	result := struct {
		TxID string `json:"txid"`
	}{"0xabc"}

	require.NoError(t, render.Render(&out, result, true))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "0xabc", decoded["txid"])
}

func TestRenderBytesAsJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render.Render(&out, []byte{0x01, 0x02}, true))

	var decoded string
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "0102", decoded)
}

func TestRenderNil(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render.Render(&out, nil, false))
	assert.Empty(t, out.String())
}
