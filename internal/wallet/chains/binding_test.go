package chains_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/wallet/chains"
)

type fakeDataSource struct {
	height      uint32
	hashes      map[uint32][]byte
	prevOutputs map[string]*chains.PrevOutput
}

func (f *fakeDataSource) CurrentHeight(_ context.Context) (uint32, error) {
	if f.height == 0 {
		return 0, errors.New("no height")
	}
	return f.height, nil
}

func (f *fakeDataSource) BlockHash(_ context.Context, height uint32) ([]byte, error) {
	hash, ok := f.hashes[height]
	if !ok {
		return nil, errors.Errorf("no hash for height %d", height)
	}
	return hash, nil
}

func (f *fakeDataSource) PrevOutput(_ context.Context, txid string, _ uint32) (*chains.PrevOutput, error) {
	prev, ok := f.prevOutputs[txid]
	if !ok {
		return nil, errors.Errorf("unknown tx %s", txid)
	}
	return prev, nil
}

func TestResolveBinding(t *testing.T) {
	source := &fakeDataSource{
		height: 500000,
		hashes: map[uint32][]byte{
			499700: {0x01, 0x02, 0x03, 0x04},
		},
	}

	binding, err := chains.ResolveBinding(t.Context(), source)
	require.NoError(t, err)

	assert.Equal(t, uint32(499700), binding.BlockHeight)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, binding.BlockHash)
}

func TestResolveBindingShallowChain(t *testing.T) {
	source := &fakeDataSource{height: 100, hashes: map[uint32][]byte{}}

	_, err := chains.ResolveBinding(t.Context(), source)
	assert.Error(t, err)
}

func TestBindingForPrevOutput(t *testing.T) {
	binding := chains.BindingForPrevOutput(&chains.PrevOutput{
		BlockHash:   []byte{0xaa, 0xbb, 0xcc},
		BlockHeight: 12345,
	})

	assert.Equal(t, []byte{0xcc, 0xbb, 0xaa}, binding.BlockHash)
	assert.Equal(t, uint32(12345), binding.BlockHeight)
}

func TestReverseBytes(t *testing.T) {
	original := []byte{1, 2, 3}
	reversed := chains.ReverseBytes(original)

	assert.Equal(t, []byte{3, 2, 1}, reversed)
	// input untouched
	assert.Equal(t, []byte{1, 2, 3}, original)
	assert.Equal(t, original, chains.ReverseBytes(chains.ReverseBytes(original)))
	assert.Empty(t, chains.ReverseBytes(nil))
}
