package chains_test

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/wallet/chains"
)

const testBlockHash = "00000000000000000007b1d1442b2c98de1b2a6d1f3c2c6c60f86d8c5b7f3a21"

func newInsightTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"info":{"blocks":500000}}`)
	})
	mux.HandleFunc("/api/block-index/499700", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"blockHash":%q}`, testBlockHash)
	})
	mux.HandleFunc("/api/tx/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"blockhash":%q,"blockheight":499123}`, testBlockHash)
	})

	return httptest.NewServer(mux)
}

func TestInsightClient(t *testing.T) {
	server := newInsightTestServer(t)
	defer server.Close()

	client := chains.NewInsightClient(chains.Chain{Name: "Bitcoin", APIURL: server.URL + "/api"})
	ctx := t.Context()

	height, err := client.CurrentHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(500000), height)

	hash, err := client.BlockHash(ctx, 499700)
	require.NoError(t, err)
	assert.Equal(t, testBlockHash, hex.EncodeToString(hash))

	prev, err := client.PrevOutput(ctx, "c6be2f3e", 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(499123), prev.BlockHeight)
	assert.Equal(t, testBlockHash, hex.EncodeToString(prev.BlockHash))
}

func TestInsightClientUnreachable(t *testing.T) {
	server := newInsightTestServer(t)
	server.Close()

	client := chains.NewInsightClient(chains.Chain{Name: "Bitcoin", APIURL: server.URL + "/api"})

	_, err := client.CurrentHeight(t.Context())
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryNodeUnavailable, clierrors.CategoryOf(err))
}

func TestInsightClientBadStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := chains.NewInsightClient(chains.Chain{Name: "Bitcoin", APIURL: server.URL + "/api"})

	_, err := client.BlockHash(t.Context(), 1)
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryNodeUnavailable, clierrors.CategoryOf(err))
}
