package chains_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/wallet/chains"
)

func TestRegistryLookup(t *testing.T) {
	registry, err := chains.NewRegistry("")
	require.NoError(t, err)

	bitcoin, err := registry.Lookup("Bitcoin")
	require.NoError(t, err)
	assert.False(t, bitcoin.Bip115)
	assert.Equal(t, uint32(0), bitcoin.Slip44)

	// lookups are case-insensitive
	horizen, err := registry.Lookup("horizen")
	require.NoError(t, err)
	assert.True(t, horizen.Bip115)
}

func TestRegistryUnknownChain(t *testing.T) {
	registry, err := chains.NewRegistry("")
	require.NoError(t, err)

	_, err = registry.Lookup("Foocoin")
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryUnknownChain, clierrors.CategoryOf(err))
}

func TestRegistryNames(t *testing.T) {
	registry, err := chains.NewRegistry("")
	require.NoError(t, err)

	names := registry.Names()
	assert.Equal(t, []string{"Bitcoin", "Dash", "Dogecoin", "Horizen", "Litecoin", "Testnet", "Zcash"}, names)
}

func TestRegistryOverrideFile(t *testing.T) {
	overrideFile := filepath.Join(t.TempDir(), "chains.toml")
	override := `
[[chain]]
name = "Regtest"
slip44 = 1
api_url = "http://localhost:3001/api"
broadcast_url = "http://localhost:3001/api/tx/send"

[[chain]]
name = "Bitcoin"
slip44 = 0
bip115 = true
api_url = "http://localhost:3002/api"
`
	require.NoError(t, os.WriteFile(overrideFile, []byte(override), 0o600))

	registry, err := chains.NewRegistry(overrideFile)
	require.NoError(t, err)

	regtest, err := registry.Lookup("regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3001/api", regtest.APIURL)

	// override replaces the built-in entry
	bitcoin, err := registry.Lookup("Bitcoin")
	require.NoError(t, err)
	assert.True(t, bitcoin.Bip115)
	assert.Equal(t, "http://localhost:3002/api", bitcoin.APIURL)

	// built-ins not touched by the override survive
	_, err = registry.Lookup("Litecoin")
	assert.NoError(t, err)
}

func TestRegistryOverrideFileInvalid(t *testing.T) {
	overrideFile := filepath.Join(t.TempDir(), "chains.toml")
	require.NoError(t, os.WriteFile(overrideFile, []byte(`[[chain]]`+"\n"+`slip44 = 9`), 0o600))

	_, err := chains.NewRegistry(overrideFile)
	assert.Error(t, err)
}
