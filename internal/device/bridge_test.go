package device_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/device"
	"github/chapool/go-hwctl/internal/wallet/path"
)

type fakePrompter struct {
	pin        string
	passphrase string
	pinCalls   int
}

func (f *fakePrompter) PIN() (string, error) {
	f.pinCalls++
	return f.pin, nil
}

func (f *fakePrompter) Passphrase() (string, error) {
	return f.passphrase, nil
}

type bridgeMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// newBridgeTestServer serves a minimal bridge: one device, canned call
// handling via the handle func.
func newBridgeTestServer(t *testing.T, handle func(call bridgeMessage) bridgeMessage) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/enumerate", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"path":"bridge:1"}]`)
	})
	mux.HandleFunc("/acquire/bridge:1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"session":"s-1"}`)
	})
	mux.HandleFunc("/release/s-1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/call/s-1", func(w http.ResponseWriter, r *http.Request) {
		var call bridgeMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&call))
		require.NoError(t, json.NewEncoder(w).Encode(handle(call)))
	})

	return httptest.NewServer(mux)
}

func respond(t *testing.T, messageType string, payload interface{}) bridgeMessage {
	t.Helper()

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	return bridgeMessage{Type: messageType, Payload: encoded}
}

func acquireSession(t *testing.T, server *httptest.Server, prompter device.Prompter) device.Session {
	t.Helper()

	bridge := device.NewBridge(server.URL, prompter)

	info, err := device.Find(t.Context(), bridge, "")
	require.NoError(t, err)

	session, err := bridge.Acquire(t.Context(), info)
	require.NoError(t, err)

	return session
}

func TestBridgeFeatures(t *testing.T) {
	server := newBridgeTestServer(t, func(call bridgeMessage) bridgeMessage {
		require.Equal(t, "get_features", call.Type)
		return respond(t, "features", device.Features{
			Vendor:       "chapool",
			Model:        "1",
			MajorVersion: 1,
			MinorVersion: 8,
			PatchVersion: 3,
			Initialized:  true,
		})
	})
	defer server.Close()

	session := acquireSession(t, server, &fakePrompter{})
	defer session.Close()

	features, err := session.Features(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, features.MajorVersion)
	assert.True(t, features.Initialized)
	assert.False(t, features.BootloaderMode)
}

func TestBridgeAddressWithPinRequest(t *testing.T) {
	prompter := &fakePrompter{pin: "1234"}

	server := newBridgeTestServer(t, func(call bridgeMessage) bridgeMessage {
		switch call.Type {
		case "get_address":
			return respond(t, "pin_request", struct{}{})
		case "pin_ack":
			var ack struct {
				Pin string `json:"pin"`
			}
			require.NoError(t, json.Unmarshal(call.Payload, &ack))
			require.Equal(t, "1234", ack.Pin)
			return respond(t, "address", map[string]string{"address": "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"})
		default:
			t.Fatalf("unexpected call %s", call.Type)
			return bridgeMessage{}
		}
	})
	defer server.Close()

	session := acquireSession(t, server, prompter)
	defer session.Close()

	derivationPath, err := path.Parse("m/44'/0'/0'/0/0")
	require.NoError(t, err)

	address, err := session.Address(t.Context(), "Bitcoin", derivationPath, false)
	require.NoError(t, err)
	assert.Equal(t, "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", address)
	assert.Equal(t, 1, prompter.pinCalls)
}

func TestBridgeCallFailure(t *testing.T) {
	server := newBridgeTestServer(t, func(_ bridgeMessage) bridgeMessage {
		return respond(t, "failure", map[string]interface{}{
			"code":    device.FailureActionCancelled,
			"message": "user pressed cancel",
		})
	})
	defer server.Close()

	session := acquireSession(t, server, &fakePrompter{})
	defer session.Close()

	_, err := session.Ping(t.Context(), "hello")
	require.Error(t, err)
	assert.Equal(t, clierrors.CategoryDevice, clierrors.CategoryOf(err))
	assert.Contains(t, err.Error(), "user pressed cancel")
}

func TestBridgeUploadFirmware(t *testing.T) {
	var uploaded string

	server := newBridgeTestServer(t, func(call bridgeMessage) bridgeMessage {
		require.Equal(t, "firmware_upload", call.Type)

		var request struct {
			Payload string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(call.Payload, &request))
		uploaded = request.Payload

		return respond(t, "success", struct{}{})
	})
	defer server.Close()

	session := acquireSession(t, server, &fakePrompter{})
	defer session.Close()

	require.NoError(t, session.UploadFirmware(t.Context(), []byte{0x54, 0x52, 0x5a, 0x52}))
	assert.Equal(t, "54525a52", uploaded)
}
