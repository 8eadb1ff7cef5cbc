// Package device is the boundary to the hardware signing device. It defines
// the session contract, the failure taxonomy reported by the device and the
// transport discovery logic; the actual wire protocol lives behind the local
// bridge daemon.
package device

import (
	"context"

	"github/chapool/go-hwctl/internal/wallet/ethtx"
	"github/chapool/go-hwctl/internal/wallet/path"
	"github/chapool/go-hwctl/internal/wallet/txbuild"
)

// Features describes the connected device.
type Features struct {
	Vendor         string `json:"vendor"`
	Model          string `json:"model"`
	MajorVersion   int    `json:"major_version"`
	MinorVersion   int    `json:"minor_version"`
	PatchVersion   int    `json:"patch_version"`
	Label          string `json:"label"`
	Initialized    bool   `json:"initialized"`
	BootloaderMode bool   `json:"bootloader_mode"`
}

// Session is one exclusive connection to a signing device. All calls are
// synchronous; a failure reported by the device surfaces as *CallFailure.
type Session interface {
	// Features reports the device's model, version and mode.
	Features(ctx context.Context) (*Features, error)
	// Address derives an address for a script-based chain on-device.
	Address(ctx context.Context, coin string, p path.DerivationPath, display bool) (string, error)
	// EthereumAddress derives an ethereum address on-device.
	EthereumAddress(ctx context.Context, p path.DerivationPath, display bool) (string, error)
	// SignTx executes a script-chain signing request.
	SignTx(ctx context.Context, req *txbuild.SignRequest) (*txbuild.SignResult, error)
	// SignEthereumTx signs a resolved ethereum transaction.
	SignEthereumTx(ctx context.Context, req *ethtx.Request) (*ethtx.Signature, error)
	// UploadFirmware installs a firmware payload. The device must be in
	// its update-accepting mode.
	UploadFirmware(ctx context.Context, payload []byte) error
	// Ping round-trips a message through the device.
	Ping(ctx context.Context, message string) (string, error)
	// Close releases the device for other clients.
	Close() error
}
