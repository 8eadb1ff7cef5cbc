package device

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
	"github/chapool/go-hwctl/internal/util"
	"github/chapool/go-hwctl/internal/wallet/ethtx"
	"github/chapool/go-hwctl/internal/wallet/path"
	"github/chapool/go-hwctl/internal/wallet/txbuild"
)

// Bridge talks to the local device bridge daemon, which owns the USB wire
// protocol and exposes devices as JSON endpoints.
type Bridge struct {
	baseURL  string
	client   *http.Client
	prompter Prompter
}

// NewBridge creates a bridge client. prompter handles PIN and passphrase
// requests forwarded by the device.
func NewBridge(baseURL string, prompter Prompter) *Bridge {
	return &Bridge{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 5 * time.Minute},
		prompter: prompter,
	}
}

// Enumerate lists the device transports the bridge can see.
func (b *Bridge) Enumerate(ctx context.Context) ([]TransportInfo, error) {
	var devices []TransportInfo
	if err := b.post(ctx, "/enumerate", nil, &devices); err != nil {
		return nil, err
	}

	return devices, nil
}

// Acquire opens an exclusive session on the given transport.
func (b *Bridge) Acquire(ctx context.Context, info TransportInfo) (Session, error) {
	var acquired struct {
		Session string `json:"session"`
	}
	if err := b.post(ctx, "/acquire/"+info.Path, nil, &acquired); err != nil {
		return nil, errors.Wrapf(err, "failed to acquire device at %s", info.Path)
	}

	session := &bridgeSession{
		bridge: b,
		id:     acquired.Session,
	}

	util.LogFromContext(ctx).Debug().
		Str("device", info.Path).
		Msg("Acquired device session")

	return session, nil
}

func (b *Bridge) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	var reader bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reader).Encode(body); err != nil {
			return errors.Wrap(err, "failed to encode bridge request")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+endpoint, &reader)
	if err != nil {
		return errors.Wrap(err, "failed to build bridge request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "device bridge at %s unreachable", b.baseURL)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("device bridge returned status %d for %s", res.StatusCode, endpoint)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode bridge response")
	}

	return nil
}

type bridgeSession struct {
	bridge *Bridge
	id     string
}

type bridgeMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// call executes one device call, transparently answering PIN and passphrase
// requests until a terminal response arrives.
func (s *bridgeSession) call(ctx context.Context, messageType string, payload interface{}, out interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode device call")
	}

	message := bridgeMessage{Type: messageType, Payload: encoded}

	for {
		var response bridgeMessage
		if err := s.bridge.post(ctx, "/call/"+s.id, &message, &response); err != nil {
			return err
		}

		switch response.Type {
		case "pin_request":
			pin, err := s.bridge.prompter.PIN()
			if err != nil {
				return err
			}
			message, err = ackMessage("pin_ack", map[string]string{"pin": pin})
			if err != nil {
				return err
			}

		case "passphrase_request":
			passphrase, err := s.bridge.prompter.Passphrase()
			if err != nil {
				return err
			}
			message, err = ackMessage("passphrase_ack", map[string]string{"passphrase": passphrase})
			if err != nil {
				return err
			}

		case "failure":
			var failure struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(response.Payload, &failure); err != nil {
				return errors.Wrap(err, "failed to decode device failure")
			}

			return (&CallFailure{Code: failure.Code, Message: failure.Message}).AsCategorized()

		default:
			if out == nil {
				return nil
			}

			return errors.Wrap(json.Unmarshal(response.Payload, out), "failed to decode device response")
		}
	}
}

func ackMessage(messageType string, payload interface{}) (bridgeMessage, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return bridgeMessage{}, errors.Wrap(err, "failed to encode device ack")
	}

	return bridgeMessage{Type: messageType, Payload: encoded}, nil
}

func (s *bridgeSession) Features(ctx context.Context) (*Features, error) {
	var features Features
	if err := s.call(ctx, "get_features", struct{}{}, &features); err != nil {
		return nil, err
	}

	return &features, nil
}

func (s *bridgeSession) Address(ctx context.Context, coin string, p path.DerivationPath, display bool) (string, error) {
	request := struct {
		Coin    string   `json:"coin"`
		Path    []uint32 `json:"path"`
		Display bool     `json:"display"`
	}{coin, p, display}

	var response struct {
		Address string `json:"address"`
	}
	if err := s.call(ctx, "get_address", request, &response); err != nil {
		return "", err
	}

	return response.Address, nil
}

func (s *bridgeSession) EthereumAddress(ctx context.Context, p path.DerivationPath, display bool) (string, error) {
	request := struct {
		Path    []uint32 `json:"path"`
		Display bool     `json:"display"`
	}{p, display}

	var response struct {
		Address string `json:"address"`
	}
	if err := s.call(ctx, "ethereum_get_address", request, &response); err != nil {
		return "", err
	}

	return response.Address, nil
}

type wireTxInput struct {
	Path        []uint32 `json:"path"`
	PrevHash    string   `json:"prev_hash"`
	PrevIndex   uint32   `json:"prev_index"`
	Amount      uint64   `json:"amount"`
	Sequence    uint32   `json:"sequence"`
	ScriptType  string   `json:"script_type"`
	BlockHash   string   `json:"block_hash,omitempty"`
	BlockHeight uint32   `json:"block_height,omitempty"`
}

type wireTxOutput struct {
	Address     string   `json:"address,omitempty"`
	Path        []uint32 `json:"path,omitempty"`
	Amount      uint64   `json:"amount"`
	ScriptType  string   `json:"script_type"`
	BlockHash   string   `json:"block_hash,omitempty"`
	BlockHeight uint32   `json:"block_height,omitempty"`
}

func (s *bridgeSession) SignTx(ctx context.Context, req *txbuild.SignRequest) (*txbuild.SignResult, error) {
	request := struct {
		Coin     string         `json:"coin"`
		Inputs   []wireTxInput  `json:"inputs"`
		Outputs  []wireTxOutput `json:"outputs"`
		Version  uint32         `json:"version"`
		LockTime uint32         `json:"lock_time"`
	}{
		Coin:     req.Coin,
		Version:  req.Version,
		LockTime: req.LockTime,
	}

	for _, input := range req.Inputs {
		request.Inputs = append(request.Inputs, wireTxInput{
			Path:        input.Path,
			PrevHash:    hex.EncodeToString(input.PrevHash),
			PrevIndex:   input.PrevIndex,
			Amount:      input.Amount,
			Sequence:    input.Sequence,
			ScriptType:  input.ScriptType.String(),
			BlockHash:   hex.EncodeToString(input.BlockHash),
			BlockHeight: input.BlockHeight,
		})
	}

	for _, output := range req.Outputs {
		request.Outputs = append(request.Outputs, wireTxOutput{
			Address:     output.Address,
			Path:        output.Path,
			Amount:      output.Amount,
			ScriptType:  output.ScriptType.String(),
			BlockHash:   hex.EncodeToString(output.BlockHash),
			BlockHeight: output.BlockHeight,
		})
	}

	var response struct {
		Signatures   []string `json:"signatures"`
		SerializedTx string   `json:"serialized_tx"`
	}
	if err := s.call(ctx, "sign_tx", request, &response); err != nil {
		return nil, err
	}

	result := &txbuild.SignResult{}
	for _, signature := range response.Signatures {
		decoded, err := hex.DecodeString(signature)
		if err != nil {
			return nil, errors.Wrap(err, "device returned a non-hex signature")
		}
		result.Signatures = append(result.Signatures, decoded)
	}

	serialized, err := hex.DecodeString(response.SerializedTx)
	if err != nil {
		return nil, errors.Wrap(err, "device returned a non-hex serialized transaction")
	}
	result.SerializedTx = serialized

	return result, nil
}

func (s *bridgeSession) SignEthereumTx(ctx context.Context, req *ethtx.Request) (*ethtx.Signature, error) {
	if req.Nonce < 0 || req.GasPrice == nil || req.GasLimit == nil {
		return nil, clierrors.New(clierrors.CategoryDevice, "ethereum signing request has unresolved fields")
	}

	request := struct {
		Path     []uint32 `json:"path"`
		ChainID  string   `json:"chain_id,omitempty"`
		TxType   *int     `json:"tx_type,omitempty"`
		Nonce    uint64   `json:"nonce"`
		GasPrice string   `json:"gas_price"`
		GasLimit string   `json:"gas_limit"`
		To       string   `json:"to,omitempty"`
		Value    string   `json:"value"`
		Data     string   `json:"data,omitempty"`
	}{
		Path:     req.Path,
		Nonce:    uint64(req.Nonce),
		GasPrice: req.GasPrice.String(),
		GasLimit: req.GasLimit.String(),
		To:       req.To,
		Value:    req.Value.String(),
		Data:     hex.EncodeToString(req.Data),
	}

	if req.ChainID != nil {
		request.ChainID = req.ChainID.String()
	}
	if req.TxType != ethtx.TxTypeUnset {
		txType := req.TxType
		request.TxType = &txType
	}

	var response struct {
		V uint64 `json:"v"`
		R string `json:"r"`
		S string `json:"s"`
	}
	if err := s.call(ctx, "ethereum_sign_tx", request, &response); err != nil {
		return nil, err
	}

	r, err := hex.DecodeString(response.R)
	if err != nil {
		return nil, errors.Wrap(err, "device returned a non-hex signature component")
	}

	sig, err := hex.DecodeString(response.S)
	if err != nil {
		return nil, errors.Wrap(err, "device returned a non-hex signature component")
	}

	return &ethtx.Signature{V: response.V, R: r, S: sig}, nil
}

func (s *bridgeSession) UploadFirmware(ctx context.Context, payload []byte) error {
	request := struct {
		Payload string `json:"payload"`
	}{hex.EncodeToString(payload)}

	return s.call(ctx, "firmware_upload", request, nil)
}

func (s *bridgeSession) Ping(ctx context.Context, message string) (string, error) {
	request := struct {
		Message string `json:"message"`
	}{message}

	var response struct {
		Message string `json:"message"`
	}
	if err := s.call(ctx, "ping", request, &response); err != nil {
		return "", err
	}

	return response.Message, nil
}

func (s *bridgeSession) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.bridge.post(ctx, "/release/"+s.id, nil, nil); err != nil {
		return errors.Wrap(err, "failed to release device session")
	}

	return nil
}
