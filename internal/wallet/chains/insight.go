package chains

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-hwctl/internal/clierrors"
)

// InsightClient reads chain state from an insight-style REST API.
type InsightClient struct {
	baseURL string
	client  *http.Client
}

// NewInsightClient creates a data source for the given chain.
func NewInsightClient(chain Chain) *InsightClient {
	return &InsightClient{
		baseURL: chain.APIURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CurrentHeight returns the chain tip height.
func (c *InsightClient) CurrentHeight(ctx context.Context) (uint32, error) {
	var status struct {
		Info struct {
			Blocks uint32 `json:"blocks"`
		} `json:"info"`
	}

	if err := c.get(ctx, "/status?q=getInfo", &status); err != nil {
		return 0, err
	}

	return status.Info.Blocks, nil
}

// BlockHash returns the hash of the block at height, hex-decoded but still in
// the API's native byte order.
func (c *InsightClient) BlockHash(ctx context.Context, height uint32) ([]byte, error) {
	var index struct {
		BlockHash string `json:"blockHash"`
	}

	if err := c.get(ctx, fmt.Sprintf("/block-index/%d", height), &index); err != nil {
		return nil, err
	}

	hash, err := hex.DecodeString(index.BlockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid block hash for height %d", height)
	}

	return hash, nil
}

// PrevOutput returns the block hash/height recorded for txid. The output
// index does not change the recording block but is kept in the signature for
// data sources that resolve outputs individually.
func (c *InsightClient) PrevOutput(ctx context.Context, txid string, _ uint32) (*PrevOutput, error) {
	var tx struct {
		BlockHash   string `json:"blockhash"`
		BlockHeight uint32 `json:"blockheight"`
	}

	if err := c.get(ctx, "/tx/"+txid, &tx); err != nil {
		return nil, err
	}

	hash, err := hex.DecodeString(tx.BlockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid block hash for tx %s", txid)
	}

	return &PrevOutput{
		BlockHash:   hash,
		BlockHeight: tx.BlockHeight,
	}, nil
}

func (c *InsightClient) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build chain API request")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return clierrors.Wrap(clierrors.CategoryNodeUnavailable, err, "chain API %s unreachable", c.baseURL)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return clierrors.New(clierrors.CategoryNodeUnavailable, "chain API %s%s returned status %d", c.baseURL, endpoint, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode chain API response from %s", endpoint)
	}

	return nil
}
