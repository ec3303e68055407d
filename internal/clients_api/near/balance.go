package near

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

type rpcRequest struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	Result *accountView    `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// accountView is the account state returned by the RPC view_account query.
type accountView struct {
	// Amount is the balance in yoctoNEAR, encoded as a decimal string.
	Amount string `json:"amount"`
}

type viewAccountParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
}

// FetchBalance queries the current balance of a NEAR account in yoctoNEAR
// with finality "final".
func (c *Client) FetchBalance(ctx context.Context, accountID string) (*big.Int, error) {
	log.LogDebug("Fetching balance",
		zap.String("account", accountID), zap.String("endpoint", c.rpcURL))

	request := rpcRequest{
		Jsonrpc: "2.0",
		ID:      "1",
		Method:  "query",
		Params: viewAccountParams{
			RequestType: "view_account",
			Finality:    "final",
			AccountID:   accountID,
		},
	}

	respBody, err := c.makeRequest(ctx, http.MethodPost, c.rpcURL, request)
	if err != nil {
		return nil, err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		log.LogError("Failed to parse RPC response",
			zap.String("account", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Some gateways always include the error field; a literal null is success.
	if len(rpcResp.Error) > 0 && string(rpcResp.Error) != "null" {
		log.LogError("RPC error",
			zap.String("account", accountID), zap.String("error", string(rpcResp.Error)))
		return nil, fmt.Errorf("RPC error: %s", string(rpcResp.Error))
	}

	if rpcResp.Result == nil {
		return nil, fmt.Errorf("no result in RPC response for %s", accountID)
	}

	balance, ok := new(big.Int).SetString(rpcResp.Result.Amount, 10)
	if !ok {
		log.LogError("Failed to parse balance amount",
			zap.String("account", accountID), zap.String("amount", rpcResp.Result.Amount))
		return nil, fmt.Errorf("failed to parse amount %q", rpcResp.Result.Amount)
	}

	log.LogDebug("Fetched balance",
		zap.String("account", accountID), zap.String("balance_yocto", balance.String()))

	return balance, nil
}
