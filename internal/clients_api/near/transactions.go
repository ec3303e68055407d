package near

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"near-monitor/internal/infra/log"

	"go.uber.org/zap"
)

const (
	// MaxTransactions is how many transactions FetchTransactions returns.
	MaxTransactions = 10
	// txFetchLimit is requested from NearBlocks before dedup and trimming.
	txFetchLimit = 25
)

// ActionsAgg carries aggregated action data of a transaction.
type ActionsAgg struct {
	Deposit float64 `json:"deposit"`
}

// Transaction is one entry from the NearBlocks transaction history.
type Transaction struct {
	Hash           string     `json:"transaction_hash"`
	SignerID       string     `json:"predecessor_account_id"`
	ReceiverID     string     `json:"receiver_account_id"`
	BlockTimestamp string     `json:"block_timestamp"`
	ActionsAgg     ActionsAgg `json:"actions_agg"`
}

type nearblocksResponse struct {
	Txns []Transaction `json:"txns"`
}

// FetchTransactions returns the most recent transactions of an account,
// deduplicated by hash, newest first, capped at MaxTransactions.
func (c *Client) FetchTransactions(ctx context.Context, accountID string) ([]Transaction, error) {
	url := fmt.Sprintf("%s/account/%s/txns?limit=%d", c.nearblocksURL, accountID, txFetchLimit)
	log.LogDebug("Fetching transactions",
		zap.String("account", accountID), zap.Int("limit", txFetchLimit))

	respBody, err := c.makeRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var nbResp nearblocksResponse
	if err := json.Unmarshal(respBody, &nbResp); err != nil {
		log.LogError("Failed to parse NearBlocks response",
			zap.String("account", accountID), zap.Error(err))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	seen := make(map[string]struct{}, len(nbResp.Txns))
	txs := make([]Transaction, 0, len(nbResp.Txns))
	for _, tx := range nbResp.Txns {
		if _, ok := seen[tx.Hash]; ok {
			continue
		}
		seen[tx.Hash] = struct{}{}
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return timestampLess(txs[j].BlockTimestamp, txs[i].BlockTimestamp)
	})
	if len(txs) > MaxTransactions {
		txs = txs[:MaxTransactions]
	}

	log.LogInfo("Fetched transactions",
		zap.String("account", accountID), zap.Int("count", len(txs)))

	return txs, nil
}

// timestampLess orders nanosecond timestamp strings numerically, falling
// back to lexicographic order when a value does not parse.
func timestampLess(a, b string) bool {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
