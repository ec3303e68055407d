package near

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(server *httptest.Server, maxRetries int) *Client {
	return NewClient(Options{
		RPCURL:         server.URL,
		NearblocksURL:  server.URL,
		RequestTimeout: 5 * time.Second,
		MaxRetries:     maxRetries,
	})
}

func TestFetchBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("RPC query used method %s", r.Method)
		}
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "query" {
			t.Errorf("RPC method = %q, want query", req.Method)
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":"1","result":{"amount":"1500000000000000000000000","locked":"0"}}`)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	balance, err := client.FetchBalance(context.Background(), "alice.near")
	if err != nil {
		t.Fatalf("FetchBalance: %v", err)
	}
	if balance.String() != "1500000000000000000000000" {
		t.Fatalf("balance = %s", balance.String())
	}
}

func TestFetchBalanceNullErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Gateways often include "error":null on success.
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":"1","result":{"amount":"42"},"error":null}`)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	balance, err := client.FetchBalance(context.Background(), "alice.near")
	if err != nil {
		t.Fatalf("FetchBalance: %v", err)
	}
	if balance.String() != "42" {
		t.Fatalf("balance = %s, want 42", balance.String())
	}
}

func TestFetchBalanceRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":"1","error":{"name":"HANDLER_ERROR","cause":{"name":"UNKNOWN_ACCOUNT"}}}`)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	if _, err := client.FetchBalance(context.Background(), "nosuch.near"); err == nil {
		t.Fatal("expected error for RPC error response")
	}
}

func TestFetchBalanceBadAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":"1","result":{"amount":"not-a-number"}}`)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	if _, err := client.FetchBalance(context.Background(), "alice.near"); err == nil {
		t.Fatal("expected error for unparseable amount")
	}
}

func TestFetchBalanceRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":"1","result":{"amount":"42"}}`)
	}))
	defer server.Close()

	client := newTestClient(server, 2)
	balance, err := client.FetchBalance(context.Background(), "alice.near")
	if err != nil {
		t.Fatalf("FetchBalance after retry: %v", err)
	}
	if balance.String() != "42" {
		t.Fatalf("balance = %s", balance.String())
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("server saw %d calls, want 2", got)
	}
}

func TestFetchBalanceDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server, 3)
	if _, err := client.FetchBalance(context.Background(), "alice.near"); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server saw %d calls, want 1", got)
	}
}

func TestFetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/alice.near/txns" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// Duplicate hash, shuffled order, more than the cap.
		resp := nearblocksResponse{}
		for i := 0; i < 12; i++ {
			resp.Txns = append(resp.Txns, Transaction{
				Hash:           fmt.Sprintf("hash-%d", i),
				SignerID:       "alice.near",
				ReceiverID:     "bob.near",
				BlockTimestamp: fmt.Sprintf("%d", 1700000000000000000+int64(i)*1000),
			})
		}
		resp.Txns = append(resp.Txns, resp.Txns[3]) // duplicate
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	txs, err := client.FetchTransactions(context.Background(), "alice.near")
	if err != nil {
		t.Fatalf("FetchTransactions: %v", err)
	}
	if len(txs) != MaxTransactions {
		t.Fatalf("got %d transactions, want %d", len(txs), MaxTransactions)
	}
	if txs[0].Hash != "hash-11" {
		t.Fatalf("newest transaction first, got %s", txs[0].Hash)
	}
	seen := map[string]bool{}
	for i, tx := range txs {
		if seen[tx.Hash] {
			t.Fatalf("duplicate hash %s in result", tx.Hash)
		}
		seen[tx.Hash] = true
		if i > 0 && timestampLess(txs[i-1].BlockTimestamp, tx.BlockTimestamp) {
			t.Fatalf("transactions not ordered newest first at index %d", i)
		}
	}
}

func TestFetchTransactionsEmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"txns":[]}`)
	}))
	defer server.Close()

	client := newTestClient(server, 0)
	txs, err := client.FetchTransactions(context.Background(), "empty.near")
	if err != nil {
		t.Fatalf("FetchTransactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("got %d transactions, want 0", len(txs))
	}
}

func TestTimestampLess(t *testing.T) {
	if !timestampLess("9", "10") {
		t.Fatal("numeric order should beat lexicographic")
	}
	if timestampLess("10", "9") {
		t.Fatal("10 is not less than 9")
	}
	if !timestampLess("abc", "abd") {
		t.Fatal("unparseable values fall back to lexicographic order")
	}
}
