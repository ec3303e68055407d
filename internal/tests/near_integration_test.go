//go:build integration

package tests

import (
	"context"
	"testing"
	"time"

	near "near-monitor/internal/clients_api/near"
)

func newClient() *near.Client {
	return near.NewClient(near.Options{
		RequestTimeout: 30 * time.Second,
		MaxRetries:     2,
	})
}

func TestIntegration_Near_FetchBalance(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	balance, err := newClient().FetchBalance(ctx, "near")
	if err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}
	if balance == nil || balance.Sign() <= 0 {
		t.Fatalf("expected positive balance, got %v", balance)
	}
}

func TestIntegration_Near_FetchBalanceUnknownAccount(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := newClient().FetchBalance(ctx, "does-not-exist-481516.near"); err == nil {
		t.Fatal("expected error for missing account")
	}
}

func TestIntegration_Near_FetchTransactions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	txs, err := newClient().FetchTransactions(ctx, "near")
	if err != nil {
		t.Fatalf("FetchTransactions failed: %v", err)
	}
	if len(txs) == 0 {
		t.Fatal("expected at least one transaction")
	}
	if len(txs) > near.MaxTransactions {
		t.Fatalf("expected at most %d transactions, got %d", near.MaxTransactions, len(txs))
	}
	for _, tx := range txs {
		if tx.Hash == "" {
			t.Fatal("transaction with empty hash")
		}
	}
}
