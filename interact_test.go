package main

import (
	"context"
	"strings"
	"testing"

	"github.com/MixinNetwork/nftattr/nft"
	"github.com/MixinNetwork/nftattr/store"
	"github.com/shopspring/decimal"
)

func TestReportIssue(t *testing.T) {
	ctx := context.Background()
	conf := DefaultConfiguration()
	db, err := store.OpenBadger(ctx, "")
	if err != nil {
		t.Fatalf("OpenBadger() = %v", err)
	}
	defer db.Close()
	l, err := buildLedger(db, conf)
	if err != nil {
		t.Fatalf("buildLedger() = %v", err)
	}
	owner := conf.OwnerAddress()
	err = l.Fund(ctx, owner, decimal.New(1, 18))
	if err != nil {
		t.Fatalf("Fund() = %v", err)
	}
	addr, err := l.Deploy(ctx, owner, nft.CodeName, nil)
	if err != nil {
		t.Fatalf("Deploy() = %v", err)
	}
	p := nft.Proxy{Contract: addr}
	cost, _ := conf.IssueCost()

	tests := []struct {
		amount decimal.Decimal
		prefix string
	}{
		{decimal.New(1, 16), "issue failed: "},
		{cost, "token: TESTNFT-"},
	}
	for _, tt := range tests {
		receipt, err := l.Invoke(ctx, p.Issue(owner, "Whatever", "TESTNFT", tt.amount))
		if err != nil {
			t.Fatalf("Invoke(issue) = %v", err)
		}
		msg, err := reportIssue(ctx, l, p, receipt)
		if err != nil || !strings.HasPrefix(msg, "issue pending: ") {
			t.Fatalf("reportIssue() before settle = %q %v", msg, err)
		}
		_, err = l.Settle(ctx)
		if err != nil {
			t.Fatalf("Settle() = %v", err)
		}
		msg, err = reportIssue(ctx, l, p, receipt)
		if err != nil {
			t.Fatalf("reportIssue() = %v", err)
		}
		if !strings.HasPrefix(msg, tt.prefix) {
			t.Fatalf("reportIssue() = %q, want prefix %q", msg, tt.prefix)
		}
	}
}
