package sonic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Sonic-Agent/internal/cache"
	"Sonic-Agent/internal/connections/dexscreener"
	xerrors "Sonic-Agent/internal/errors"
	"Sonic-Agent/internal/tokens"
)

func TestResolveTickerStaticTableFirst(t *testing.T) {
	// A DexScreener client that counts calls; the static table must win
	// before any remote lookup happens.
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"pairs":[]}`))
	}))
	defer srv.Close()
	dex := dexscreener.NewClient(dexscreener.Config{BaseURL: srv.URL})

	resolver := NewResolver(tokens.NewTable(nil), cache.NewMemory(), dex, nil, time.Hour)

	address, err := resolver.ResolveTicker(context.Background(), "usdc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "0x29219dd400f2Bf60E5a23d13Be72B486D4038894" {
		t.Fatalf("unexpected address: %s", address)
	}
	if calls != 0 {
		t.Fatalf("expected no remote lookup, got %d calls", calls)
	}
}

func TestResolveTickerRemoteThenCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"pairs":[{"chainId":"sonic","baseToken":{"address":"0xF00","symbol":"FOO"},"liquidity":{"usd":1000}}]}`))
	}))
	defer srv.Close()
	dex := dexscreener.NewClient(dexscreener.Config{BaseURL: srv.URL})

	resolver := NewResolver(tokens.NewTable(nil), cache.NewMemory(), dex, nil, time.Hour)

	for i := 0; i < 2; i++ {
		address, err := resolver.ResolveTicker(context.Background(), "FOO")
		if err != nil {
			t.Fatalf("unexpected error on attempt %d: %v", i, err)
		}
		if address != "0xF00" {
			t.Fatalf("unexpected address: %s", address)
		}
	}
	// Second resolution is served from the cache.
	if calls != 1 {
		t.Fatalf("expected a single remote lookup, got %d", calls)
	}
}

func TestResolveTickerUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs":[]}`))
	}))
	defer srv.Close()
	dex := dexscreener.NewClient(dexscreener.Config{BaseURL: srv.URL})

	resolver := NewResolver(tokens.NewTable(nil), nil, dex, nil, time.Hour)

	_, err := resolver.ResolveTicker(context.Background(), "NOPE")
	if err == nil {
		t.Fatalf("expected error for unknown ticker")
	}
	if code := xerrors.CodeOf(err); code != xerrors.CodeTokenResolutionError {
		t.Fatalf("unexpected error code: %v", code)
	}
}

func TestResolveTickerEmpty(t *testing.T) {
	resolver := NewResolver(tokens.NewTable(nil), nil, nil, nil, time.Hour)
	if _, err := resolver.ResolveTicker(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty ticker")
	}
}

func TestTokenDecimalsFromTable(t *testing.T) {
	resolver := NewResolver(tokens.NewTable(nil), nil, nil, nil, time.Hour)

	decimals := resolver.TokenDecimals(context.Background(), "0x29219dd400f2Bf60E5a23d13Be72B486D4038894")
	if decimals != 6 {
		t.Fatalf("unexpected decimals: %d", decimals)
	}
	// Unknown addresses fall back to 18 when no chain client is wired.
	if decimals := resolver.TokenDecimals(context.Background(), "0xunknown"); decimals != 18 {
		t.Fatalf("unexpected fallback decimals: %d", decimals)
	}
}
