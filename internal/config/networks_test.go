package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNetworksDefaults(t *testing.T) {
	networks, err := LoadNetworks("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mainnet, err := networks.SonicNetwork("mainnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mainnet.RPCURL != "https://rpc.soniclabs.com" {
		t.Fatalf("unexpected rpc url: %s", mainnet.RPCURL)
	}
	if _, err := networks.SonicNetwork("testnet"); err != nil {
		t.Fatalf("expected builtin testnet: %v", err)
	}
}

func TestLoadNetworksFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "networks.yaml")
	content := `sonic:
  mainnet:
    rpc_url: https://rpc.example.com
    chain_id: 146
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write networks file: %v", err)
	}

	networks, err := LoadNetworks(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mainnet, err := networks.SonicNetwork("mainnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mainnet.RPCURL != "https://rpc.example.com" || mainnet.ChainID != 146 {
		t.Fatalf("unexpected network: %+v", mainnet)
	}
}

func TestSonicNetworkErrors(t *testing.T) {
	networks := &Networks{Sonic: map[string]Network{
		"broken": {},
	}}
	if _, err := networks.SonicNetwork("unknown"); err == nil {
		t.Fatalf("expected error for unknown network")
	}
	if _, err := networks.SonicNetwork("broken"); err == nil {
		t.Fatalf("expected error for network without rpc_url")
	}
}
