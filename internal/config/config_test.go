package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	return tmp
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	settings, err := Load(GlobalFlags{Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "json" || settings.Retries != 2 || settings.Timeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
	if settings.DefaultToken != "USDC" || settings.DefaultChain != "" {
		t.Fatalf("expected USDC and no default chain, got %q/%q", settings.DefaultToken, settings.DefaultChain)
	}
	if settings.Endpoint != DefaultEndpoint {
		t.Fatalf("unexpected endpoint: %s", settings.Endpoint)
	}
	if !settings.CacheEnabled || filepath.Base(settings.CachePath) != "fees.db" {
		t.Fatalf("unexpected cache defaults: %+v", settings)
	}
}

func TestLoadPrecedenceFlagsOverEnvOverFile(t *testing.T) {
	tmp := isolate(t)
	configPath := writeConfig(t, tmp, "output: plain\nretries: 1\nendpoint: https://file.example/tx/\ndefaults:\n  chain: Base\n")

	t.Setenv("STABLEPAY_OUTPUT", "json")
	t.Setenv("STABLEPAY_ENDPOINT", "https://env.example/tx/")
	flags := GlobalFlags{ConfigPath: configPath, Plain: true, Retries: 5}
	settings, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OutputMode != "plain" {
		t.Fatalf("expected flag to win, got output=%s", settings.OutputMode)
	}
	if settings.Retries != 5 {
		t.Fatalf("expected retries from flags, got %d", settings.Retries)
	}
	if settings.Endpoint != "https://env.example/tx/" {
		t.Fatalf("expected env to beat file, got %s", settings.Endpoint)
	}
	if settings.DefaultChain != "base" {
		t.Fatalf("expected lowercased default chain from file, got %q", settings.DefaultChain)
	}
}

func TestLoadMutuallyExclusiveOutputFlags(t *testing.T) {
	isolate(t)
	_, err := Load(GlobalFlags{JSON: true, Plain: true})
	if err == nil {
		t.Fatal("expected error with --json and --plain")
	}
}

func TestLoadChainsAndFees(t *testing.T) {
	tmp := isolate(t)
	configPath := writeConfig(t, tmp, `
chains:
  - id: polygon
    name: Polygon
    native_token: POL
    address: evm
    evm_chain_id: 137
    tokens:
      - symbol: USDC
        decimals: 6
    fee:
      source: static
      value: "0.01"
fees:
  Ethereum:
    source: rpc
    rpc_url: https://eth.example
    gas_limit: 70000
cache:
  ttl: 1m
`)
	settings, err := Load(GlobalFlags{ConfigPath: configPath, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.Chains) != 1 || settings.Chains[0].ID != "polygon" {
		t.Fatalf("unexpected chains: %+v", settings.Chains)
	}
	fee, ok := settings.Fees["ethereum"]
	if !ok || fee.Source != "rpc" || fee.GasLimit != 70000 {
		t.Fatalf("unexpected fee overrides: %+v", settings.Fees)
	}
	if settings.FeeCacheTTL != time.Minute {
		t.Fatalf("unexpected ttl: %s", settings.FeeCacheTTL)
	}
}

func TestLoadRejectsInvalidFileConfig(t *testing.T) {
	cases := map[string]string{
		"bad output":      "output: xml\n",
		"uppercase id":    "chains:\n  - id: Base\n    native_token: ETH\n    address: evm\n    tokens:\n      - symbol: USDC\n",
		"no tokens":       "chains:\n  - id: base\n    native_token: ETH\n    address: evm\n",
		"static no value": "fees:\n  tron:\n    source: static\n",
		"unknown source":  "fees:\n  tron:\n    source: carrier-pigeon\n",
		"duplicate chain": "chains:\n  - id: base\n    native_token: ETH\n    address: evm\n    tokens:\n      - symbol: USDC\n  - id: base\n    native_token: ETH\n    address: evm\n    tokens:\n      - symbol: USDC\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			tmp := isolate(t)
			path := writeConfig(t, tmp, body)
			if _, err := Load(GlobalFlags{ConfigPath: path, Retries: -1}); err == nil {
				t.Fatalf("expected %s to fail validation", name)
			}
		})
	}
}

func TestLoadSkillAllowlistAndNoCache(t *testing.T) {
	isolate(t)
	t.Setenv("STABLEPAY_ENABLE_SKILLS", "Balance")
	settings, err := Load(GlobalFlags{NoCache: true, Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.EnableSkills) != 1 || settings.EnableSkills[0] != "balance" {
		t.Fatalf("unexpected skills: %#v", settings.EnableSkills)
	}
	if settings.CacheEnabled {
		t.Fatal("expected --no-cache to disable the fee cache")
	}

	settings, err = Load(GlobalFlags{EnableSkills: "transfer, balance", Retries: -1})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.EnableSkills) != 2 || settings.EnableSkills[0] != "transfer" {
		t.Fatalf("expected flag skills to win, got %#v", settings.EnableSkills)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	isolate(t)
	if _, err := Load(GlobalFlags{LogLevel: "verbose", Retries: -1}); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
}
