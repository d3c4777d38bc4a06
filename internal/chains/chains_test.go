package chains

import (
	"strings"
	"testing"

	"github.com/ggonzalez94/stablepay/internal/fees"
	"github.com/shopspring/decimal"
)

func TestDefaultRegistryOrder(t *testing.T) {
	reg, err := NewRegistry(Defaults()...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	if got := strings.Join(reg.IDs(), ","); got != "tron,ethereum,base" {
		t.Fatalf("unexpected id order: %s", got)
	}
	if got := strings.Join(reg.Names(), ", "); got != "TRON, Ethereum, Base" {
		t.Fatalf("unexpected names: %s", got)
	}
	eth, ok := reg.Lookup("ethereum")
	if !ok {
		t.Fatal("expected ethereum in registry")
	}
	if eth.NativeToken != "ETH" || eth.EVMChainID != 1 {
		t.Fatalf("unexpected ethereum descriptor: %+v", eth)
	}
	if _, ok := reg.Lookup("Ethereum"); ok {
		t.Fatal("lookup is keyed by canonical lowercase id")
	}
}

func TestRegistryRejectsInvalidChains(t *testing.T) {
	valid := Defaults()[0]

	dup := []Chain{valid, valid}
	if _, err := NewRegistry(dup...); err == nil {
		t.Fatal("expected duplicate id error")
	}

	noTokens := valid
	noTokens.Tokens = nil
	if _, err := NewRegistry(noTokens); err == nil {
		t.Fatal("expected empty token set error")
	}

	noPattern := valid
	noPattern.Address = nil
	if _, err := NewRegistry(noPattern); err == nil {
		t.Fatal("expected missing address pattern error")
	}

	noFee := valid
	noFee.Fee = nil
	if _, err := NewRegistry(noFee); err == nil {
		t.Fatal("expected missing fee estimator error")
	}

	upper := valid
	upper.ID = "TRON"
	if _, err := NewRegistry(upper); err == nil {
		t.Fatal("expected lowercase id error")
	}
}

func TestRegistryIsolatedFromCallerSlices(t *testing.T) {
	chain := Chain{
		ID:      "testnet",
		Name:    "Testnet",
		Tokens:  []Token{{Symbol: "USDC", Decimals: 6}},
		Address: PrefixPattern("0x"),
		Fee:     fees.Static(decimal.NewFromInt(1)),
	}
	reg, err := NewRegistry(chain)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	chain.Tokens[0].Symbol = "XXX"
	got, _ := reg.Lookup("testnet")
	if got.Tokens[0].Symbol != "USDC" {
		t.Fatalf("registry token set mutated through caller slice: %+v", got.Tokens)
	}
}

func TestChainTokenLookup(t *testing.T) {
	tron := Defaults()[0]
	if tok, ok := tron.Token("usdt"); !ok || tok.Symbol != "USDT" {
		t.Fatalf("expected USDT on tron, got %+v ok=%v", tok, ok)
	}
	if _, ok := tron.Token("DAI"); ok {
		t.Fatal("DAI is not supported on tron")
	}
	if got := strings.Join(tron.TokenSymbols(), ","); got != "USDT,USDC,TRX" {
		t.Fatalf("unexpected symbols: %s", got)
	}
}

func TestValidAddressIsTotal(t *testing.T) {
	var empty Chain
	if empty.ValidAddress("0xabc") {
		t.Fatal("chain without pattern must reject every address")
	}
}
