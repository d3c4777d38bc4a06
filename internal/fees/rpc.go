package fees

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/shopspring/decimal"
)

// DefaultTransferGas covers a plain ERC-20 transfer.
const DefaultTransferGas uint64 = 65_000

// RPC prices a token transfer from an EVM node: gas limit times the
// effective gas price (latest base fee plus suggested tip).
type RPC struct {
	url      string
	gasLimit uint64
	decimals int32
}

func NewRPC(url string, gasLimit uint64) *RPC {
	if gasLimit == 0 {
		gasLimit = DefaultTransferGas
	}
	return &RPC{url: strings.TrimSpace(url), gasLimit: gasLimit, decimals: 18}
}

func (e *RPC) EstimateFee(ctx context.Context) (decimal.Decimal, error) {
	if e.url == "" {
		return decimal.Zero, clierr.New(clierr.CodeUsage, "fee rpc url is not configured")
	}
	client, err := ethclient.DialContext(ctx, e.url)
	if err != nil {
		return decimal.Zero, clierr.Wrap(clierr.CodeUnavailable, "connect rpc", err)
	}
	defer client.Close()

	price, err := effectiveGasPrice(ctx, client)
	if err != nil {
		return decimal.Zero, err
	}
	wei := new(big.Int).Mul(price, new(big.Int).SetUint64(e.gasLimit))
	return decimal.NewFromBigInt(wei, -e.decimals), nil
}

func effectiveGasPrice(ctx context.Context, client *ethclient.Client) (*big.Int, error) {
	var block struct {
		BaseFeePerGas *hexutil.Big `json:"baseFeePerGas"`
	}
	if err := client.Client().CallContext(ctx, &block, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "fetch latest block", err)
	}
	if block.BaseFeePerGas == nil {
		// Pre-London chains only expose a legacy gas price.
		price, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeUnavailable, "suggest gas price", err)
		}
		return price, nil
	}
	tip, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUnavailable, "suggest gas tip", err)
	}
	return new(big.Int).Add((*big.Int)(block.BaseFeePerGas), tip), nil
}
