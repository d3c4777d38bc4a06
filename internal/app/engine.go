package app

import (
	"fmt"
	"time"

	"github.com/ggonzalez94/stablepay/internal/cache"
	"github.com/ggonzalez94/stablepay/internal/chains"
	"github.com/ggonzalez94/stablepay/internal/config"
	"github.com/ggonzalez94/stablepay/internal/dispatch"
	clierr "github.com/ggonzalez94/stablepay/internal/errors"
	"github.com/ggonzalez94/stablepay/internal/fees"
	"github.com/ggonzalez94/stablepay/internal/httpx"
	"github.com/ggonzalez94/stablepay/internal/normalize"
	"github.com/ggonzalez94/stablepay/internal/resolver"
	"github.com/ggonzalez94/stablepay/internal/txurl"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// engine builds the registry, resolver and dispatcher once per run.
func (s *runtimeState) engine() (*dispatch.Dispatcher, error) {
	if s.dispatcher != nil {
		return s.dispatcher, nil
	}

	list, err := s.buildChains()
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "build chain registry", err)
	}
	reg, err := chains.NewRegistry(list...)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "build chain registry", err)
	}
	if s.settings.DefaultChain != "" {
		if _, ok := reg.Lookup(s.settings.DefaultChain); !ok {
			return nil, clierr.Reject(clierr.CodeUsage, fmt.Sprintf("default chain %s is not in the registry", s.settings.DefaultChain), reg.IDs())
		}
	}
	urls, err := txurl.New(s.settings.Endpoint)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "configure frame endpoint", err)
	}

	norm := normalize.New(reg, normalize.Defaults{Token: s.settings.DefaultToken, Chain: s.settings.DefaultChain})
	s.registry = reg
	s.resolver = resolver.New(reg, norm)
	s.dispatcher = dispatch.New(s.resolver, urls,
		dispatch.WithLogger(s.log),
		dispatch.WithRecorder(s.recorder),
		dispatch.WithTimeout(s.settings.Timeout),
		dispatch.WithAllowedSkills(s.settings.EnableSkills),
	)
	s.log.Debug("engine ready", zap.Strings("chains", reg.IDs()), zap.String("endpoint", urls.Endpoint()))
	return s.dispatcher, nil
}

func (s *runtimeState) buildChains() ([]chains.Chain, error) {
	var list []chains.Chain
	if len(s.settings.Chains) > 0 {
		for _, cfg := range s.settings.Chains {
			c, err := chainFromConfig(cfg)
			if err != nil {
				return nil, err
			}
			list = append(list, c)
		}
	} else {
		list = chains.Defaults()
	}

	httpClient := httpx.New(s.settings.Timeout, s.settings.Retries)
	for i := range list {
		c := &list[i]
		if s.settings.StrictAddresses {
			c.Address = chains.StrictPattern(*c)
		}

		fc, hasOverride := s.settings.Fees[c.ID]
		if !hasOverride && len(s.settings.Chains) > 0 {
			fc = s.settings.Chains[i].Fee
		}
		est, live, err := feeEstimator(*c, fc, httpClient)
		if err != nil {
			return nil, err
		}
		if est == nil {
			est = c.Fee
		}
		if live && s.settings.CacheEnabled {
			store, err := s.feeCache()
			if err != nil {
				return nil, err
			}
			est = fees.NewCached(est, store, "fee:"+c.ID, s.settings.FeeCacheTTL)
		}
		chainID := c.ID
		c.Fee = fees.Instrument(est, func(status string, elapsed time.Duration) {
			s.recorder.ObserveFeeEstimate(chainID, status, elapsed)
		})
	}
	return list, nil
}

func (s *runtimeState) feeCache() (*cache.Store, error) {
	if s.cache != nil {
		return s.cache, nil
	}
	store, err := cache.Open(s.settings.CachePath, s.settings.CacheLockPath)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeInternal, "open fee cache", err)
	}
	s.cache = store
	return store, nil
}

// feeEstimator returns nil when fc names no source so the chain keeps its
// built-in estimator. live reports whether the estimator does network I/O.
func feeEstimator(chain chains.Chain, fc config.FeeConfig, client *httpx.Client) (est fees.Estimator, live bool, err error) {
	switch fc.Source {
	case "":
		return nil, false, nil
	case "static":
		fee, err := decimal.NewFromString(fc.Value)
		if err != nil {
			return nil, false, fmt.Errorf("chain %s: static fee %q: %w", chain.ID, fc.Value, err)
		}
		if fee.IsNegative() {
			return nil, false, fmt.Errorf("chain %s: static fee must not be negative", chain.ID)
		}
		return fees.Static(fee), false, nil
	case "rpc":
		url, err := chains.ResolveRPCURL(fc.RPCURL, chain)
		if err != nil {
			return nil, false, err
		}
		return fees.NewRPC(url, fc.GasLimit), true, nil
	case "http":
		return fees.NewOracle(client, fc.URL, fc.Field, fc.Headers), true, nil
	default:
		return nil, false, fmt.Errorf("chain %s: unknown fee source %q", chain.ID, fc.Source)
	}
}

func chainFromConfig(cfg config.ChainConfig) (chains.Chain, error) {
	pattern, err := chains.ParsePattern(cfg.Address)
	if err != nil {
		return chains.Chain{}, fmt.Errorf("chain %s: %w", cfg.ID, err)
	}
	if cfg.Fee.Source == "" {
		return chains.Chain{}, fmt.Errorf("chain %s: fee.source is required", cfg.ID)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}
	c := chains.Chain{
		ID:          cfg.ID,
		Name:        name,
		NativeToken: cfg.NativeToken,
		Address:     pattern,
		EVMChainID:  cfg.EVMChainID,
		// Placeholder so validation passes; buildChains installs the real one.
		Fee: fees.Static(decimal.Zero),
	}
	for _, t := range cfg.Tokens {
		c.Tokens = append(c.Tokens, chains.Token{Symbol: t.Symbol, Address: t.Address, Decimals: t.Decimals})
	}
	return c, nil
}
