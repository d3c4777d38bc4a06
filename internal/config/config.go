package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultEndpoint = "https://base-tx-frame.vercel.app/transaction/"

var validate = validator.New()

type GlobalFlags struct {
	ConfigPath   string
	JSON         bool
	Plain        bool
	Select       string
	ResultsOnly  bool
	EnableSkills string
	Timeout      string
	Retries      int
	NoCache      bool
	LogLevel     string
	Endpoint     string
}

type Settings struct {
	OutputMode      string
	SelectFields    []string
	ResultsOnly     bool
	EnableSkills    []string
	Timeout         time.Duration
	Retries         int
	LogLevel        string
	Endpoint        string
	DefaultToken    string
	DefaultChain    string
	StrictAddresses bool
	CacheEnabled    bool
	CachePath       string
	CacheLockPath   string
	FeeCacheTTL     time.Duration
	ListenAddr      string
	Chains          []ChainConfig
	Fees            map[string]FeeConfig
}

// ChainConfig replaces the curated registry when present in the config file.
type ChainConfig struct {
	ID          string        `yaml:"id" validate:"required,lowercase"`
	Name        string        `yaml:"name"`
	NativeToken string        `yaml:"native_token" validate:"required"`
	Address     string        `yaml:"address" validate:"required"`
	EVMChainID  int64         `yaml:"evm_chain_id" validate:"gte=0"`
	Tokens      []TokenConfig `yaml:"tokens" validate:"required,min=1,dive"`
	Fee         FeeConfig     `yaml:"fee"`
}

type TokenConfig struct {
	Symbol   string `yaml:"symbol" validate:"required,uppercase"`
	Address  string `yaml:"address"`
	Decimals int32  `yaml:"decimals" validate:"gte=0,lte=36"`
}

// FeeConfig selects how a chain's fee is estimated.
type FeeConfig struct {
	Source   string            `yaml:"source" validate:"omitempty,oneof=static rpc http"`
	Value    string            `yaml:"value" validate:"required_if=Source static,omitempty,numeric"`
	RPCURL   string            `yaml:"rpc_url" validate:"omitempty,url"`
	GasLimit uint64            `yaml:"gas_limit"`
	URL      string            `yaml:"url" validate:"required_if=Source http,omitempty,url"`
	Field    string            `yaml:"field"`
	Headers  map[string]string `yaml:"headers"`
}

type fileConfig struct {
	Output          string   `yaml:"output" validate:"omitempty,oneof=json plain"`
	Timeout         string   `yaml:"timeout"`
	Retries         *int     `yaml:"retries" validate:"omitempty,gte=0"`
	LogLevel        string   `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Endpoint        string   `yaml:"endpoint" validate:"omitempty,url"`
	StrictAddresses *bool    `yaml:"strict_addresses"`
	EnableSkills    []string `yaml:"enable_skills"`
	Defaults        struct {
		Token string `yaml:"token"`
		Chain string `yaml:"chain"`
	} `yaml:"defaults"`
	Cache struct {
		Enabled  *bool  `yaml:"enabled"`
		TTL      string `yaml:"ttl"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"cache"`
	Serve struct {
		Addr string `yaml:"addr"`
	} `yaml:"serve"`
	Chains []ChainConfig        `yaml:"chains" validate:"omitempty,dive"`
	Fees   map[string]FeeConfig `yaml:"fees" validate:"omitempty,dive"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.Timeout <= 0 {
		settings.Timeout = 10 * time.Second
	}
	if settings.Retries < 0 {
		settings.Retries = 0
	}
	if settings.FeeCacheTTL <= 0 {
		settings.FeeCacheTTL = 30 * time.Second
	}
	settings.DefaultToken = strings.ToUpper(strings.TrimSpace(settings.DefaultToken))
	settings.DefaultChain = strings.ToLower(strings.TrimSpace(settings.DefaultChain))

	return settings, nil
}

func defaultSettings() (Settings, error) {
	cachePath, lockPath, err := defaultCachePaths()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:    "json",
		Timeout:       10 * time.Second,
		Retries:       2,
		LogLevel:      "warn",
		Endpoint:      DefaultEndpoint,
		DefaultToken:  "USDC",
		CacheEnabled:  true,
		CachePath:     cachePath,
		CacheLockPath: lockPath,
		FeeCacheTTL:   30 * time.Second,
		ListenAddr:    ":8080",
		Fees:          map[string]FeeConfig{},
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "stablepay", "config.yaml"), nil
}

func defaultCachePaths() (string, string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "stablepay")
	return filepath.Join(dir, "fees.db"), filepath.Join(dir, "fees.lock"), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := checkUniqueChains(cfg.Chains); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.Retries != nil {
		settings.Retries = *cfg.Retries
	}
	if cfg.LogLevel != "" {
		settings.LogLevel = cfg.LogLevel
	}
	if cfg.Endpoint != "" {
		settings.Endpoint = cfg.Endpoint
	}
	if cfg.StrictAddresses != nil {
		settings.StrictAddresses = *cfg.StrictAddresses
	}
	if len(cfg.EnableSkills) > 0 {
		settings.EnableSkills = normalizeList(cfg.EnableSkills)
	}
	if cfg.Defaults.Token != "" {
		settings.DefaultToken = cfg.Defaults.Token
	}
	if cfg.Defaults.Chain != "" {
		settings.DefaultChain = cfg.Defaults.Chain
	}
	if cfg.Cache.Enabled != nil {
		settings.CacheEnabled = *cfg.Cache.Enabled
	}
	if cfg.Cache.TTL != "" {
		d, err := time.ParseDuration(cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("config cache.ttl: %w", err)
		}
		settings.FeeCacheTTL = d
	}
	if cfg.Cache.Path != "" {
		settings.CachePath = cfg.Cache.Path
	}
	if cfg.Cache.LockPath != "" {
		settings.CacheLockPath = cfg.Cache.LockPath
	}
	if cfg.Serve.Addr != "" {
		settings.ListenAddr = cfg.Serve.Addr
	}
	if len(cfg.Chains) > 0 {
		settings.Chains = cfg.Chains
	}
	for id, fee := range cfg.Fees {
		settings.Fees[strings.ToLower(strings.TrimSpace(id))] = fee
	}

	return nil
}

func checkUniqueChains(chains []ChainConfig) error {
	seen := map[string]struct{}{}
	for _, c := range chains {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate chain id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("STABLEPAY_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("STABLEPAY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("STABLEPAY_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			settings.Retries = n
		}
	}
	if v := os.Getenv("STABLEPAY_LOG_LEVEL"); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("STABLEPAY_ENDPOINT"); v != "" {
		settings.Endpoint = v
	}
	if v := os.Getenv("STABLEPAY_DEFAULT_TOKEN"); v != "" {
		settings.DefaultToken = v
	}
	if v := os.Getenv("STABLEPAY_DEFAULT_CHAIN"); v != "" {
		settings.DefaultChain = v
	}
	if v := os.Getenv("STABLEPAY_STRICT_ADDRESSES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.StrictAddresses = b
		}
	}
	if v := os.Getenv("STABLEPAY_ENABLE_SKILLS"); v != "" {
		settings.EnableSkills = normalizeList(strings.Split(v, ","))
	}
	if v := os.Getenv("STABLEPAY_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.CacheEnabled = !b
		}
	}
	if v := os.Getenv("STABLEPAY_CACHE_PATH"); v != "" {
		settings.CachePath = v
	}
	if v := os.Getenv("STABLEPAY_CACHE_LOCK_PATH"); v != "" {
		settings.CacheLockPath = v
	}
	if v := os.Getenv("STABLEPAY_FEE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.FeeCacheTTL = d
		}
	}
	if v := os.Getenv("STABLEPAY_LISTEN_ADDR"); v != "" {
		settings.ListenAddr = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if strings.TrimSpace(flags.Select) != "" {
		parts := strings.Split(flags.Select, ",")
		fields := make([]string, 0, len(parts))
		for _, part := range parts {
			f := strings.TrimSpace(part)
			if f != "" {
				fields = append(fields, f)
			}
		}
		settings.SelectFields = fields
	}
	settings.ResultsOnly = flags.ResultsOnly

	if strings.TrimSpace(flags.EnableSkills) != "" {
		settings.EnableSkills = normalizeList(strings.Split(flags.EnableSkills, ","))
	}
	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.Retries >= 0 {
		settings.Retries = flags.Retries
	}
	if flags.NoCache {
		settings.CacheEnabled = false
	}
	if flags.LogLevel != "" {
		settings.LogLevel = strings.ToLower(flags.LogLevel)
	}
	if flags.Endpoint != "" {
		settings.Endpoint = flags.Endpoint
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}
	switch settings.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}

	return nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		v := strings.ToLower(strings.TrimSpace(item))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
