package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
)

type Venue struct {
	APIURL  string `yaml:"api_url"`
	Mainnet bool   `yaml:"mainnet"`
}

type Builder struct {
	// Address receiving the builder fee, attached to every order.
	// Empty disables the builder field entirely.
	Address string `yaml:"address"`
	// Fee in tenths of a basis point (f=10 means 1 bp).
	FeeTenthsBps int `yaml:"fee_tenths_bps"`
}

type Trading struct {
	// DefaultSlippage applies to market orders without an explicit
	// tolerance. Valid range is [0, 1].
	DefaultSlippage float64 `yaml:"default_slippage"`
	// MinOrderSize is the smallest tradable size in base units.
	MinOrderSize float64 `yaml:"min_order_size"`
	// SignatureChainID is the wallet chain id used for user-signed
	// actions (approveAgent, approveBuilderFee).
	SignatureChainID int64 `yaml:"signature_chain_id"`
}

type Config struct {
	Venue   Venue   `yaml:"venue"`
	Builder Builder `yaml:"builder"`
	Trading Trading `yaml:"trading"`
}

func Default() Config {
	return Config{
		Venue: Venue{
			APIURL:  TestnetAPIURL,
			Mainnet: false,
		},
		Builder: Builder{
			FeeTenthsBps: 1,
		},
		Trading: Trading{
			DefaultSlippage:  0.01,
			MinOrderSize:     0.001,
			SignatureChainID: 421614, // Arbitrum Sepolia
		},
	}
}

// LoadFile reads a YAML config file over the defaults. A missing file
// is not an error; callers layer env overrides on top via LoadFromEnv.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > given config > defaults
func LoadFromEnv(cfg Config, envPath string) Config {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if url := os.Getenv("HYPESPOT_API_URL"); url != "" {
		cfg.Venue.APIURL = url
	}
	if mainnet := os.Getenv("HYPESPOT_MAINNET"); mainnet != "" {
		cfg.Venue.Mainnet = mainnet == "true"
		if cfg.Venue.Mainnet && cfg.Venue.APIURL == TestnetAPIURL {
			cfg.Venue.APIURL = MainnetAPIURL
		}
	}
	if addr := os.Getenv("HYPESPOT_BUILDER_ADDRESS"); addr != "" {
		cfg.Builder.Address = addr
	}
	if fee := os.Getenv("HYPESPOT_BUILDER_FEE"); fee != "" {
		if f, err := strconv.Atoi(fee); err == nil {
			cfg.Builder.FeeTenthsBps = f
		}
	}
	if slip := os.Getenv("HYPESPOT_DEFAULT_SLIPPAGE"); slip != "" {
		if s, err := strconv.ParseFloat(slip, 64); err == nil {
			cfg.Trading.DefaultSlippage = s
		}
	}
	if chainID := os.Getenv("HYPESPOT_SIGNATURE_CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseInt(chainID, 10, 64); err == nil {
			cfg.Trading.SignatureChainID = id
		}
	}

	return cfg
}
