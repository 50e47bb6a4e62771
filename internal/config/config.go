package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Monad testnet defaults.
const (
	DefaultChainID        = 10143
	DefaultFactoryAddress = "0x733e88f248b742db6c14c0b1713af5ad7fdd59d0"
	DefaultRouterAddress  = "0xfb8e1c3b833f9e67a71c859a132cf783b645e436"
)

type Config struct {
	Addr        string
	RPCEndpoint string
	LogLevel    string
	// LogFile enables rotating file output in addition to stdout.
	LogFile string
	// TokensFile replaces the built-in token registry.
	TokensFile string

	ChainID    *big.Int
	PrivateKey *ecdsa.PrivateKey
	Factory    common.Address
	Router     common.Address

	PollInterval     time.Duration
	TxTimeout        time.Duration
	SessionTTL       time.Duration
	MaxSessions      int
	FeeBps           uint16
	NativeStableRate decimal.Decimal
}

func FromEnv() (*Config, error) {
	rpcURL := os.Getenv("RPC_URL")
	if rpcURL == "" {
		rpcURL = os.Getenv("ETH_RPC_URL")
	}
	if rpcURL == "" {
		return nil, ErrMissingRPCEndpoint
	}

	cfg := &Config{
		Addr:        getenv("ADDR", ":1337"),
		RPCEndpoint: rpcURL,
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		TokensFile:  os.Getenv("TOKENS_FILE"),
	}

	chainID, err := strconv.ParseUint(getenv("CHAIN_ID", strconv.Itoa(DefaultChainID)), 10, 64)
	if err != nil || chainID == 0 {
		return nil, invalid("CHAIN_ID", err)
	}
	cfg.ChainID = new(big.Int).SetUint64(chainID)

	if key := strings.TrimPrefix(os.Getenv("PRIVATE_KEY"), "0x"); key != "" {
		cfg.PrivateKey, err = crypto.HexToECDSA(key)
		if err != nil {
			// the key itself must not end up in logs
			return nil, invalid("PRIVATE_KEY", nil)
		}
	}

	if cfg.Factory, err = address("FACTORY_ADDRESS", DefaultFactoryAddress); err != nil {
		return nil, err
	}
	if cfg.Router, err = address("ROUTER_ADDRESS", DefaultRouterAddress); err != nil {
		return nil, err
	}

	if cfg.PollInterval, err = duration("POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.TxTimeout, err = duration("TX_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}

	if cfg.SessionTTL, err = duration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxSessions, err = strconv.Atoi(getenv("MAX_SESSIONS", "1000")); err != nil || cfg.MaxSessions < 0 {
		return nil, invalid("MAX_SESSIONS", err)
	}

	fee, err := strconv.ParseUint(getenv("FEE_BPS", "30"), 10, 16)
	if err != nil || fee >= 10_000 {
		return nil, invalid("FEE_BPS", err)
	}
	cfg.FeeBps = uint16(fee)

	cfg.NativeStableRate, err = decimal.NewFromString(getenv("NATIVE_STABLE_RATE", "5000"))
	if err != nil || !cfg.NativeStableRate.IsPositive() {
		return nil, invalid("NATIVE_STABLE_RATE", err)
	}

	return cfg, nil
}

// CanSign reports whether a signing key is configured.
func (c *Config) CanSign() bool {
	return c.PrivateKey != nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func address(key, def string) (common.Address, error) {
	v := getenv(key, def)
	if !common.IsHexAddress(v) {
		return common.Address{}, invalid(key, nil)
	}
	return common.HexToAddress(v), nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, invalid(key, err)
	}
	return d, nil
}

func invalid(key string, err error) error {
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrInvalidValue, key, err)
	}
	return fmt.Errorf("%w %s", ErrInvalidValue, key)
}
