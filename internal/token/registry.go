package token

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownToken   = errors.New("unknown token")
	ErrDuplicateToken = errors.New("duplicate token symbol")
	ErrNoNativeToken  = errors.New("registry has no native token")
	ErrNoWrappedToken = errors.New("registry has no wrapped native token")
)

// Monad testnet deployments used when no registry file is configured.
var defaultTokens = []Token{
	{
		Symbol:   "MON",
		Name:     "MON",
		Decimals: 18,
		Class:    ClassNative,
		Logo:     "/tokens/mon.svg",
		Color:    "#1A0B3B",
	},
	{
		Symbol:   "WMON",
		Name:     "Wrapped MON",
		Decimals: 18,
		Address:  common.HexToAddress("0x760AfE86e5de5fa0Ee542fc7B7B713e1c5425701"),
		Class:    ClassWrapped,
		Logo:     "/tokens/wmon.svg",
		Color:    "#1A0B3B",
	},
	{
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
		Address:  common.HexToAddress("0x0b34a08730f7dcf1130629Ca2ed5Bc9c8f5Aa435"),
		Class:    ClassStable,
		Logo:     "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48/logo.png",
		Color:    "#2775CA",
	},
	{
		Symbol:   "USDT",
		Name:     "Tether USD",
		Decimals: 6,
		Address:  common.HexToAddress("0x69d8FdC9E0bFe943a9987402DF71feF7f7E468F5"),
		Class:    ClassStable,
		Logo:     "https://raw.githubusercontent.com/trustwallet/assets/master/blockchains/ethereum/assets/0xdAC17F958D2ee523a2206206994597C13D831ec7/logo.png",
		Color:    "#26A17B",
	},
}

// Registry is an immutable symbol-keyed token table. It is safe for
// concurrent use.
type Registry struct {
	bySymbol map[string]Token
	native   Token
	wrapped  Token
}

// NewRegistry validates tokens and indexes them by upper-cased symbol. It
// requires exactly one native token and exactly one wrapped native token,
// which is what pair lookups route the native asset through.
func NewRegistry(tokens []Token) (*Registry, error) {
	r := &Registry{bySymbol: make(map[string]Token, len(tokens))}
	var haveNative, haveWrapped bool
	for _, t := range tokens {
		t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
		if t.Symbol == "" {
			return nil, fmt.Errorf("token with address %s has no symbol", t.Address.Hex())
		}
		if _, ok := r.bySymbol[t.Symbol]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, t.Symbol)
		}
		if t.Class == "" {
			t.Class = ClassOther
		}
		if t.IsNative() {
			t.Class = ClassNative
		}
		switch t.Class {
		case ClassNative:
			if !t.IsNative() {
				return nil, fmt.Errorf("native token %s must use the zero address", t.Symbol)
			}
			if haveNative {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, t.Symbol)
			}
			r.native, haveNative = t, true
		case ClassWrapped:
			if haveWrapped {
				return nil, fmt.Errorf("%w: second wrapped token %s", ErrDuplicateToken, t.Symbol)
			}
			r.wrapped, haveWrapped = t, true
		}
		r.bySymbol[t.Symbol] = t
	}
	if !haveNative {
		return nil, ErrNoNativeToken
	}
	if !haveWrapped {
		return nil, ErrNoWrappedToken
	}
	return r, nil
}

// DefaultRegistry returns the built-in Monad testnet registry.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultTokens)
	if err != nil {
		panic(err)
	}
	return r
}

type registryFile struct {
	Tokens []Token `yaml:"tokens"`
}

// LoadRegistry reads a YAML registry file of the form
//
//	tokens:
//	  - symbol: MON
//	    decimals: 18
//	    address: "0x0000000000000000000000000000000000000000"
//	    class: native
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token registry: %w", err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse token registry: %w", err)
	}
	return NewRegistry(f.Tokens)
}

// Lookup returns the token registered under symbol, case-insensitively.
func (r *Registry) Lookup(symbol string) (Token, error) {
	t, ok := r.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, symbol)
	}
	return t, nil
}

// Native returns the chain's native asset.
func (r *Registry) Native() Token { return r.native }

// Wrapped returns the ERC20 wrapper of the native asset.
func (r *Registry) Wrapped() Token { return r.wrapped }

// PairAddress is the address used for t in factory and router calls: the
// wrapped token stands in for the native asset.
func (r *Registry) PairAddress(t Token) common.Address {
	if t.IsNative() {
		return r.wrapped.Address
	}
	return t.Address
}

// All returns every token ordered by symbol.
func (r *Registry) All() []Token {
	out := make([]Token, 0, len(r.bySymbol))
	for _, t := range r.bySymbol {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
