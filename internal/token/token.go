// Package token holds the static registry of tokens the exchange supports.
package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Class groups tokens for pricing decisions that do not need a pool.
type Class string

const (
	ClassNative  Class = "native"
	ClassWrapped Class = "wrapped"
	ClassStable  Class = "stable"
	ClassOther   Class = "other"
)

// Token is one registry entry. The zero address is reserved for the chain's
// native asset.
type Token struct {
	Symbol   string         `yaml:"symbol" json:"symbol"`
	Name     string         `yaml:"name" json:"name"`
	Decimals uint8          `yaml:"decimals" json:"decimals"`
	Address  common.Address `yaml:"address" json:"address"`
	Class    Class          `yaml:"class" json:"class"`
	Logo     string         `yaml:"logo" json:"logo,omitempty"`
	Color    string         `yaml:"color" json:"color,omitempty"`
}

// IsNative reports whether t is the chain's native asset.
func (t Token) IsNative() bool {
	return t.Address == (common.Address{})
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Symbol, t.Address.Hex())
}
