package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	mon, err := r.Lookup("mon")
	require.NoError(t, err)
	assert.True(t, mon.IsNative())
	assert.Equal(t, uint8(18), mon.Decimals)

	usdc, err := r.Lookup("USDC")
	require.NoError(t, err)
	assert.Equal(t, uint8(6), usdc.Decimals)
	assert.Equal(t, ClassStable, usdc.Class)

	assert.Equal(t, "WMON", r.Wrapped().Symbol)
	assert.Equal(t, r.Wrapped().Address, r.PairAddress(mon))
	assert.Equal(t, usdc.Address, r.PairAddress(usdc))

	symbols := make([]string, 0)
	for _, tok := range r.All() {
		symbols = append(symbols, tok.Symbol)
	}
	assert.Equal(t, []string{"MON", "USDC", "USDT", "WMON"}, symbols)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := DefaultRegistry().Lookup("DOGE")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestNewRegistry_Validation(t *testing.T) {
	wmon := Token{Symbol: "WMON", Decimals: 18, Address: common.HexToAddress("0x01"), Class: ClassWrapped}
	mon := Token{Symbol: "MON", Decimals: 18}

	_, err := NewRegistry([]Token{wmon})
	assert.ErrorIs(t, err, ErrNoNativeToken)

	_, err = NewRegistry([]Token{mon})
	assert.ErrorIs(t, err, ErrNoWrappedToken)

	_, err = NewRegistry([]Token{mon, wmon, {Symbol: "wmon", Address: common.HexToAddress("0x02")}})
	assert.ErrorIs(t, err, ErrDuplicateToken)

	_, err = NewRegistry([]Token{mon, wmon, {Symbol: "WETH", Address: common.HexToAddress("0x05"), Class: ClassWrapped}})
	assert.ErrorIs(t, err, ErrDuplicateToken)

	_, err = NewRegistry([]Token{mon, wmon, {Symbol: "BAD", Address: common.HexToAddress("0x03"), Class: ClassNative}})
	assert.Error(t, err)

	r, err := NewRegistry([]Token{mon, wmon, {Symbol: "abc", Address: common.HexToAddress("0x04")}})
	require.NoError(t, err)
	abc, err := r.Lookup("ABC")
	require.NoError(t, err)
	assert.Equal(t, ClassOther, abc.Class)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	content := `tokens:
  - symbol: MON
    name: MON
    decimals: 18
    address: "0x0000000000000000000000000000000000000000"
    class: native
  - symbol: WMON
    decimals: 18
    address: "0x760AfE86e5de5fa0Ee542fc7B7B713e1c5425701"
    class: wrapped
  - symbol: DAI
    decimals: 18
    address: "0x00000000000000000000000000000000000000da"
    class: stable
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)

	dai, err := r.Lookup("DAI")
	require.NoError(t, err)
	assert.Equal(t, ClassStable, dai.Class)
	assert.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000da"), dai.Address)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
