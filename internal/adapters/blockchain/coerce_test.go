package blockchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
)

func mustType(t *testing.T, name string) abi.Type {
	t.Helper()
	typ, err := abi.NewType(name, "", nil)
	require.NoError(t, err)
	return typ
}

func TestCoerce(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)

	tests := []struct {
		name    string
		typ     string
		value   any
		want    any
		wantErr string
	}{
		{name: "address string", typ: "address", value: "0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6",
			want: common.HexToAddress("0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6")},
		{name: "bad address", typ: "address", value: "0x1234", wantErr: domain.ErrInvalidAddress.Error()},
		{name: "uint256 from ether", typ: "uint256", value: "1ether", want: oneEther},
		{name: "uint256 from big.Int", typ: "uint256", value: big.NewInt(42), want: big.NewInt(42)},
		{name: "uint256 from int", typ: "uint256", value: 7, want: big.NewInt(7)},
		{name: "uint8 from int", typ: "uint8", value: 200, want: uint8(200)},
		{name: "uint8 overflow", typ: "uint8", value: 256, wantErr: "overflows uint8"},
		{name: "negative uint", typ: "uint64", value: -1, wantErr: "negative value"},
		{name: "int64 negative", typ: "int64", value: "-5", want: int64(-5)},
		{name: "int8 overflow", typ: "int8", value: 128, wantErr: "overflows int8"},
		{name: "int256 hex", typ: "int256", value: "0x10", want: big.NewInt(16)},
		{name: "bool", typ: "bool", value: true, want: true},
		{name: "bool string", typ: "bool", value: "false", want: false},
		{name: "string", typ: "string", value: "Balloons", want: "Balloons"},
		{name: "bytes", typ: "bytes", value: "0x0102", want: []byte{1, 2}},
		{name: "bytes4", typ: "bytes4", value: "0xa9059cbb", want: [4]byte{0xa9, 0x05, 0x9c, 0xbb}},
		{name: "bytes4 wrong size", typ: "bytes4", value: "0x01", wantErr: "expected 4 bytes"},
		{name: "address list", typ: "address[]", value: []any{"0x0000000000000000000000000000000000000001"},
			want: []common.Address{common.HexToAddress("0x0000000000000000000000000000000000000001")}},
		{name: "fixed array", typ: "uint16[2]", value: []any{1, 2}, want: [2]uint16{1, 2}},
		{name: "fixed array size", typ: "uint16[2]", value: []any{1}, wantErr: "expected 2 elements"},
		{name: "not a list", typ: "uint256[]", value: "1", wantErr: "expected a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerce(mustType(t, tt.typ), tt.value)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceArgs(t *testing.T) {
	inputs := abi.Arguments{
		{Name: "to", Type: mustType(t, "address")},
		{Name: "amount", Type: mustType(t, "uint256")},
	}

	t.Run("packs with coerced values", func(t *testing.T) {
		args, err := coerceArgs(inputs, []any{"0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6", "10ether"})
		require.NoError(t, err)

		_, err = inputs.Pack(args...)
		require.NoError(t, err)
	})

	t.Run("argument count", func(t *testing.T) {
		_, err := coerceArgs(inputs, []any{"0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6"})
		assert.ErrorContains(t, err, "expected 2 arguments, got 1")
	})

	t.Run("names the failing argument", func(t *testing.T) {
		_, err := coerceArgs(inputs, []any{"0x047821Dc2b13F680FeD9B006F0868bE43AcF4fe6", "ten"})
		assert.ErrorContains(t, err, "argument amount (uint256)")
	})
}
