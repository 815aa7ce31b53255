package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godxgen/internal/metadata"
)

func TestEmitConstantsKeepFullWidth(t *testing.T) {
	store := &metadata.Store{Constants: []metadata.Constant{
		{Name: "DXGI_ALL_BITS", Kind: metadata.ConstInt, Int: -1, Unsigned: true},
		{Name: "DXGI_BIG_OFFSET", Kind: metadata.ConstInt, Int: 1 << 40, Unsigned: true},
		{Name: "DXGI_BIG_NEGATIVE", Kind: metadata.ConstInt, Int: -(1 << 40)},
	}}
	file, _, err := NewGenerator(store, "dxgi").Generate()
	require.NoError(t, err)
	out := renderFile(t, file)

	assert.Contains(t, out, "const DXGI_ALL_BITS = 18446744073709551615")
	assert.Contains(t, out, "const DXGI_BIG_OFFSET = 1099511627776")
	assert.Contains(t, out, "const DXGI_BIG_NEGATIVE = -1099511627776")
}

func TestEmitEnumKeepsWideMembers(t *testing.T) {
	store := &metadata.Store{Enums: []metadata.Enum{
		{Name: "DXGI_WIDE", Bits: 64, Members: []metadata.EnumMember{
			{Name: "DXGI_WIDE_TOP_BIT", Value: -0x8000000000000000},
		}},
		{Name: "DXGI_WIDE_SIGNED", Bits: 64, Signed: true, Members: []metadata.EnumMember{
			{Name: "DXGI_WIDE_SIGNED_LOW", Value: -(1 << 40)},
		}},
	}}
	file, _, err := NewGenerator(store, "dxgi").Generate()
	require.NoError(t, err)
	out := renderFile(t, file)

	assert.Contains(t, out, "TOP_BIT DXGI_WIDE = 9223372036854775808")
	assert.Contains(t, out, "LOW DXGI_WIDE_SIGNED = -1099511627776")
}
