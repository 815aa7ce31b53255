package generation

import (
	"bytes"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godxgen/internal/metadata"
)

func renderFile(t *testing.T, file *jen.File) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, file.Render(&buf))
	return buf.String()
}

func TestEmitStructPlainFields(t *testing.T) {
	s := metadata.Struct{Name: "DXGI_SAMPLE_DESC", Fields: []metadata.Field{
		{Name: "Count", Type: metadata.Uint(32), Offset: -1},
		{Name: "Quality", Type: metadata.Uint(32), Offset: -1},
	}}
	file := jen.NewFile("dxgi")
	require.NoError(t, testGenerator(nil).emitStruct(file, &s))

	out := renderFile(t, file)
	assert.Contains(t, out, "type DXGI_SAMPLE_DESC struct {")
	assert.Contains(t, out, "Count   uint32")
	assert.Contains(t, out, "Quality uint32")
}

func TestEmitStructNestedUnion(t *testing.T) {
	s := metadata.Struct{Name: "DXGI_VALUE", Fields: []metadata.Field{
		{Name: "Kind", Type: metadata.Uint(32), Offset: -1},
		{Name: "U", Type: metadata.ValueRef("_Anonymous_e__Union"), Offset: -1, Nested: &metadata.Struct{
			Name: "_Anonymous_e__Union",
			Fields: []metadata.Field{
				{Name: "AsInt", Type: metadata.Int(32), Offset: 0},
				{Name: "AsFloat", Type: metadata.Float(32), Offset: 0},
			},
		}},
	}}
	file := jen.NewFile("dxgi")
	require.NoError(t, testGenerator(nil).emitStruct(file, &s))

	out := renderFile(t, file)
	assert.Contains(t, out, "// union: members overlap at offset 0")
	assert.Contains(t, out, "AsInt   int32")
	assert.Contains(t, out, "AsFloat float32")
}

func TestEmitStructNestedStructAtDistinctOffsets(t *testing.T) {
	s := metadata.Struct{Name: "DXGI_PAIR", Fields: []metadata.Field{
		{Name: "Inner", Type: metadata.ValueRef("_Anonymous_e__Struct"), Offset: -1, Nested: &metadata.Struct{
			Name: "_Anonymous_e__Struct",
			Fields: []metadata.Field{
				{Name: "First", Type: metadata.Int(32), Offset: 0},
				{Name: "Second", Type: metadata.Int(32), Offset: 4},
			},
		}},
	}}
	file := jen.NewFile("dxgi")
	require.NoError(t, testGenerator(nil).emitStruct(file, &s))

	out := renderFile(t, file)
	assert.NotContains(t, out, "union")
	assert.Contains(t, out, "Inner struct {")
}

func TestEmitStructBitfieldGroup(t *testing.T) {
	s := metadata.Struct{Name: "DXGI_FLAGS", Fields: []metadata.Field{
		{Name: "Flags", Type: metadata.Uint(32), Offset: -1, Bitfields: []metadata.Bitfield{
			{Name: "Enable", Offset: 0, Length: 1},
			{Name: "Mode", Offset: 1, Length: 3},
			{Name: "Rest", Offset: 4, Length: 28},
		}},
	}}
	file := jen.NewFile("dxgi")
	require.NoError(t, testGenerator(nil).emitStruct(file, &s))

	out := renderFile(t, file)
	assert.Contains(t, out, "Flags uint32 // bitfields: Enable(0:1) Mode(1:3) Rest(4:28)")
	assert.Contains(t, out, "func (x *DXGI_FLAGS) Enable() uint32 {")
	assert.Contains(t, out, "return (x.Flags >> 0) & 0x1")
	assert.Contains(t, out, "func (x *DXGI_FLAGS) Mode() uint32 {")
	assert.Contains(t, out, "return (x.Flags >> 1) & 0x7")
}

func TestEmitStructBitfieldContiguityViolationIsFatal(t *testing.T) {
	s := metadata.Struct{Name: "BAD", Fields: []metadata.Field{
		{Name: "Flags", Type: metadata.Uint(32), Offset: -1, Bitfields: []metadata.Bitfield{
			{Name: "A", Offset: 0, Length: 1},
			{Name: "B", Offset: 2, Length: 3}, // gap at bit 1
		}},
	}}
	err := testGenerator(nil).emitStruct(jen.NewFile("dxgi"), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contiguous")
}

func TestEmitStructBitfieldOverflowIsFatal(t *testing.T) {
	s := metadata.Struct{Name: "BAD", Fields: []metadata.Field{
		{Name: "Flags", Type: metadata.Uint(16), Offset: -1, Bitfields: []metadata.Bitfield{
			{Name: "A", Offset: 0, Length: 10},
			{Name: "B", Offset: 10, Length: 10},
		}},
	}}
	err := testGenerator(nil).emitStruct(jen.NewFile("dxgi"), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16-bit")
}

func TestEmitStructMultiDimensionalArrayIsFatal(t *testing.T) {
	arr := metadata.FixedArray(metadata.Uint(8), 4)
	arr.ArrayRank = 2
	s := metadata.Struct{Name: "BAD", Fields: []metadata.Field{
		{Name: "Grid", Type: arr, Offset: -1},
	}}
	err := testGenerator(nil).emitStruct(jen.NewFile("dxgi"), &s)
	require.Error(t, err)
}
