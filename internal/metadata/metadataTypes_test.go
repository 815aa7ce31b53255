package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructUnion(t *testing.T) {
	union := Struct{Name: "u", Fields: []Field{
		{Name: "A", Type: Int(32), Offset: 0},
		{Name: "B", Type: Float(32), Offset: 0},
	}}
	assert.True(t, union.Union())

	sequential := Struct{Name: "s", Fields: []Field{
		{Name: "A", Type: Int(32), Offset: 0},
		{Name: "B", Type: Float(32), Offset: 4},
	}}
	assert.False(t, sequential.Union())

	single := Struct{Name: "one", Fields: []Field{
		{Name: "A", Type: Int(32), Offset: 0},
	}}
	assert.False(t, single.Union())
}

func TestStoreChain(t *testing.T) {
	store := &Store{Interfaces: []Interface{
		{Name: "IDXGIObject", Parent: "IUnknown"},
		{Name: "IDXGIAdapter", Parent: "IDXGIObject"},
		{Name: "IDXGIAdapter1", Parent: "IDXGIAdapter"},
	}}

	chain, err := store.Chain("IDXGIAdapter1")
	require.NoError(t, err)
	names := make([]string, len(chain))
	for i, iface := range chain {
		names[i] = iface.Name
	}
	assert.Equal(t, []string{"IDXGIObject", "IDXGIAdapter", "IDXGIAdapter1"}, names)
}

func TestStoreChainUnknownParent(t *testing.T) {
	store := &Store{Interfaces: []Interface{
		{Name: "IDXGIOutput", Parent: "IMissing"},
	}}
	_, err := store.Chain("IDXGIOutput")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMissing")
}

func TestStoreChainUnknownInterface(t *testing.T) {
	store := &Store{}
	_, err := store.Chain("INope")
	require.Error(t, err)
}

func TestImportLibrary(t *testing.T) {
	lib, err := ImportLibrary("CreateDXGIFactory")
	require.NoError(t, err)
	assert.Equal(t, "dxgi.dll", lib)

	lib, err = ImportLibrary("D3D11CreateDevice")
	require.NoError(t, err)
	assert.Equal(t, "d3d11.dll", lib)

	_, err = ImportLibrary("EnumDisplayMonitors")
	require.Error(t, err)
}
