package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godxgen/internal/metadata"
)

func TestVtableNamesRenamesShadowedMethod(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "A", Methods: []metadata.Method{
			{Name: "Get", Return: metadata.ValueRef("HRESULT")},
		}},
		{Name: "B", Parent: "A", Methods: []metadata.Method{
			{Name: "Get", Params: []metadata.Param{{Name: "which", Type: metadata.Uint(32)}}, Return: metadata.ValueRef("HRESULT")},
		}},
	}}
	g := testGenerator(store)

	names, renames, err := g.vtableNames(store.Interface("B"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Get1"}, names)
	require.Len(t, renames, 1)
	assert.Equal(t, "renamed B.Get to Get1", renames[0].String())
}

func TestVtableNamesKeepDeclarationOrderSuffixes(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "P", Methods: []metadata.Method{{Name: "Get"}}},
		{Name: "C", Parent: "P", Methods: []metadata.Method{
			{Name: "Get"},
			{Name: "Get"},
			{Name: "Other"},
		}},
	}}
	g := testGenerator(store)

	names, renames, err := g.vtableNames(store.Interface("C"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Get1", "Get2", "Other"}, names)
	assert.Len(t, renames, 2)
}

func TestVtableNamesSeedPlatformRootMethods(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIObject", Parent: "IUnknown", Methods: []metadata.Method{
			{Name: "Release"},
			{Name: "GetParent"},
		}},
	}}
	g := testGenerator(store)

	names, renames, err := g.vtableNames(store.Interface("IDXGIObject"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Release1", "GetParent"}, names)
	require.Len(t, renames, 1)
	assert.Equal(t, "renamed IDXGIObject.Release to Release1", renames[0].String())
}

func TestVtableNamesRenameOnlyOwnMethods(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "A", Methods: []metadata.Method{{Name: "Get"}}},
		{Name: "B", Parent: "A", Methods: []metadata.Method{{Name: "Get"}}},
		{Name: "D", Parent: "B", Methods: []metadata.Method{{Name: "Get"}, {Name: "Set"}}},
	}}
	g := testGenerator(store)

	// B's Get occupies Get1 in the flattened table, so D's Get takes Get2.
	names, renames, err := g.vtableNames(store.Interface("D"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Get2", "Set"}, names)
	require.Len(t, renames, 1)
	assert.Equal(t, Renamed{Interface: "D", Method: "Get", NewName: "Get2"}, renames[0])
}

func TestVtableNamesUnknownParentIsFatal(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "X", Parent: "IMissing"},
	}}
	_, _, err := testGenerator(store).vtableNames(store.Interface("X"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMissing")
}
