package generation

import (
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godxgen/internal/metadata"
)

// aec22fb8-76f3-4639-9be0-28eb43a67a2e in little-endian wire layout.
var testGuid = [16]byte{
	0xb8, 0x2f, 0xc2, 0xae,
	0xf3, 0x76,
	0x39, 0x46,
	0x9b, 0xe0, 0x28, 0xeb, 0x43, 0xa6, 0x7a, 0x2e,
}

func TestEmitInterfaceGuidLiteral(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIObject", Guid: testGuid, Parent: "IUnknown"},
	}}
	g := testGenerator(store)
	file := jen.NewFile("dxgi")
	_, err := g.emitInterface(file, store.Interface("IDXGIObject"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "var IID_IDXGIObject = platform.GUID{")
	assert.Contains(t, out, "Data1: 0xaec22fb8")
	assert.Contains(t, out, "Data2: 0x76f3")
	assert.Contains(t, out, "Data3: 0x4639")
	assert.Contains(t, out, "Data4: [8]byte{0x9b, 0xe0, 0x28, 0xeb, 0x43, 0xa6, 0x7a, 0x2e}")
}

func TestEmitRootInterfaceCarriesVtablePointer(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IRoot", Guid: testGuid, Methods: []metadata.Method{
			{Name: "Ping", Return: metadata.ValueRef("HRESULT")},
		}},
	}}
	file := jen.NewFile("dxgi")
	_, err := testGenerator(store).emitInterface(file, store.Interface("IRoot"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "LpVtbl *IRootVtbl")
	assert.Contains(t, out, "Ping func(self *IRoot) platform.HRESULT")
}

func TestEmitInterfaceEmbedsParentAndParentVtbl(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIObject", Guid: testGuid, Parent: "IUnknown"},
		{Name: "IDXGIAdapter", Guid: testGuid, Parent: "IDXGIObject", Methods: []metadata.Method{
			{
				Name: "EnumOutputs",
				Params: []metadata.Param{
					{Name: "output", Type: metadata.Uint(32)},
					{Name: "ppOutput", Type: metadata.PtrTo(metadata.InterfaceRef("IDXGIOutput"))},
				},
				Return: metadata.ValueRef("HRESULT"),
			},
		}},
	}}
	file := jen.NewFile("dxgi")
	_, err := testGenerator(store).emitInterface(file, store.Interface("IDXGIAdapter"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "type IDXGIAdapter struct {\n\tIDXGIObject\n}")
	assert.Contains(t, out, "type IDXGIAdapterVtbl struct {")
	assert.Contains(t, out, "IDXGIObjectVtbl")
	assert.Contains(t, out, "EnumOutputs func(self *IDXGIAdapter, output uint32, ppOutput **IDXGIOutput) platform.HRESULT")
}

func TestEmitPlatformRootedInterfaceQualifiesParent(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIObject", Guid: testGuid, Parent: "IUnknown"},
	}}
	file := jen.NewFile("dxgi")
	_, err := testGenerator(store).emitInterface(file, store.Interface("IDXGIObject"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "type IDXGIObject struct {\n\tplatform.IUnknown\n}")
	assert.Contains(t, out, "platform.IUnknownVtbl")
}

func TestEmitInterfaceAppliesReturnFixup(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIOutput", Guid: testGuid, Methods: []metadata.Method{
			{Name: "GetDesc", Return: metadata.ValueRef("DXGI_OUTPUT_DESC")},
		}},
	}}
	file := jen.NewFile("dxgi")
	_, err := testGenerator(store).emitInterface(file, store.Interface("IDXGIOutput"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "GetDesc func(self *IDXGIOutput, out *DXGI_OUTPUT_DESC)")
	assert.NotContains(t, out, ") DXGI_OUTPUT_DESC")
}

func TestEmitInterfaceFixupWithParametersIsFatal(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "IDXGIOutput", Guid: testGuid, Methods: []metadata.Method{
			{
				Name:   "GetDesc",
				Params: []metadata.Param{{Name: "which", Type: metadata.Uint(32)}},
				Return: metadata.ValueRef("DXGI_OUTPUT_DESC"),
			},
		}},
	}}
	_, err := testGenerator(store).emitInterface(jen.NewFile("dxgi"), store.Interface("IDXGIOutput"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be rewritten")
}

func TestEmitInterfaceRenamedSlotInVtable(t *testing.T) {
	store := &metadata.Store{Interfaces: []metadata.Interface{
		{Name: "A", Guid: testGuid, Methods: []metadata.Method{
			{Name: "Get", Return: metadata.ValueRef("HRESULT")},
		}},
		{Name: "B", Guid: testGuid, Parent: "A", Methods: []metadata.Method{
			{Name: "Get", Params: []metadata.Param{{Name: "v", Type: metadata.Uint(32)}}, Return: metadata.ValueRef("HRESULT")},
		}},
	}}
	file := jen.NewFile("dxgi")
	renames, err := testGenerator(store).emitInterface(file, store.Interface("B"))
	require.NoError(t, err)

	out := renderFile(t, file)
	assert.Contains(t, out, "AVtbl")
	assert.Contains(t, out, "Get1 func(self *B, v uint32) platform.HRESULT")
	require.Len(t, renames, 1)
	assert.Equal(t, "renamed B.Get to Get1", renames[0].String())
}

func TestEmitDelegate(t *testing.T) {
	d := metadata.Delegate{
		Name: "DXGI_DEBUG_CALLBACK",
		Params: []metadata.Param{
			{Name: "severity", Type: metadata.Uint(32)},
			{Name: "context", Type: metadata.PtrTo(metadata.Void())},
		},
		Return: metadata.Void(),
	}
	file := jen.NewFile("dxgi")
	require.NoError(t, testGenerator(nil).emitDelegate(file, &d))

	out := renderFile(t, file)
	assert.Contains(t, out, "type DXGI_DEBUG_CALLBACK func(severity uint32, context unsafe.Pointer)")
}
