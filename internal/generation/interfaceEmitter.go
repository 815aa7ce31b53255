package generation

import (
	"encoding/binary"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"godxgen/internal/metadata"
)

// emitInterface writes one COM interface: its identity GUID in the canonical
// wire layout, an interface struct embedding its parent, and a flattened
// vtable type embedding the parent vtable followed by one typed slot per own
// method.
func (g *Generator) emitInterface(file *jen.File, iface *metadata.Interface) ([]Renamed, error) {
	file.Var().Id("IID_" + iface.Name).Op("=").Add(g.guidLiteral(iface.Guid))

	if iface.Parent == "" {
		file.Type().Id(iface.Name).Struct(
			jen.Id("LpVtbl").Op("*").Id(iface.Name + "Vtbl"),
		)
	} else {
		parent, err := g.interfaceRef(iface.Parent)
		if err != nil {
			return nil, errors.Wrapf(err, "interface %s", iface.Name)
		}
		file.Type().Id(iface.Name).Struct(parent)
	}

	names, renames, err := g.vtableNames(iface)
	if err != nil {
		return nil, err
	}

	var slots []jen.Code
	if iface.Parent != "" {
		parentVtbl, err := g.interfaceRef(iface.Parent + "Vtbl")
		if err != nil {
			return nil, errors.Wrapf(err, "interface %s", iface.Name)
		}
		slots = append(slots, parentVtbl)
	}
	for i, m := range iface.Methods {
		sig, err := g.slotSignature(iface.Name, m)
		if err != nil {
			return nil, err
		}
		slots = append(slots, jen.Id(names[i]).Add(sig))
	}
	file.Type().Id(iface.Name + "Vtbl").Struct(slots...)
	return renames, nil
}

// interfaceRef names an interface-owned identifier, qualifying it into the
// platform package when the interface is not generated here. The Vtbl suffix
// rides along unchanged.
func (g *Generator) interfaceRef(name string) (*jen.Statement, error) {
	base, _ := strings.CutSuffix(name, "Vtbl")
	if g.Store.Interface(base) != nil {
		return jen.Id(name), nil
	}
	if _, ok := metadata.PlatformRootMethods[base]; ok {
		return jen.Qual(g.PlatformImport, name), nil
	}
	return nil, errors.Newf("unknown parent interface %s", base)
}

// slotSignature builds the function-pointer type of one vtable slot: the
// receiving interface pointer first, the method's own parameters next, and
// the fixup out parameter last when the return type demands it. Slots use
// the stdcall convention, which the Go type cannot carry; the generated
// preamble states it once.
func (g *Generator) slotSignature(owner string, m metadata.Method) (*jen.Statement, error) {
	if needsReturnFixup(m.Return) {
		fixed, err := applyReturnFixup(owner, m)
		if err != nil {
			return nil, err
		}
		m = fixed
	}

	params := []jen.Code{jen.Id("self").Op("*").Id(owner)}
	for _, p := range m.Params {
		mapped, err := g.mapType(p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s.%s parameter %s", owner, m.Name, p.Name)
		}
		params = append(params, jen.Id(paramName(p.Name)).Add(mapped))
	}

	sig := jen.Func().Params(params...)
	ret, err := g.mapType(m.Return)
	if err != nil {
		return nil, errors.Wrapf(err, "method %s.%s return type", owner, m.Name)
	}
	if ret != nil {
		sig.Add(ret)
	}
	return sig, nil
}

// emitDelegate writes one standalone function-pointer type.
func (g *Generator) emitDelegate(file *jen.File, d *metadata.Delegate) error {
	var params []jen.Code
	for _, p := range d.Params {
		mapped, err := g.mapType(p.Type)
		if err != nil {
			return errors.Wrapf(err, "delegate %s parameter %s", d.Name, p.Name)
		}
		params = append(params, jen.Id(paramName(p.Name)).Add(mapped))
	}
	decl := file.Type().Id(d.Name).Func().Params(params...)
	ret, err := g.mapType(d.Return)
	if err != nil {
		return errors.Wrapf(err, "delegate %s return type", d.Name)
	}
	if ret != nil {
		decl.Add(ret)
	}
	return nil
}

// guidLiteral renders a 16-byte COM identity as a composite literal matching
// the canonical wire layout: one 32-bit field, two 16-bit fields, eight
// bytes.
func (g *Generator) guidLiteral(guid [16]byte) *jen.Statement {
	data4 := make([]jen.Code, 8)
	for i, b := range guid[8:16] {
		data4[i] = hexLit(uint64(b), 2)
	}
	return jen.Qual(g.PlatformImport, "GUID").Values(jen.Dict{
		jen.Id("Data1"): hexLit(uint64(binary.LittleEndian.Uint32(guid[0:4])), 8),
		jen.Id("Data2"): hexLit(uint64(binary.LittleEndian.Uint16(guid[4:6])), 4),
		jen.Id("Data3"): hexLit(uint64(binary.LittleEndian.Uint16(guid[6:8])), 4),
		jen.Id("Data4"): jen.Index(jen.Lit(8)).Byte().Values(data4...),
	})
}
