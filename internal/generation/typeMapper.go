// Package generation turns a decoded metadata store into Go binding
// declarations.
package generation

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"godxgen/internal/metadata"
)

// platformTypes are well-known names defined by hand in the platform package
// instead of being regenerated: opaque handles, base COM types, geometric
// primitives, and the legacy font descriptor.
var platformTypes = map[string]bool{
	"BOOL":                true,
	"GUID":                true,
	"HANDLE":              true,
	"HDC":                 true,
	"HMODULE":             true,
	"HMONITOR":            true,
	"HRESULT":             true,
	"HWND":                true,
	"IUnknown":            true,
	"LARGE_INTEGER":       true,
	"LOGFONTW":            true,
	"LUID":                true,
	"POINT":               true,
	"RECT":                true,
	"SECURITY_ATTRIBUTES": true,
	"SIZE":                true,
}

// d2dPrefixes is the redirected foreign-API prefix family: names carrying
// one of these prefixes resolve into the sibling Direct2D bindings package
// with the prefix stripped.
var d2dPrefixes = []string{"D2D1_", "D2D_"}

// mapType converts a metadata type reference into a Go type expression.
// A nil result with a nil error is the "no declared type" marker used to
// omit return types. Every input outside the rule set is a fatal mapping
// error: silently guessing a type would corrupt the layout contract the
// generated bindings promise.
func (g *Generator) mapType(t metadata.Type) (*jen.Statement, error) {
	switch t.Kind {
	case metadata.KindVoid:
		return nil, nil
	case metadata.KindGuid:
		return jen.Qual(g.PlatformImport, "GUID"), nil
	case metadata.KindPrimitive:
		return mapPrimitive(t)
	case metadata.KindPointer:
		if t.Elem.Kind == metadata.KindVoid {
			return jen.Qual("unsafe", "Pointer"), nil
		}
		inner, err := g.mapType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(inner), nil
	case metadata.KindArray:
		if t.ArrayRank != 1 || t.ArrayLower != 0 {
			return nil, errors.Newf("unsupported array shape: rank %d, lower bound %d", t.ArrayRank, t.ArrayLower)
		}
		elem, err := g.mapType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Index(jen.Lit(int(t.ArrayLen))).Add(elem), nil
	case metadata.KindValueType:
		return g.mapNamed(t.Name, false)
	case metadata.KindInterface:
		return g.mapNamed(t.Name, true)
	}
	return nil, errors.Newf("unmapped metadata type kind %d", t.Kind)
}

// mapNamed resolves a named type reference. Interface references are always
// wrapped as pointer-to-name: COM interface instances are referenced, never
// held by value.
func (g *Generator) mapNamed(name string, iface bool) (*jen.Statement, error) {
	var expr *jen.Statement
	switch {
	case name == "PSTR":
		return jen.Op("*").Uint8(), nil
	case name == "PWSTR":
		return jen.Op("*").Uint16(), nil
	case platformTypes[name]:
		expr = jen.Qual(g.PlatformImport, name)
	default:
		if stripped, ok := d2dName(name); ok {
			expr = jen.Qual(g.D2DImport, stripped)
		} else {
			expr = jen.Id(name)
		}
	}
	if iface {
		return jen.Op("*").Add(expr), nil
	}
	return expr, nil
}

func d2dName(name string) (string, bool) {
	for _, prefix := range d2dPrefixes {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix), true
		}
	}
	return "", false
}

func mapPrimitive(t metadata.Type) (*jen.Statement, error) {
	if t.Float {
		switch t.Bits {
		case 32:
			return jen.Float32(), nil
		case 64:
			return jen.Float64(), nil
		}
		return nil, errors.Newf("unmapped %d-bit floating primitive", t.Bits)
	}
	if t.Bits == 0 {
		// Pointer-sized native integer.
		return jen.Uintptr(), nil
	}
	switch t.Bits {
	case 8:
		if t.Signed {
			return jen.Int8(), nil
		}
		return jen.Uint8(), nil
	case 16:
		if t.Signed {
			return jen.Int16(), nil
		}
		return jen.Uint16(), nil
	case 32:
		if t.Signed {
			return jen.Int32(), nil
		}
		return jen.Uint32(), nil
	case 64:
		if t.Signed {
			return jen.Int64(), nil
		}
		return jen.Uint64(), nil
	}
	return nil, errors.Newf("unmapped %d-bit integer primitive", t.Bits)
}

// paramName keeps metadata parameter names out of Go's reserved word set and
// clear of the generated receiver parameter.
func paramName(name string) string {
	if name == "" {
		return "_"
	}
	if name == "self" || token.Lookup(name).IsKeyword() {
		return name + "_"
	}
	return name
}

// hexLit writes an integer as a hexadecimal token of the given nibble width.
func hexLit(value uint64, nibbles int) *jen.Statement {
	return jen.Id(fmt.Sprintf("%#0*x", nibbles+2, value))
}
