package generation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"godxgen/internal/metadata"
)

// emitConstants writes every global constant, alphabetically. Status codes
// are reinterpreted into the signed HRESULT domain at generation time rather
// than emitted as raw literals; GUID values become composite literals.
func (g *Generator) emitConstants(file *jen.File) error {
	constants := append([]metadata.Constant(nil), g.Store.Constants...)
	sort.Slice(constants, func(i, j int) bool { return constants[i].Name < constants[j].Name })

	for _, c := range constants {
		switch c.Kind {
		case metadata.ConstInt:
			file.Const().Id(c.Name).Op("=").Add(intLit(c.Int, !c.Unsigned))
		case metadata.ConstFloat:
			file.Const().Id(c.Name).Op("=").Lit(c.Float)
		case metadata.ConstStatus:
			file.Const().Id(c.Name).Op("=").Qual(g.PlatformImport, "HRESULT").Call(jen.Lit(int(int32(c.Status))))
		case metadata.ConstGuid:
			file.Var().Id(c.Name).Op("=").Add(g.guidLiteral(c.Guid))
		default:
			return errors.Newf("constant %s has unknown kind %d", c.Name, c.Kind)
		}
	}
	return nil
}

// emitEnum writes one enum as a named integer type plus a const block with
// members in declared order.
func (g *Generator) emitEnum(file *jen.File, e *metadata.Enum) error {
	underlying, err := mapPrimitive(metadata.Type{Kind: metadata.KindPrimitive, Bits: e.Bits, Signed: e.Signed})
	if err != nil {
		return errors.Wrapf(err, "enum %s", e.Name)
	}
	file.Type().Id(e.Name).Add(underlying)
	file.Const().DefsFunc(func(d *jen.Group) {
		for _, m := range e.Members {
			d.Id(enumMemberName(e.Name, m.Name)).Id(e.Name).Op("=").Add(intLit(m.Value, e.Signed))
		}
	})
	return nil
}

// intLit writes an integer as an untyped decimal token. The value keeps its
// full 64-bit range regardless of the build target's int width; unsigned
// values wrapped through int64 are restored on the way out.
func intLit(value int64, signed bool) *jen.Statement {
	if signed {
		return jen.Id(strconv.FormatInt(value, 10))
	}
	return jen.Id(strconv.FormatUint(uint64(value), 10))
}

// enumMemberName strips the redundant enum-name prefix from a member and
// keeps the result a valid identifier.
func enumMemberName(enumName, member string) string {
	name := strings.TrimPrefix(member, enumName+"_")
	if name == "" {
		name = member
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}
