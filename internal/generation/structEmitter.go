package generation

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"godxgen/internal/metadata"
)

// emitStruct writes one struct declaration with fields in declared order,
// then one getter per packed bitfield member of its direct fields.
func (g *Generator) emitStruct(file *jen.File, s *metadata.Struct) error {
	fields, err := g.structFields(s.Name, s)
	if err != nil {
		return err
	}
	file.Type().Id(s.Name).Struct(fields...)

	for _, f := range s.Fields {
		if len(f.Bitfields) == 0 {
			continue
		}
		if err := g.emitBitfieldGetters(file, s.Name, f); err != nil {
			return err
		}
	}
	return nil
}

// structFields lowers a field list. Inline nested bodies become anonymous
// structs; a nested body whose members all share offset 0 is a union and is
// marked as overlapping storage, since Go cannot express the overlap itself.
func (g *Generator) structFields(owner string, s *metadata.Struct) ([]jen.Code, error) {
	var out []jen.Code
	for _, f := range s.Fields {
		switch {
		case f.Nested != nil:
			inner, err := g.structFields(owner+"."+f.Name, f.Nested)
			if err != nil {
				return nil, err
			}
			if f.Nested.Union() {
				out = append(out, jen.Comment("union: members overlap at offset 0"))
			}
			out = append(out, jen.Id(f.Name).Struct(inner...))
		case len(f.Bitfields) > 0:
			if err := checkBitfields(owner, f); err != nil {
				return nil, err
			}
			storage, err := g.mapType(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s.%s", owner, f.Name)
			}
			out = append(out, jen.Id(f.Name).Add(storage).Comment(bitfieldComment(f)))
		default:
			mapped, err := g.mapType(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s.%s", owner, f.Name)
			}
			out = append(out, jen.Id(f.Name).Add(mapped))
		}
	}
	return out, nil
}

// checkBitfields enforces the group invariants: an integer storage field,
// offsets forming a contiguous sequence from 0, and a total width within the
// field's declared width. A violation means padding the generator does not
// understand or a corrupt metadata read, so it aborts generation.
func checkBitfields(owner string, f metadata.Field) error {
	if f.Type.Kind != metadata.KindPrimitive || f.Type.Float || f.Type.Bits == 0 {
		return errors.Newf("%s.%s: bitfield group needs a fixed-width integer field", owner, f.Name)
	}
	total := 0
	for _, b := range f.Bitfields {
		if b.Length <= 0 {
			return errors.Newf("%s.%s: bitfield %s has width %d", owner, f.Name, b.Name, b.Length)
		}
		if b.Offset != total {
			return errors.Newf("%s.%s: bitfield %s at bit %d, expected %d (group must be contiguous)",
				owner, f.Name, b.Name, b.Offset, total)
		}
		total += b.Length
		if total > f.Type.Bits {
			return errors.Newf("%s.%s: bitfields span %d bits in a %d-bit field",
				owner, f.Name, total, f.Type.Bits)
		}
	}
	return nil
}

func bitfieldComment(f metadata.Field) string {
	parts := make([]string, len(f.Bitfields))
	for i, b := range f.Bitfields {
		parts[i] = fmt.Sprintf("%s(%d:%d)", b.Name, b.Offset, b.Length)
	}
	return "bitfields: " + strings.Join(parts, " ")
}

// emitBitfieldGetters writes a shift-and-mask getter per packed member.
func (g *Generator) emitBitfieldGetters(file *jen.File, structName string, f metadata.Field) error {
	storage, err := g.mapType(f.Type)
	if err != nil {
		return errors.Wrapf(err, "field %s.%s", structName, f.Name)
	}
	for _, b := range f.Bitfields {
		mask := uint64(1)<<b.Length - 1
		file.Func().
			Params(jen.Id("x").Op("*").Id(structName)).
			Id(b.Name).
			Params().
			Add(storage.Clone()).
			Block(jen.Return(
				jen.Parens(jen.Id("x").Dot(f.Name).Op(">>").Lit(b.Offset)).
					Op("&").Add(hexLit(mask, (b.Length+3)/4)),
			))
	}
	return nil
}
