package generation

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"

	"godxgen/internal/metadata"
)

// Generator drives a single deterministic emission pass over a store.
// Collections are emitted alphabetically; members keep declaration order.
// The pass either completes or fails on the first error — there is no
// partial output.
type Generator struct {
	Store          *metadata.Store
	PackageName    string
	PlatformImport string
	D2DImport      string
}

func NewGenerator(store *metadata.Store, packageName string) *Generator {
	return &Generator{
		Store:          store,
		PackageName:    packageName,
		PlatformImport: "godxgen/platform",
		D2DImport:      "godxgen/d2d1",
	}
}

// Generate emits the whole binding file: preamble, FFI blocks, constants,
// function-pointer types, enums, structs, interfaces. The returned renames
// are the only non-fatal diagnostics of the pass.
func (g *Generator) Generate() (*jen.File, []Renamed, error) {
	file := jen.NewFile(g.PackageName)
	file.HeaderComment("Code generated by godxgen. DO NOT EDIT.")
	g.emitPreamble(file)

	if err := g.emitFunctions(file); err != nil {
		return nil, nil, err
	}
	if err := g.emitConstants(file); err != nil {
		return nil, nil, err
	}

	delegates := append([]metadata.Delegate(nil), g.Store.Delegates...)
	sort.Slice(delegates, func(i, j int) bool { return delegates[i].Name < delegates[j].Name })
	for i := range delegates {
		if err := g.emitDelegate(file, &delegates[i]); err != nil {
			return nil, nil, err
		}
	}

	enums := append([]metadata.Enum(nil), g.Store.Enums...)
	sort.Slice(enums, func(i, j int) bool { return enums[i].Name < enums[j].Name })
	for i := range enums {
		if err := g.emitEnum(file, &enums[i]); err != nil {
			return nil, nil, err
		}
	}

	structs := append([]metadata.Struct(nil), g.Store.Structs...)
	sort.Slice(structs, func(i, j int) bool { return structs[i].Name < structs[j].Name })
	for i := range structs {
		if err := g.emitStruct(file, &structs[i]); err != nil {
			return nil, nil, err
		}
	}

	interfaces := append([]metadata.Interface(nil), g.Store.Interfaces...)
	sort.Slice(interfaces, func(i, j int) bool { return interfaces[i].Name < interfaces[j].Name })
	var renames []Renamed
	for i := range interfaces {
		r, err := g.emitInterface(file, &interfaces[i])
		if err != nil {
			return nil, nil, err
		}
		renames = append(renames, r...)
	}
	return file, renames, nil
}

// emitPreamble writes the fixed manual type overrides: metadata shapes the
// generated namespace refers to but does not declare itself.
func (g *Generator) emitPreamble(file *jen.File) {
	file.Comment("Vtable slots and proc wrappers use the stdcall calling convention.")
	file.Type().Id("DXGI_USAGE").Op("=").Uint32()
	file.Type().Id("DXGI_DEBUG_ID").Op("=").Qual(g.PlatformImport, "GUID")
}

// emitFunctions writes one var block per import library (lazy DLL handle
// plus one proc per function) followed by a typed wrapper per function.
func (g *Generator) emitFunctions(file *jen.File) error {
	if len(g.Store.Functions) == 0 {
		return nil
	}
	byLib := make(map[string][]metadata.Function)
	for _, fn := range g.Store.Functions {
		byLib[fn.ImportLib] = append(byLib[fn.ImportLib], fn)
	}
	libs := make([]string, 0, len(byLib))
	for lib := range byLib {
		libs = append(libs, lib)
	}
	sort.Strings(libs)

	for _, lib := range libs {
		fns := byLib[lib]
		sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
		mod := modVarName(lib)
		file.Var().DefsFunc(func(d *jen.Group) {
			d.Id(mod).Op("=").Qual("syscall", "NewLazyDLL").Call(jen.Lit(lib))
			for _, fn := range fns {
				d.Id("proc" + fn.Name).Op("=").Id(mod).Dot("NewProc").Call(jen.Lit(fn.Name))
			}
		})
		for _, fn := range fns {
			if err := g.emitFunctionWrapper(file, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func modVarName(lib string) string {
	return "mod" + strings.ToUpper(strings.TrimSuffix(lib, ".dll"))
}

func (g *Generator) emitFunctionWrapper(file *jen.File, fn metadata.Function) error {
	var params, args []jen.Code
	for _, p := range fn.Params {
		mapped, err := g.mapType(p.Type)
		if err != nil {
			return errors.Wrapf(err, "function %s parameter %s", fn.Name, p.Name)
		}
		name := paramName(p.Name)
		params = append(params, jen.Id(name).Add(mapped))
		arg, err := callArg(p.Type, name)
		if err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
		args = append(args, arg)
	}

	ret, err := g.mapType(fn.Return)
	if err != nil {
		return errors.Wrapf(err, "function %s return type", fn.Name)
	}
	var retCast *jen.Statement
	if ret != nil {
		retCast, err = returnCast(fn.Return, ret.Clone())
		if err != nil {
			return errors.Wrapf(err, "function %s", fn.Name)
		}
	}

	decl := file.Func().Id(fn.Name).Params(params...)
	if ret != nil {
		decl.Add(ret)
	}
	decl.BlockFunc(func(b *jen.Group) {
		call := jen.Id("proc" + fn.Name).Dot("Call").Call(args...)
		if retCast == nil {
			b.Add(call)
			return
		}
		b.List(jen.Id("r1"), jen.Id("_"), jen.Id("_")).Op(":=").Add(call)
		b.Return(retCast)
	})
	return nil
}

// callArg lowers one wrapper parameter into the uintptr a proc call takes.
// Aggregates passed by value have no safe lowering and abort generation.
func callArg(t metadata.Type, name string) (*jen.Statement, error) {
	if pointerShaped(t) {
		return jen.Uintptr().Call(jen.Qual("unsafe", "Pointer").Call(jen.Id(name))), nil
	}
	switch t.Kind {
	case metadata.KindPrimitive:
		if t.Float {
			return nil, errors.Newf("parameter %s: floating-point proc arguments are unsupported", name)
		}
		return jen.Uintptr().Call(jen.Id(name)), nil
	case metadata.KindValueType:
		if t.Enum || byValueReturns[t.Name] {
			return jen.Uintptr().Call(jen.Id(name)), nil
		}
	}
	return nil, errors.Newf("parameter %s: cannot pass %s by value through a proc call", name, t.Name)
}

// returnCast lowers the primary return register into the declared return
// type.
func returnCast(t metadata.Type, mapped *jen.Statement) (*jen.Statement, error) {
	if pointerShaped(t) {
		return jen.Parens(mapped).Call(jen.Qual("unsafe", "Pointer").Call(jen.Id("r1"))), nil
	}
	switch t.Kind {
	case metadata.KindPrimitive:
		if t.Float {
			return nil, errors.New("floating-point proc returns are unsupported")
		}
		return mapped.Call(jen.Id("r1")), nil
	case metadata.KindValueType:
		if t.Enum || byValueReturns[t.Name] {
			return mapped.Call(jen.Id("r1")), nil
		}
	}
	return nil, errors.Newf("cannot return %s by value from a proc call", t.Name)
}

func pointerShaped(t metadata.Type) bool {
	switch t.Kind {
	case metadata.KindPointer, metadata.KindInterface:
		return true
	case metadata.KindValueType:
		return t.Name == "PSTR" || t.Name == "PWSTR"
	}
	return false
}
