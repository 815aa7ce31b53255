package metadata

import (
	"debug/pe"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/microsoft/go-winmd"
	"github.com/microsoft/go-winmd/coded"
	"github.com/microsoft/go-winmd/flags"
)

// DefaultNamespaces is the allow-list of namespaces making up the DXGI
// surface.
var DefaultNamespaces = []string{
	"Windows.Win32.Graphics.Dxgi",
	"Windows.Win32.Graphics.Dxgi.Common",
}

type typeShape int

const (
	shapeApis typeShape = iota
	shapeEnum
	shapeDelegate
	shapeStruct
	shapeInterface
)

// WinMdReader decodes a WinMD file into a Store, keeping only type
// definitions from the namespace allow-list.
type WinMdReader struct {
	metadata   winmd.Metadata
	namespaces map[string]bool

	shapes    map[string]typeShape
	nested    map[winmd.Index]map[string]winmd.Index
	nestedSet map[winmd.Index]bool
	offsets   map[winmd.Index]uint32
	constants map[winmd.Index][]byte
}

// NewReader opens the PE-wrapped metadata file under the given path.
func NewReader(winMdPath string, namespaces []string) (*WinMdReader, error) {
	peFile, err := pe.Open(winMdPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening metadata file %s", winMdPath)
	}
	defer peFile.Close()

	md, err := winmd.New(peFile)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding metadata file %s", winMdPath)
	}

	reader := &WinMdReader{
		metadata:   *md,
		namespaces: make(map[string]bool, len(namespaces)),
	}
	for _, ns := range namespaces {
		reader.namespaces[ns] = true
	}
	if err := reader.indexTables(); err != nil {
		return nil, err
	}
	return reader, nil
}

// indexTables builds row-keyed lookups for the side tables consulted while
// decoding: nesting, explicit field layout, and constant values.
func (r *WinMdReader) indexTables() error {
	r.nested = make(map[winmd.Index]map[string]winmd.Index)
	r.nestedSet = make(map[winmd.Index]bool)
	for i := uint32(0); i < r.metadata.Tables.NestedClass.Len; i++ {
		row, err := r.metadata.Tables.NestedClass.Record(winmd.Index(i))
		if err != nil {
			return errors.Wrap(err, "reading NestedClass table")
		}
		child, err := r.metadata.Tables.TypeDef.Record(row.NestedClass)
		if err != nil {
			return errors.Wrap(err, "resolving nested type definition")
		}
		if r.nested[row.EnclosingClass] == nil {
			r.nested[row.EnclosingClass] = make(map[string]winmd.Index)
		}
		r.nested[row.EnclosingClass][child.Name.String()] = row.NestedClass
		r.nestedSet[row.NestedClass] = true
	}

	r.offsets = make(map[winmd.Index]uint32)
	for i := uint32(0); i < r.metadata.Tables.FieldLayout.Len; i++ {
		row, err := r.metadata.Tables.FieldLayout.Record(winmd.Index(i))
		if err != nil {
			return errors.Wrap(err, "reading FieldLayout table")
		}
		r.offsets[row.Field] = row.Offset
	}

	r.constants = make(map[winmd.Index][]byte)
	for i := uint32(0); i < r.metadata.Tables.Constant.Len; i++ {
		row, err := r.metadata.Tables.Constant.Record(winmd.Index(i))
		if err != nil {
			return errors.Wrap(err, "reading Constant table")
		}
		// Only field constants matter here; Param and Property parents
		// share the same row-number space and must not collide into it.
		if row.Parent.Tag != coded.HasConstant_Field {
			continue
		}
		r.constants[row.Parent.Index] = row.Value
	}
	return nil
}

// ReadStore partitions every allow-listed type definition by shape and
// decodes it. A definition matching none of the recognized shapes aborts the
// read: the input format is assumed exhaustive, so an unknown shape means a
// schema change or a corrupt read.
func (r *WinMdReader) ReadStore() (*Store, error) {
	table := r.metadata.Tables.TypeDef

	r.shapes = make(map[string]typeShape)
	for i := uint32(0); i < table.Len; i++ {
		td, err := table.Record(winmd.Index(i))
		if err != nil {
			return nil, errors.Wrap(err, "reading TypeDef table")
		}
		if td.Name.String() == "<Module>" || !r.namespaces[td.Namespace.String()] {
			continue
		}
		shape, err := r.classify(td)
		if err != nil {
			return nil, err
		}
		r.shapes[td.Name.String()] = shape
	}

	store := &Store{}
	for i := uint32(0); i < table.Len; i++ {
		idx := winmd.Index(i)
		td, err := table.Record(idx)
		if err != nil {
			return nil, errors.Wrap(err, "reading TypeDef table")
		}
		name := td.Name.String()
		if name == "<Module>" || !r.namespaces[td.Namespace.String()] {
			continue
		}
		if r.nestedSet[idx] {
			continue // decoded inline with its enclosing struct
		}
		switch r.shapes[name] {
		case shapeApis:
			if err := r.decodeApis(store, td); err != nil {
				return nil, err
			}
		case shapeEnum:
			enum, err := r.decodeEnum(td)
			if err != nil {
				return nil, err
			}
			store.Enums = append(store.Enums, *enum)
		case shapeDelegate:
			delegate, err := r.decodeDelegate(td)
			if err != nil {
				return nil, err
			}
			store.Delegates = append(store.Delegates, *delegate)
		case shapeStruct:
			s, err := r.decodeStruct(td, idx)
			if err != nil {
				return nil, err
			}
			store.Structs = append(store.Structs, *s)
		case shapeInterface:
			iface, err := r.decodeInterface(td, idx)
			if err != nil {
				return nil, err
			}
			store.Interfaces = append(store.Interfaces, *iface)
		}
	}
	return store, nil
}

func (r *WinMdReader) classify(td *winmd.TypeDef) (typeShape, error) {
	if td.Name.String() == "Apis" {
		return shapeApis, nil
	}
	base, err := r.extendsName(td)
	if err != nil {
		return 0, err
	}
	switch base {
	case "":
		return shapeInterface, nil
	case "System.Enum":
		return shapeEnum, nil
	case "System.MulticastDelegate":
		return shapeDelegate, nil
	case "System.ValueType":
		return shapeStruct, nil
	}
	return 0, errors.Newf("type %s.%s: unrecognized metadata shape (extends %s)",
		td.Namespace.String(), td.Name.String(), base)
}

func (r *WinMdReader) extendsName(td *winmd.TypeDef) (string, error) {
	if nullRef(td.Extends) {
		return "", nil
	}
	namespace, name, err := r.typeDefOrRefName(td.Extends)
	if err != nil {
		return "", errors.Wrapf(err, "resolving base type of %s", td.Name.String())
	}
	return fmt.Sprintf("%s.%s", namespace, name), nil
}

// nullRef reports whether a coded index is the null reference. Row 0 is a
// valid row in every table, so null is carried by the tag alone.
func nullRef(ref winmd.CodedIndex) bool {
	return ref.Tag == coded.Null
}

// typeDefOrRefName resolves a TypeDefOrRef coded index into its namespace
// and name, reading whichever table the tag selects. Types declared in this
// metadata file arrive TypeDef-tagged, imported ones TypeRef-tagged.
func (r *WinMdReader) typeDefOrRefName(ref winmd.CodedIndex) (string, string, error) {
	switch ref.Tag {
	case coded.TypeDefOrRef_TypeDef:
		td, err := r.metadata.Tables.TypeDef.Record(ref.Index)
		if err != nil {
			return "", "", errors.Wrap(err, "resolving type definition reference")
		}
		return td.Namespace.String(), td.Name.String(), nil
	case coded.TypeDefOrRef_TypeRef:
		tr, err := r.metadata.Tables.TypeRef.Record(ref.Index)
		if err != nil {
			return "", "", errors.Wrap(err, "resolving type reference")
		}
		return tr.Namespace.String(), tr.Name.String(), nil
	}
	return "", "", errors.Newf("unsupported type reference tag %d", ref.Tag)
}

// convertType turns a signature type into a model type. The dispatch is a
// closed classification: element kinds outside it abort decoding.
func (r *WinMdReader) convertType(sig winmd.SigType) (Type, error) {
	switch sig.Kind {
	case flags.ElementType_VOID:
		return Void(), nil
	case flags.ElementType_BOOLEAN:
		return Uint(8), nil
	case flags.ElementType_CHAR:
		return Uint(16), nil
	case flags.ElementType_I1:
		return Int(8), nil
	case flags.ElementType_U1:
		return Uint(8), nil
	case flags.ElementType_I2:
		return Int(16), nil
	case flags.ElementType_U2:
		return Uint(16), nil
	case flags.ElementType_I4:
		return Int(32), nil
	case flags.ElementType_U4:
		return Uint(32), nil
	case flags.ElementType_I8:
		return Int(64), nil
	case flags.ElementType_U8:
		return Uint(64), nil
	case flags.ElementType_R4:
		return Float(32), nil
	case flags.ElementType_R8:
		return Float(64), nil
	case flags.ElementType_I:
		return Type{Kind: KindPrimitive, Signed: true}, nil
	case flags.ElementType_U:
		return Type{Kind: KindPrimitive}, nil
	case flags.ElementType_PTR:
		inner, ok := sig.Value.(winmd.SigType)
		if !ok {
			return Type{}, errors.New("pointer signature with unsupported pointee shape")
		}
		elem, err := r.convertType(inner)
		if err != nil {
			return Type{}, err
		}
		return PtrTo(elem), nil
	case flags.ElementType_ARRAY:
		// The reader API does not surface array extents; refusing is safer
		// than emitting a layout-breaking guess.
		return Type{}, errors.New("array signature extents are not decodable from this reader")
	case flags.ElementType_VALUETYPE, flags.ElementType_CLASS:
		return r.convertNamed(sig)
	}
	return Type{}, errors.Newf("unmapped element type %#x", uint8(sig.Kind))
}

func (r *WinMdReader) convertNamed(sig winmd.SigType) (Type, error) {
	ref, ok := sig.Value.(winmd.CodedIndex)
	if !ok {
		return Type{}, errors.New("named signature type without a type reference")
	}
	namespace, name, err := r.typeDefOrRefName(ref)
	if err != nil {
		return Type{}, errors.Wrap(err, "resolving signature type reference")
	}
	if namespace == "System" && name == "Guid" {
		return GuidType(), nil
	}
	if shape, ok := r.shapes[name]; ok {
		switch shape {
		case shapeInterface:
			return InterfaceRef(name), nil
		case shapeEnum:
			return EnumRef(name), nil
		}
		return ValueRef(name), nil
	}
	if _, ok := PlatformRootMethods[name]; ok {
		return InterfaceRef(name), nil
	}
	return ValueRef(name), nil
}

func (r *WinMdReader) decodeStruct(td *winmd.TypeDef, idx winmd.Index) (*Struct, error) {
	s := &Struct{Name: td.Name.String()}
	children := r.nested[idx]
	for i := td.FieldList.Start; i < td.FieldList.End; i++ {
		rec, err := r.metadata.Tables.Field.Record(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading fields of %s", s.Name)
		}
		sig, err := r.metadata.FieldSignature(rec.Signature)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding field signature %s.%s", s.Name, rec.Name.String())
		}
		fieldType, err := r.convertType(sig.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", s.Name, rec.Name.String())
		}

		field := Field{Name: rec.Name.String(), Type: fieldType, Offset: -1}
		if off, ok := r.offsets[i]; ok {
			field.Offset = int(off)
		}
		if childIdx, ok := children[fieldType.Name]; ok && fieldType.Kind == KindValueType {
			childTd, err := r.metadata.Tables.TypeDef.Record(childIdx)
			if err != nil {
				return nil, errors.Wrapf(err, "resolving nested type of %s", s.Name)
			}
			field.Nested, err = r.decodeStruct(childTd, childIdx)
			if err != nil {
				return nil, err
			}
		}
		field.Bitfields, err = r.fieldBitfields(i)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", s.Name, rec.Name.String())
		}
		s.Fields = append(s.Fields, field)
	}
	return s, nil
}

func (r *WinMdReader) decodeEnum(td *winmd.TypeDef) (*Enum, error) {
	enum := &Enum{Name: td.Name.String()}
	for i := td.FieldList.Start; i < td.FieldList.End; i++ {
		rec, err := r.metadata.Tables.Field.Record(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading members of %s", enum.Name)
		}
		name := rec.Name.String()
		if name == "value__" {
			sig, err := r.metadata.FieldSignature(rec.Signature)
			if err != nil {
				return nil, errors.Wrapf(err, "decoding underlying type of %s", enum.Name)
			}
			underlying, err := r.convertType(sig.Type)
			if err != nil {
				return nil, err
			}
			if underlying.Kind != KindPrimitive || underlying.Float {
				return nil, errors.Newf("enum %s: non-integer underlying type", enum.Name)
			}
			enum.Bits, enum.Signed = underlying.Bits, underlying.Signed
			continue
		}
		blob, ok := r.constants[i]
		if !ok {
			return nil, errors.Newf("enum %s: member %s has no constant value", enum.Name, name)
		}
		value, err := decodeIntConstant(blob, enum.Signed || enum.Bits == 0)
		if err != nil {
			return nil, errors.Wrapf(err, "enum %s member %s", enum.Name, name)
		}
		enum.Members = append(enum.Members, EnumMember{Name: name, Value: value})
	}
	return enum, nil
}

func (r *WinMdReader) decodeDelegate(td *winmd.TypeDef) (*Delegate, error) {
	for i := td.MethodList.Start; i < td.MethodList.End; i++ {
		def, err := r.metadata.Tables.MethodDef.Record(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading methods of %s", td.Name.String())
		}
		if def.Name.String() != "Invoke" {
			continue
		}
		method, err := r.decodeMethod(def)
		if err != nil {
			return nil, errors.Wrapf(err, "delegate %s", td.Name.String())
		}
		return &Delegate{Name: td.Name.String(), Params: method.Params, Return: method.Return}, nil
	}
	return nil, errors.Newf("delegate %s has no Invoke method", td.Name.String())
}

func (r *WinMdReader) decodeInterface(td *winmd.TypeDef, idx winmd.Index) (*Interface, error) {
	name := td.Name.String()
	guid, found, err := r.guidAttribute(coded.HasCustomAttribute_TypeDef, idx)
	if err != nil {
		return nil, errors.Wrapf(err, "interface %s", name)
	}
	if !found {
		return nil, errors.Newf("interface %s: missing GUID identity attribute", name)
	}

	iface := &Interface{Name: name, Guid: guid}
	for i := uint32(0); i < r.metadata.Tables.InterfaceImpl.Len; i++ {
		impl, err := r.metadata.Tables.InterfaceImpl.Record(winmd.Index(i))
		if err != nil {
			return nil, errors.Wrap(err, "reading InterfaceImpl table")
		}
		if impl.Class != idx {
			continue
		}
		_, parentName, err := r.typeDefOrRefName(impl.Interface)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving parent of %s", name)
		}
		iface.Parent = parentName
		break
	}

	for i := td.MethodList.Start; i < td.MethodList.End; i++ {
		def, err := r.metadata.Tables.MethodDef.Record(i)
		if err != nil {
			return nil, errors.Wrapf(err, "reading methods of %s", name)
		}
		method, err := r.decodeMethod(def)
		if err != nil {
			return nil, errors.Wrapf(err, "interface %s", name)
		}
		iface.Methods = append(iface.Methods, method)
	}
	return iface, nil
}

func (r *WinMdReader) decodeMethod(def *winmd.MethodDef) (Method, error) {
	name := def.Name.String()
	sig, err := r.metadata.MethodDefSignature(def.Signature)
	if err != nil {
		return Method{}, errors.Wrapf(err, "decoding signature of %s", name)
	}
	ret, err := r.convertType(sig.RetType.Type)
	if err != nil {
		return Method{}, errors.Wrapf(err, "return type of %s", name)
	}

	// Param rows carry a Sequence: 0 for the optional return-slot row,
	// 1-based positions for the actual parameters. Rows may be sparse, so
	// names are matched by sequence rather than row order.
	names := make(map[int]string)
	for i := def.ParamList.Start; i < def.ParamList.End; i++ {
		param, err := r.metadata.Tables.Param.Record(i)
		if err != nil {
			return Method{}, errors.Wrapf(err, "reading parameters of %s", name)
		}
		names[int(param.Sequence)] = param.Name.String()
	}

	method := Method{Name: name, Return: ret}
	for i, sigParam := range sig.Param {
		paramType, err := r.convertType(sigParam.Type)
		if err != nil {
			return Method{}, errors.Wrapf(err, "parameter %d of %s", i, name)
		}
		method.Params = append(method.Params, Param{Name: sequencedParamName(names, i), Type: paramType})
	}
	return method, nil
}

// sequencedParamName picks the declared name of signature parameter i (its
// Param row carries sequence i+1) or synthesizes a positional placeholder.
func sequencedParamName(names map[int]string, i int) string {
	if name, ok := names[i+1]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("param%d", i)
}

func (r *WinMdReader) decodeApis(store *Store, td *winmd.TypeDef) error {
	for i := td.FieldList.Start; i < td.FieldList.End; i++ {
		rec, err := r.metadata.Tables.Field.Record(i)
		if err != nil {
			return errors.Wrap(err, "reading global constants")
		}
		constant, err := r.decodeConstant(rec, i)
		if err != nil {
			return err
		}
		store.Constants = append(store.Constants, constant)
	}
	for i := td.MethodList.Start; i < td.MethodList.End; i++ {
		def, err := r.metadata.Tables.MethodDef.Record(i)
		if err != nil {
			return errors.Wrap(err, "reading global functions")
		}
		method, err := r.decodeMethod(def)
		if err != nil {
			return err
		}
		lib, err := ImportLibrary(method.Name)
		if err != nil {
			return err
		}
		store.Functions = append(store.Functions, Function{
			Name:      method.Name,
			Params:    method.Params,
			Return:    method.Return,
			ImportLib: lib,
		})
	}
	return nil
}

func (r *WinMdReader) decodeConstant(rec *winmd.Field, idx winmd.Index) (Constant, error) {
	name := rec.Name.String()
	sig, err := r.metadata.FieldSignature(rec.Signature)
	if err != nil {
		return Constant{}, errors.Wrapf(err, "decoding constant %s", name)
	}
	constType, err := r.convertType(sig.Type)
	if err != nil {
		return Constant{}, errors.Wrapf(err, "constant %s", name)
	}

	switch {
	case constType.Kind == KindGuid:
		guid, found, err := r.guidAttribute(coded.HasCustomAttribute_Field, idx)
		if err != nil {
			return Constant{}, errors.Wrapf(err, "constant %s", name)
		}
		if !found {
			return Constant{}, errors.Newf("GUID constant %s has no identity attribute", name)
		}
		return Constant{Name: name, Kind: ConstGuid, Guid: guid}, nil
	case constType.Kind == KindValueType && constType.Name == "HRESULT":
		blob, ok := r.constants[idx]
		if !ok || len(blob) != 4 {
			return Constant{}, errors.Newf("status constant %s has no 32-bit value", name)
		}
		return Constant{Name: name, Kind: ConstStatus, Status: binary.LittleEndian.Uint32(blob)}, nil
	case constType.Kind == KindPrimitive && constType.Float:
		blob, ok := r.constants[idx]
		if !ok {
			return Constant{}, errors.Newf("constant %s has no value", name)
		}
		value, err := decodeFloatConstant(blob)
		if err != nil {
			return Constant{}, errors.Wrapf(err, "constant %s", name)
		}
		return Constant{Name: name, Kind: ConstFloat, Float: value}, nil
	case constType.Kind == KindPrimitive || (constType.Kind == KindValueType && constType.Enum):
		blob, ok := r.constants[idx]
		if !ok {
			return Constant{}, errors.Newf("constant %s has no value", name)
		}
		value, err := decodeIntConstant(blob, constType.Signed)
		if err != nil {
			return Constant{}, errors.Wrapf(err, "constant %s", name)
		}
		return Constant{Name: name, Kind: ConstInt, Int: value, Unsigned: !constType.Signed}, nil
	}
	return Constant{}, errors.Newf("constant %s has an unsupported shape", name)
}

// guidAttribute returns the GUID custom attribute attached to a metadata
// row, decoded from the fixed attribute blob layout (two-byte prolog, u32,
// u16, u16, 8 bytes) into the canonical little-endian wire layout. The
// attribute parent spans many tables, so the owning table's tag is part of
// the match.
func (r *WinMdReader) guidAttribute(tag int8, parent winmd.Index) ([16]byte, bool, error) {
	var guid [16]byte
	for i := uint32(0); i < r.metadata.Tables.CustomAttribute.Len; i++ {
		attr, err := r.metadata.Tables.CustomAttribute.Record(winmd.Index(i))
		if err != nil {
			return guid, false, errors.Wrap(err, "reading CustomAttribute table")
		}
		if !attrOnRow(attr, tag, parent) {
			continue
		}
		name, err := r.attributeTypeName(attr)
		if err != nil {
			return guid, false, err
		}
		if name != "GuidAttribute" {
			continue
		}
		blob := attr.Value
		if len(blob) < 18 {
			return guid, false, errors.Newf("GUID attribute blob of %d bytes", len(blob))
		}
		copy(guid[:], blob[2:18])
		return guid, true, nil
	}
	return guid, false, nil
}

// attrOnRow reports whether a custom attribute is attached to the given row
// of the table the tag selects. Row numbers alone are ambiguous: every
// parent table counts from zero.
func attrOnRow(attr *winmd.CustomAttribute, tag int8, row winmd.Index) bool {
	return attr.Parent.Tag == tag && attr.Parent.Index == row
}

// fieldBitfields collects the ordered bitfield attributes attached to a
// field row. Each attribute blob carries a name string and two 64-bit
// integers: bit offset and bit length.
func (r *WinMdReader) fieldBitfields(field winmd.Index) ([]Bitfield, error) {
	var specs []Bitfield
	for i := uint32(0); i < r.metadata.Tables.CustomAttribute.Len; i++ {
		attr, err := r.metadata.Tables.CustomAttribute.Record(winmd.Index(i))
		if err != nil {
			return nil, errors.Wrap(err, "reading CustomAttribute table")
		}
		if !attrOnRow(attr, coded.HasCustomAttribute_Field, field) {
			continue
		}
		name, err := r.attributeTypeName(attr)
		if err != nil {
			return nil, err
		}
		if name != "NativeBitfieldAttribute" {
			continue
		}
		spec, err := decodeBitfieldBlob(attr.Value)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// attributeTypeName resolves the declaring type name of an attribute
// constructor. The attributes decoded here are always member references to
// imported attribute types; any other constructor shape yields an empty
// name and the attribute is skipped by the caller.
func (r *WinMdReader) attributeTypeName(attr *winmd.CustomAttribute) (string, error) {
	if attr.Type.Tag != coded.CustomAttributeType_MemberRef {
		return "", nil
	}
	ctor, err := r.metadata.Tables.MemberRef.Record(attr.Type.Index)
	if err != nil {
		return "", errors.Wrap(err, "resolving attribute constructor")
	}
	if ctor.Class.Tag != coded.MemberRefParent_TypeRef {
		return "", nil
	}
	owner, err := r.metadata.Tables.TypeRef.Record(ctor.Class.Index)
	if err != nil {
		return "", errors.Wrap(err, "resolving attribute type")
	}
	return owner.Name.String(), nil
}

func decodeIntConstant(blob []byte, signed bool) (int64, error) {
	switch len(blob) {
	case 1:
		if signed {
			return int64(int8(blob[0])), nil
		}
		return int64(blob[0]), nil
	case 2:
		v := binary.LittleEndian.Uint16(blob)
		if signed {
			return int64(int16(v)), nil
		}
		return int64(v), nil
	case 4:
		v := binary.LittleEndian.Uint32(blob)
		if signed {
			return int64(int32(v)), nil
		}
		return int64(v), nil
	case 8:
		return int64(binary.LittleEndian.Uint64(blob)), nil
	}
	return 0, errors.Newf("integer constant blob of %d bytes", len(blob))
}

func decodeFloatConstant(blob []byte) (float64, error) {
	switch len(blob) {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(blob))), nil
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(blob)), nil
	}
	return 0, errors.Newf("float constant blob of %d bytes", len(blob))
}

// decodeBitfieldBlob parses a bitfield attribute value: two-byte prolog, a
// length-prefixed UTF-8 name, then the bit offset and bit length as signed
// 64-bit integers.
func decodeBitfieldBlob(blob []byte) (Bitfield, error) {
	if len(blob) < 2 {
		return Bitfield{}, errors.New("truncated bitfield attribute blob")
	}
	rest := blob[2:]
	nameLen, n := decodeCompressedUint(rest)
	if n == 0 || len(rest) < n+int(nameLen)+16 {
		return Bitfield{}, errors.New("truncated bitfield attribute blob")
	}
	name := string(rest[n : n+int(nameLen)])
	rest = rest[n+int(nameLen):]
	offset := int64(binary.LittleEndian.Uint64(rest[0:8]))
	length := int64(binary.LittleEndian.Uint64(rest[8:16]))
	return Bitfield{Name: name, Offset: int(offset), Length: int(length)}, nil
}

// decodeCompressedUint reads an ECMA-335 compressed unsigned integer and
// returns the value and the number of bytes consumed (0 on malformed input).
func decodeCompressedUint(b []byte) (uint32, int) {
	if len(b) == 0 {
		return 0, 0
	}
	switch {
	case b[0]&0x80 == 0:
		return uint32(b[0]), 1
	case b[0]&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0
		}
		return uint32(b[0]&0x3F)<<8 | uint32(b[1]), 2
	case b[0]&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0
		}
		return uint32(b[0]&0x1F)<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4
	}
	return 0, 0
}
