// The package used for operating on and describing Windows Metadata.
package metadata

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// TypeKind enumerates every shape a decoded type reference can take. The set
// is closed: anything a reader cannot place into it is a decoding error, not
// a new kind.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindPrimitive
	KindPointer
	KindArray
	KindValueType
	KindInterface
	KindGuid
)

// Type is a decoded metadata type reference. Values are immutable after the
// store is built.
type Type struct {
	Kind TypeKind

	// Primitive shape.
	Bits   int // width in bits; 0 means pointer-sized
	Signed bool
	Float  bool

	// Pointer and array shape.
	Elem       *Type
	ArrayLen   uint32
	ArrayRank  int
	ArrayLower int32

	// Named shape (value type or interface).
	Name string
	Enum bool // the named value type is an enum definition
}

func Void() Type { return Type{Kind: KindVoid} }

func Int(bits int) Type { return Type{Kind: KindPrimitive, Bits: bits, Signed: true} }

func Uint(bits int) Type { return Type{Kind: KindPrimitive, Bits: bits} }

func Float(bits int) Type { return Type{Kind: KindPrimitive, Bits: bits, Signed: true, Float: true} }

func PtrTo(t Type) Type { return Type{Kind: KindPointer, Elem: &t} }

func FixedArray(elem Type, length uint32) Type {
	return Type{Kind: KindArray, Elem: &elem, ArrayLen: length, ArrayRank: 1}
}

func ValueRef(name string) Type { return Type{Kind: KindValueType, Name: name} }

func EnumRef(name string) Type { return Type{Kind: KindValueType, Name: name, Enum: true} }

func InterfaceRef(name string) Type { return Type{Kind: KindInterface, Name: name} }

func GuidType() Type { return Type{Kind: KindGuid} }

// Bitfield is one named sub-range packed into an integer-width storage field.
type Bitfield struct {
	Name   string
	Offset int // bit offset from the least significant bit
	Length int // width in bits
}

// Field is a struct member. Nested carries the body of an inline anonymous
// struct or union; Offset is the explicit byte offset within the parent, or
// -1 when the layout is sequential.
type Field struct {
	Name      string
	Type      Type
	Offset    int
	Nested    *Struct
	Bitfields []Bitfield
}

type Struct struct {
	Name   string
	Fields []Field
}

// Union reports whether the struct represents overlapping storage: more than
// one direct field, every one of them at byte offset 0.
func (s *Struct) Union() bool {
	if len(s.Fields) < 2 {
		return false
	}
	for _, f := range s.Fields {
		if f.Offset != 0 {
			return false
		}
	}
	return true
}

type EnumMember struct {
	Name  string
	Value int64
}

type Enum struct {
	Name    string
	Bits    int
	Signed  bool
	Members []EnumMember
}

type Param struct {
	Name string
	Type Type
}

// Method is one declared method of an interface. Inherited methods are never
// duplicated into children; they are reached through the parent chain.
type Method struct {
	Name   string
	Params []Param
	Return Type
}

// Interface is a COM interface: its 16-byte identity in canonical wire
// layout (u32, u16, u16, 8 bytes, little-endian), at most one parent, and
// its own methods in declaration order.
type Interface struct {
	Name    string
	Guid    [16]byte
	Parent  string // empty for a root interface
	Methods []Method
}

// Delegate is a standalone function-pointer type.
type Delegate struct {
	Name   string
	Params []Param
	Return Type
}

// Function is a globally exported native function.
type Function struct {
	Name      string
	Params    []Param
	Return    Type
	ImportLib string
}

type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstGuid
	// ConstStatus is the reserved status-code encoding: the raw 32-bit value
	// is reinterpreted as a signed HRESULT instead of emitted as a literal.
	ConstStatus
)

type Constant struct {
	Name     string
	Kind     ConstantKind
	Int      int64
	Unsigned bool // Int carries a reinterpreted uint64 value
	Float    float64
	Guid     [16]byte
	Status   uint32
}

// Store is the namespace-filtered, decoded view of the metadata database.
// It is built once and read-only for the rest of the run.
type Store struct {
	Constants  []Constant
	Functions  []Function
	Enums      []Enum
	Structs    []Struct
	Interfaces []Interface
	Delegates  []Delegate

	byName map[string]*Interface
}

// Interface returns the named interface, or nil when the store does not
// declare it.
func (s *Store) Interface(name string) *Interface {
	if s.byName == nil {
		s.byName = make(map[string]*Interface, len(s.Interfaces))
		for i := range s.Interfaces {
			s.byName[s.Interfaces[i].Name] = &s.Interfaces[i]
		}
	}
	return s.byName[name]
}

// Chain returns the ancestor chain of the named interface, rootmost first
// and the interface itself last. The chain covers only interfaces the store
// declares; a parent owned by the platform package terminates the walk.
func (s *Store) Chain(name string) ([]*Interface, error) {
	iface := s.Interface(name)
	if iface == nil {
		return nil, errors.Newf("unknown interface %s", name)
	}
	var chain []*Interface
	for cur := iface; cur != nil; {
		chain = append([]*Interface{cur}, chain...)
		if cur.Parent == "" {
			break
		}
		next := s.Interface(cur.Parent)
		if next == nil {
			if _, ok := PlatformRootMethods[cur.Parent]; !ok {
				return nil, errors.Newf("interface %s: unknown parent interface %s", cur.Name, cur.Parent)
			}
			break
		}
		cur = next
	}
	return chain, nil
}

// PlatformRootMethods lists the method names of root interfaces that live in
// the hand-written platform package. Chains ending at one of these still
// seed the collision set with the inherited names.
var PlatformRootMethods = map[string][]string{
	"IUnknown": {"QueryInterface", "AddRef", "Release"},
}

// importLibraries maps function-name markers to the owning import library,
// checked in order.
var importLibraries = []struct {
	Marker string
	Lib    string
}{
	{"D3D12", "d3d12.dll"},
	{"D3D11", "d3d11.dll"},
	{"D3D10", "d3d10.dll"},
	{"DXGI", "dxgi.dll"},
}

// ImportLibrary resolves the import library owning a global function by the
// name-prefix convention. A name matching no marker is a decoding error.
func ImportLibrary(name string) (string, error) {
	for _, entry := range importLibraries {
		if strings.Contains(name, entry.Marker) {
			return entry.Lib, nil
		}
	}
	return "", errors.Newf("function %s matches no import library marker", name)
}
