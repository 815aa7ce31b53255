// Package platform holds the hand-written Windows types the generated
// bindings refer to instead of regenerating: base COM machinery, opaque
// handles, and a few geometric primitives.
package platform

import "unsafe"

// GUID matches the canonical COM identity wire layout.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

type (
	HRESULT int32
	BOOL    int32

	HANDLE   uintptr
	HMODULE  uintptr
	HMONITOR uintptr
	HDC      uintptr
	HWND     uintptr
)

// IUnknown is the root COM interface.
type IUnknown struct {
	LpVtbl *IUnknownVtbl
}

// IUnknownVtbl slots follow the stdcall calling convention.
type IUnknownVtbl struct {
	QueryInterface func(self *IUnknown, riid *GUID, object *unsafe.Pointer) HRESULT
	AddRef         func(self *IUnknown) uint32
	Release        func(self *IUnknown) uint32
}

type POINT struct {
	X int32
	Y int32
}

type SIZE struct {
	Cx int32
	Cy int32
}

type RECT struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type LUID struct {
	LowPart  uint32
	HighPart int32
}

type LARGE_INTEGER int64

type SECURITY_ATTRIBUTES struct {
	Length             uint32
	SecurityDescriptor unsafe.Pointer
	InheritHandle      BOOL
}

// LOGFONTW is the legacy font descriptor.
type LOGFONTW struct {
	Height         int32
	Width          int32
	Escapement     int32
	Orientation    int32
	Weight         int32
	Italic         uint8
	Underline      uint8
	StrikeOut      uint8
	CharSet        uint8
	OutPrecision   uint8
	ClipPrecision  uint8
	Quality        uint8
	PitchAndFamily uint8
	FaceName       [32]uint16
}
