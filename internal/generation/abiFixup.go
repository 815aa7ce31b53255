package generation

import (
	"github.com/cockroachdb/errors"

	"godxgen/internal/metadata"
)

// byValueReturns are the mapped return types the native convention does
// return in registers: the status code, the general and monitor handles, the
// device-context and window handles, and the boolean.
var byValueReturns = map[string]bool{
	"HRESULT":  true,
	"HANDLE":   true,
	"HMONITOR": true,
	"HDC":      true,
	"HWND":     true,
	"BOOL":     true,
}

// needsReturnFixup reports whether returning t by value violates the native
// calling convention for struct returns. Primitives and enums are register
// returns; any other value type (16-byte GUIDs included) is an aggregate the
// two codegens disagree on, so the signature must be rewritten.
func needsReturnFixup(t metadata.Type) bool {
	switch t.Kind {
	case metadata.KindGuid:
		return true
	case metadata.KindValueType:
		return !t.Enum && !byValueReturns[t.Name]
	}
	return false
}

// applyReturnFixup rewrites a struct-returning method into the output
// parameter form: the declared return is dropped and a trailing pointer to
// the original return type is appended. The caller must treat that parameter
// as the true return slot. A fixup candidate with existing parameters is a
// consistency error: threading an extra output parameter into an occupied
// parameter list cannot be done safely.
func applyReturnFixup(owner string, m metadata.Method) (metadata.Method, error) {
	if len(m.Params) != 0 {
		return metadata.Method{}, errors.Newf(
			"%s.%s: struct return with %d existing parameters cannot be rewritten",
			owner, m.Name, len(m.Params))
	}
	out := m.Return
	m.Return = metadata.Void()
	m.Params = []metadata.Param{{Name: "out", Type: metadata.PtrTo(out)}}
	return m, nil
}
