package generation

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"

	"godxgen/internal/metadata"
)

// Renamed records one collision-forced method rename. It is informational:
// renames never fail generation, but they must be surfaced for audit.
type Renamed struct {
	Interface string
	Method    string
	NewName   string
}

func (r Renamed) String() string {
	return fmt.Sprintf("renamed %s.%s to %s", r.Interface, r.Method, r.NewName)
}

// vtableNames resolves the slot names for an interface's own methods.
//
// The name set is seeded by replaying the ancestor chain root-first with the
// same suffix algorithm, so it holds exactly the names already occupying the
// flattened vtable. Own methods are then resolved in declaration order: a
// taken name gains the smallest numeric suffix that frees it. The returned
// slice parallels iface.Methods; renames cover only iface's own methods.
func (g *Generator) vtableNames(iface *metadata.Interface) ([]string, []Renamed, error) {
	chain, err := g.Store.Chain(iface.Name)
	if err != nil {
		return nil, nil, err
	}
	used := make(map[string]bool)
	if root := chain[0]; root.Parent != "" {
		inherited, ok := metadata.PlatformRootMethods[root.Parent]
		if !ok {
			return nil, nil, errors.Newf("interface %s: unknown parent interface %s", root.Name, root.Parent)
		}
		for _, name := range inherited {
			used[name] = true
		}
	}

	var names []string
	var renames []Renamed
	for _, ancestor := range chain {
		for _, m := range ancestor.Methods {
			name := m.Name
			for n := 1; used[name]; n++ {
				name = m.Name + strconv.Itoa(n)
			}
			used[name] = true
			if ancestor.Name != iface.Name {
				continue
			}
			if name != m.Name {
				renames = append(renames, Renamed{Interface: iface.Name, Method: m.Name, NewName: name})
			}
			names = append(names, name)
		}
	}
	return names, renames, nil
}
