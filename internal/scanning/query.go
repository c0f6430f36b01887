package scanning

import (
	"fmt"
	"strings"
)

// Namespaces maps namespace prefixes to URIs
type Namespaces map[string]string

// Query is a compiled path of the form //a:Step/b:Step/... The first step
// matches at any depth, every following step matches a direct child.
// A step without a prefix matches the local name in any namespace.
type Query struct {
	path  string
	steps []step
}

type step struct {
	prefix string
	local  string
}

// CompileQuery parses a path expression
func CompileQuery(path string) (*Query, error) {
	rest, ok := strings.CutPrefix(path, "//")
	if !ok {
		return nil, fmt.Errorf("query %q: must start with //", path)
	}
	parts := strings.Split(rest, "/")
	steps := make([]step, 0, len(parts))
	for _, p := range parts {
		prefix, local, qualified := strings.Cut(p, ":")
		if !qualified {
			prefix, local = "", p
		}
		if local == "" || (qualified && prefix == "") || strings.ContainsAny(local, ":[]@*") {
			return nil, fmt.Errorf("query %q: invalid step %q", path, p)
		}
		steps = append(steps, step{prefix: prefix, local: local})
	}
	return &Query{path: path, steps: steps}, nil
}

// MustCompileQuery is like CompileQuery but panics on error.
// Use it for package-level query tables only.
func MustCompileQuery(path string) *Query {
	q, err := CompileQuery(path)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string {
	return q.path
}
