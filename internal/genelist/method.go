package genelist

import (
	"fmt"
	"strings"

	"github.com/mkuiper/deplot/internal/detable"
)

// Method selects which gene list files an export run writes.
type Method uint8

const (
	// MethodRankedList writes every gene, ranked by raw p-value.
	MethodRankedList Method = iota
	// MethodCombined writes genes passing both cutoffs, either direction.
	MethodCombined
	// MethodDirectional writes separate lists for up- and down-regulated
	// genes passing both cutoffs.
	MethodDirectional
)

var methodNames = []string{"ranked_list", "combined", "directional"}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", m)
}

// ParseMethod resolves a method name. Exact names and unambiguous prefixes
// are accepted; anything else is a configuration error.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return 0, &detable.ConfigError{Msg: "empty method name"}
	}
	match := -1
	for i, name := range methodNames {
		if name == s {
			return Method(i), nil
		}
		if strings.HasPrefix(name, s) {
			if match >= 0 {
				return 0, &detable.ConfigError{
					Msg: fmt.Sprintf("ambiguous method %q: matches %s and %s", s, methodNames[match], name),
				}
			}
			match = i
		}
	}
	if match < 0 {
		return 0, &detable.ConfigError{
			Msg: fmt.Sprintf("unknown method %q (choose from %s)", s, strings.Join(methodNames, ", ")),
		}
	}
	return Method(match), nil
}

// ParseMethods resolves a list of method names, collapsing duplicates. The
// result is in canonical order: ranked_list, combined, directional.
func ParseMethods(names []string) ([]Method, error) {
	if len(names) == 0 {
		return nil, &detable.ConfigError{Msg: "no export methods given"}
	}

	seen := make([]bool, len(methodNames))
	for _, n := range names {
		m, err := ParseMethod(n)
		if err != nil {
			return nil, err
		}
		seen[m] = true
	}

	var out []Method
	for i, on := range seen {
		if on {
			out = append(out, Method(i))
		}
	}
	return out, nil
}
