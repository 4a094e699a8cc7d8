// Package command names well-known CLI commands so that command lines can be
// assembled without typing the tokens by hand.
package command

import (
	"sort"
	"strings"
)

// Path renders the invocation token of a CLI command.
type Path string

const (
	Cat  Path = "cat"
	Diff Path = "diff"
	Echo Path = "echo"
	Grep Path = "grep"
	Head Path = "head"
	Sort Path = "sort"
	Tail Path = "tail"
	Wc   Path = "wc"
)

var known = map[string]Path{
	"cat":  Cat,
	"diff": Diff,
	"echo": Echo,
	"grep": Grep,
	"head": Head,
	"sort": Sort,
	"tail": Tail,
	"wc":   Wc,
}

func (p Path) String() string { return string(p) }

// With returns the token followed by args, space-separated.
func (p Path) With(args ...string) string {
	if len(args) == 0 {
		return string(p)
	}
	return string(p) + " " + strings.Join(args, " ")
}

// Lookup returns the Path registered under name.
func Lookup(name string) (Path, bool) {
	p, ok := known[name]
	return p, ok
}

// All returns every known Path sorted by token.
func All() []Path {
	paths := make([]Path, 0, len(known))
	for _, p := range known {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// Pipe joins command segments with the shell pipe operator.
func Pipe(segments ...string) string {
	return strings.Join(segments, " | ")
}
