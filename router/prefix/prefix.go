// Package prefix implements routing by path prefixes in the order of registration. The
// first registered prefix matching the path wins, even if a longer one matches as well.
package prefix

import "strings"

// Normalize makes sure the prefix both starts and ends with a slash.
func Normalize(prefix string) string {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return prefix
}

// Route binds a handler to a normalized prefix.
type Route[H any] struct {
	Prefix  string
	Handler H
}

// Table is an ordered list of routes. It must not be modified once it's shared between
// goroutines.
type Table[H any] struct {
	routes []Route[H]
}

func New[H any]() *Table[H] {
	return new(Table[H])
}

// Add registers the handler under the normalized prefix.
func (t *Table[H]) Add(prefix string, handler H) *Table[H] {
	t.routes = append(t.routes, Route[H]{
		Prefix:  Normalize(prefix),
		Handler: handler,
	})

	return t
}

// Match looks up the first route, prefix of which the path padded with a trailing slash
// starts with.
func (t *Table[H]) Match(path string) (route Route[H], found bool) {
	padded := path + "/"

	for _, r := range t.routes {
		if strings.HasPrefix(padded, r.Prefix) {
			return r, true
		}
	}

	return route, false
}

// Routes returns registered routes in their order.
func (t *Table[H]) Routes() []Route[H] {
	return t.routes
}

func (t *Table[H]) Len() int {
	return len(t.routes)
}
