package typesystem

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type tableEntry struct {
	decl Declaration
	text string
}

// TypeTable maps type names to rendered declarations in first-insertion
// order. Storing a name again replaces its declaration but keeps its slot.
type TypeTable struct {
	entries *orderedmap.OrderedMap[string, tableEntry]
}

// NewTypeTable returns an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{entries: orderedmap.New[string, tableEntry]()}
}

// Set stores decl and its rendered text under decl.Name.
func (t *TypeTable) Set(decl Declaration, text string) {
	t.entries.Set(decl.Name, tableEntry{decl: decl, text: text})
}

// Get returns the declaration stored under name.
func (t *TypeTable) Get(name string) (Declaration, bool) {
	e, ok := t.entries.Get(name)
	return e.decl, ok
}

// Text returns the rendered declaration stored under name.
func (t *TypeTable) Text(name string) (string, bool) {
	e, ok := t.entries.Get(name)
	return e.text, ok
}

// Len returns the number of types.
func (t *TypeTable) Len() int { return t.entries.Len() }

// Names returns the type names in table order.
func (t *TypeTable) Names() []string {
	names := make([]string, 0, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Declarations returns the declarations in table order.
func (t *TypeTable) Declarations() []Declaration {
	decls := make([]Declaration, 0, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		decls = append(decls, pair.Value.decl)
	}
	return decls
}

// Map returns name to declaration text.
func (t *TypeTable) Map() map[string]string {
	m := make(map[string]string, t.entries.Len())
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value.text
	}
	return m
}

// String joins all declaration texts with "\n" in table order.
func (t *TypeTable) String() string {
	var b strings.Builder
	for pair := t.entries.Oldest(); pair != nil; pair = pair.Next() {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pair.Value.text)
	}
	return b.String()
}
