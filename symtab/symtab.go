/*
Package symtab provides symbol tables for the vocabularies of grammars and
language models.

A table maps names to dense integer ids. Tables for natural language
vocabularies reserve the ids of the unknown word, of the sentence start marker
and of the sentence end marker.

Overlays extend a table for the duration of a single generation or parsing run.
Unseen names are interned into the overlay, the underlying table is never
modified. This keeps grammars and language models free of per-input state.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package symtab

import (
	"fmt"
	"sort"
)

// Reserved ids of natural language vocabularies.
const (
	Unk = 0 // unknown word
	BOS = 1 // sentence start
	EOS = 2 // sentence end
)

// Names of the reserved words.
const (
	UnkName = "<unk>"
	BOSName = "<s>"
	EOSName = "</s>"
)

// --- Tags ------------------------------------------------------------------

// Tag is the entry type of symbol tables. I prefer the name 'Tag' over 'Symbol',
// as grammars consist of symbols (within rules), too.
type Tag struct {
	name  string
	id    int
	UData interface{} // user data
}

// Name gets the tag's name.
func (tag *Tag) Name() string {
	return tag.name
}

// ID gets the tag's id.
func (tag *Tag) ID() int {
	return tag.id
}

// String is a debug Stringer for tags.
func (tag *Tag) String() string {
	return fmt.Sprintf("<tag '%s':%d>", tag.name, tag.id)
}

// --- Symbol tables ---------------------------------------------------------

// Vocabulary is the read interface common to tables and overlays.
type Vocabulary interface {
	Lookup(name string) (int, bool)
	Name(id int) string
	Size() int
}

// Table is a symbol table to store tags (map-like semantics), with ids
// assigned in order of definition.
type Table struct {
	tags  map[string]*Tag
	index []*Tag
}

var _ Vocabulary = (*Table)(nil)

// NewTable creates a symbol table. Reserved names, if given, are defined
// in order, i.e. they receive ids 0, 1, ….
func NewTable(reserved ...string) *Table {
	t := &Table{tags: make(map[string]*Tag)}
	for _, r := range reserved {
		t.Intern(r)
	}
	return t
}

// NewWordTable creates a table for natural language words, with the unknown
// word, sentence start and sentence end pre-defined.
func NewWordTable() *Table {
	return NewTable(UnkName, BOSName, EOSName)
}

// ResolveTag checks for a tag in the symbol table.
// Returns a tag or nil.
func (t *Table) ResolveTag(name string) *Tag {
	return t.tags[name]
}

// ResolveOrDefineTag finds a tag in the table, inserts a new one if not found.
// Returns the tag and a flag, signalling wether the tag has already been present.
// Empty names are not allowed and will return nil.
func (t *Table) ResolveOrDefineTag(name string) (*Tag, bool) {
	if len(name) == 0 {
		return nil, false
	}
	if tag := t.tags[name]; tag != nil {
		return tag, true
	}
	tag := &Tag{name: name, id: len(t.index)}
	t.tags[name] = tag
	t.index = append(t.index, tag)
	return tag, false
}

// Intern returns the id of name, defining it if necessary.
// Empty names are mapped to -1.
func (t *Table) Intern(name string) int {
	tag, _ := t.ResolveOrDefineTag(name)
	if tag == nil {
		return -1
	}
	return tag.id
}

// Lookup returns the id of name, if present.
func (t *Table) Lookup(name string) (int, bool) {
	if tag := t.tags[name]; tag != nil {
		return tag.id, true
	}
	return -1, false
}

// Tag returns the tag for id, or nil.
func (t *Table) Tag(id int) *Tag {
	if id < 0 || id >= len(t.index) {
		return nil
	}
	return t.index[id]
}

// Name returns the name for id, or the empty string.
func (t *Table) Name(id int) string {
	if tag := t.Tag(id); tag != nil {
		return tag.name
	}
	return ""
}

// Size counts the tags in a symbol table.
func (t *Table) Size() int {
	return len(t.index)
}

// Each iterates over each tag in the table in order of ids, executing a mapper function.
func (t *Table) Each(mapper func(string, *Tag)) {
	for _, tag := range t.index {
		mapper(tag.name, tag)
	}
}

// Names returns all names of the table, sorted alphabetically.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.index))
	for _, tag := range t.index {
		names = append(names, tag.name)
	}
	sort.Strings(names)
	return names
}

// --- Overlays --------------------------------------------------------------

// Overlay extends a table with names unknown to it. Ids of the overlay start
// at the size of the base table at creation time.
type Overlay struct {
	base  *Table
	first int
	extra map[string]int
	names []string
}

var _ Vocabulary = (*Overlay)(nil)

// NewOverlay creates an overlay on top of base.
func NewOverlay(base *Table) *Overlay {
	return &Overlay{
		base:  base,
		first: base.Size(),
		extra: make(map[string]int),
	}
}

// Intern returns the id of name, either from the base table or from the
// overlay. Names unknown to both are defined in the overlay.
func (o *Overlay) Intern(name string) int {
	if id, ok := o.Lookup(name); ok {
		return id
	}
	id := o.first + len(o.names)
	o.extra[name] = id
	o.names = append(o.names, name)
	return id
}

// Lookup returns the id of name, if present in the base table or in the overlay.
func (o *Overlay) Lookup(name string) (int, bool) {
	if id, ok := o.base.Lookup(name); ok && id < o.first {
		return id, true
	}
	id, ok := o.extra[name]
	return id, ok
}

// Name returns the name for id, or the empty string.
func (o *Overlay) Name(id int) string {
	if id < o.first {
		return o.base.Name(id)
	}
	if id-o.first < len(o.names) {
		return o.names[id-o.first]
	}
	return ""
}

// Size returns the number of ids of base table and overlay.
func (o *Overlay) Size() int {
	return o.first + len(o.names)
}

// IsExtension is a predicate: is id defined in the overlay only?
func (o *Overlay) IsExtension(id int) bool {
	return id >= o.first
}
