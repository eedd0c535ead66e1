// Package keytree builds a navigable hierarchy from a flat, delimited
// keyspace. A key like "user:1:name" becomes folders "user" and "1" with a
// leaf "name"; folders are synthetic and do not correspond to store keys.
package keytree

import (
	"sort"
	"strings"
)

// Node is one position in the tree: a synthetic folder (Children non-nil)
// or a leaf holding the full key name it resolves to.
type Node struct {
	Children map[string]*Node
	FullKey  string
}

// Folder reports whether the node is a synthetic folder.
func (n *Node) Folder() bool { return n.Children != nil }

// Entry is one row of the current view: the child display name (folders
// carry a trailing delimiter-like "/" suffix) and, for leaves, the full key.
type Entry struct {
	Name     string
	FullKey  string
	IsFolder bool
}

// Tree indexes key names split on a single-character delimiter.
type Tree struct {
	delimiter string
	root      map[string]*Node
}

// New returns an empty tree for the given delimiter.
func New(delimiter rune) *Tree {
	return &Tree{
		delimiter: string(delimiter),
		root:      make(map[string]*Node),
	}
}

// Delimiter returns the delimiter the tree splits on.
func (t *Tree) Delimiter() string { return t.delimiter }

// Reset discards all nodes, keeping the delimiter.
func (t *Tree) Reset() {
	t.root = make(map[string]*Node)
}

// Insert adds one key. Intermediate segments become folders; when an
// intermediate segment is currently a leaf (a shorter key is an exact
// prefix of this one) the leaf is replaced by an empty folder and the
// shorter key loses its own entry. The store's namespace is flat, so a key
// and a "directory" of the same name are unrelated; the deeper hierarchy
// wins for browsability.
func (t *Tree) Insert(key string) {
	segments := strings.Split(key, t.delimiter)
	level := t.root
	for _, seg := range segments[:len(segments)-1] {
		node, ok := level[seg]
		if !ok || !node.Folder() {
			node = &Node{Children: make(map[string]*Node)}
			level[seg] = node
		}
		level = node.Children
	}
	last := segments[len(segments)-1]
	if _, exists := level[last]; !exists {
		level[last] = &Node{FullKey: key}
	}
}

// InsertAll adds a batch of keys, e.g. one enumeration page.
func (t *Tree) InsertAll(keys []string) {
	for _, k := range keys {
		t.Insert(k)
	}
}

// Rebuild resets the tree and inserts the given keys.
func (t *Tree) Rebuild(keys []string) {
	t.Reset()
	t.InsertAll(keys)
}

// NodeAt resolves a breadcrumb to the folder it addresses. The empty
// breadcrumb addresses the root. ok is false when any segment is missing
// or is a leaf.
func (t *Tree) NodeAt(breadcrumb []string) (map[string]*Node, bool) {
	level := t.root
	for _, seg := range breadcrumb {
		node, ok := level[seg]
		if !ok || !node.Folder() {
			return nil, false
		}
		level = node.Children
	}
	return level, true
}

// ChildrenAt returns the visible entries for a breadcrumb, folders first,
// each group sorted lexicographically. Folder names carry a "/" suffix.
// ok is false when the breadcrumb no longer resolves, in which case the
// caller should clear its view rather than guess.
func (t *Tree) ChildrenAt(breadcrumb []string) ([]Entry, bool) {
	level, ok := t.NodeAt(breadcrumb)
	if !ok {
		return nil, false
	}
	var folders, leaves []Entry
	for name, node := range level {
		if node.Folder() {
			folders = append(folders, Entry{Name: name + "/", IsFolder: true})
		} else {
			leaves = append(leaves, Entry{Name: name, FullKey: node.FullKey})
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Name < leaves[j].Name })
	return append(folders, leaves...), true
}

// Path joins breadcrumb segments and a final name into a full key path.
func (t *Tree) Path(breadcrumb []string, name string) string {
	if len(breadcrumb) == 0 {
		return name
	}
	return strings.Join(breadcrumb, t.delimiter) + t.delimiter + name
}

// Prefix returns the deletion prefix for a folder entry: the folder's full
// path followed by the delimiter.
func (t *Tree) Prefix(breadcrumb []string, folderName string) string {
	return t.Path(breadcrumb, strings.TrimSuffix(folderName, "/")) + t.delimiter
}
