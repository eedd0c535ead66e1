// Package search filters the flat key list with fuzzy matching and resolves
// a picked result back into a tree position. The scoring function is
// injected so the matcher library stays swappable and tests stay exact.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mazdak/lazyredis/internal/keytree"
)

// MatchFunc returns the candidates matching pattern, best match first.
type MatchFunc func(pattern string, candidates []string) []string

// FuzzyMatch is the default matcher, ranked by fuzzy score.
func FuzzyMatch(pattern string, candidates []string) []string {
	matches := fuzzy.Find(pattern, candidates)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

// State is the search-mode state: the query, the filtered key list, and the
// selection within it.
type State struct {
	Active   bool
	Query    string
	Filtered []string
	Selected int

	match MatchFunc
}

// NewState returns search state backed by the default fuzzy matcher.
func NewState() *State {
	return NewStateWith(FuzzyMatch)
}

// NewStateWith returns search state with an injected matcher.
func NewStateWith(m MatchFunc) *State {
	return &State{match: m}
}

// SetQuery updates the query and refilters keys. An empty query matches
// every key in its original order.
func (s *State) SetQuery(query string, keys []string) {
	s.Query = query
	s.Refilter(keys)
}

// Refilter re-runs the current query against a fresh key list, e.g. after
// an enumeration page arrives mid-search.
func (s *State) Refilter(keys []string) {
	if s.Query == "" {
		s.Filtered = append([]string(nil), keys...)
	} else {
		s.Filtered = s.match(s.Query, keys)
	}
	if s.Selected >= len(s.Filtered) {
		s.Selected = 0
	}
}

// Clear exits search mode and drops all query state.
func (s *State) Clear() {
	s.Active = false
	s.Query = ""
	s.Filtered = nil
	s.Selected = 0
}

// MoveSelection moves the result cursor by delta, clamped.
func (s *State) MoveSelection(delta int) {
	if len(s.Filtered) == 0 {
		s.Selected = 0
		return
	}
	s.Selected += delta
	if s.Selected < 0 {
		s.Selected = 0
	}
	if s.Selected >= len(s.Filtered) {
		s.Selected = len(s.Filtered) - 1
	}
}

// SelectedKey returns the key under the result cursor.
func (s *State) SelectedKey() (string, bool) {
	if s.Selected < len(s.Filtered) {
		return s.Filtered[s.Selected], true
	}
	return "", false
}

// Activation locates a picked search result in the tree: the full path,
// its segments, and whether the path is a folder rather than a leaf.
type Activation struct {
	FullPath string
	Segments []string
	IsFolder bool
}

// Resolve builds the Activation for a picked key. A path counts as a folder
// when the tree holds a folder there, or when any raw key extends the path
// through the delimiter (covers folders the tree has absorbed).
func Resolve(key string, tree *keytree.Tree, rawKeys []string) Activation {
	delim := tree.Delimiter()
	segments := strings.Split(key, delim)

	isFolder := false
	if level, ok := tree.NodeAt(segments[:len(segments)-1]); ok {
		if node, ok := level[segments[len(segments)-1]]; ok {
			isFolder = node.Folder()
		}
	}
	if !isFolder {
		prefix := key + delim
		for _, raw := range rawKeys {
			if strings.HasPrefix(raw, prefix) {
				isFolder = true
				break
			}
		}
	}

	return Activation{FullPath: key, Segments: segments, IsFolder: isFolder}
}
