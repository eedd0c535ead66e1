// Package viewer holds the display state for the currently activated key:
// the declared type, the fetched payload, and the renderable form (a single
// block of text or an ordered list of lines with a sub-cursor).
package viewer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mazdak/lazyredis/internal/format"
	"github.com/mazdak/lazyredis/internal/redisx"
)

// Value is the closed set of payloads the fetch layer can produce, one
// variant per supported store type. The renderer matches exhaustively, so
// an unsupported type is representable only as Unsupported.
type Value interface {
	render(v *Viewer)
}

// String is a scalar payload.
type String struct{ Raw []byte }

// Hash is an ordered list of field/value pairs.
type Hash struct{ Fields []redisx.Field }

// List is an ordered list of elements.
type List struct{ Elements []string }

// Set holds members sorted for deterministic display.
type Set struct{ Members []string }

// ZSet holds (member, score) pairs in store-native order.
type ZSet struct{ Members []redisx.Member }

// Stream holds entries in chronological order.
type Stream struct{ Entries []redisx.StreamEntry }

// JSON is a raw document, pretty-printed on render.
type JSON struct{ Raw string }

// Unsupported stands in for any type the client does not render.
type Unsupported struct{ TypeName string }

// Fault carries a fetch error to be shown as the value itself.
type Fault struct{ Message string }

// Viewer is the per-active-key display state.
type Viewer struct {
	Key      string
	TypeName string
	TTL      int64

	// Exactly one of Block / Lines is populated per value.
	Block  string
	Lines  []string
	Cursor int
}

// SetValue replaces the viewer contents for a newly activated key. Any
// state from the previously selected key is discarded first, so a failed
// fetch can never leave stale data visible.
func (v *Viewer) SetValue(key, typeName string, ttl int64, val Value) {
	v.Reset()
	v.Key = key
	v.TypeName = typeName
	v.TTL = ttl
	val.render(v)
}

// Reset clears all viewer state.
func (v *Viewer) Reset() {
	*v = Viewer{}
}

// Active reports whether a key's value is currently shown.
func (v *Viewer) Active() bool {
	return v.Key != ""
}

// HasLines reports whether the value renders as selectable lines.
func (v *Viewer) HasLines() bool {
	return len(v.Lines) > 0
}

// MoveCursor moves the line cursor by delta, clamped to the line range.
func (v *Viewer) MoveCursor(delta int) {
	if len(v.Lines) == 0 {
		v.Cursor = 0
		return
	}
	v.Cursor += delta
	if v.Cursor < 0 {
		v.Cursor = 0
	}
	if v.Cursor >= len(v.Lines) {
		v.Cursor = len(v.Lines) - 1
	}
}

// SelectedLine returns the line under the cursor.
func (v *Viewer) SelectedLine() (string, bool) {
	if v.Cursor < len(v.Lines) {
		return v.Lines[v.Cursor], true
	}
	return "", false
}

// Text returns the whole value as one string, for clipboard copies.
func (v *Viewer) Text() string {
	if len(v.Lines) > 0 {
		return strings.Join(v.Lines, "\n")
	}
	return v.Block
}

func (p String) render(v *Viewer) {
	v.Block = format.BytesBlock(p.Raw)
}

func (p Hash) render(v *Viewer) {
	if len(p.Fields) == 0 {
		v.Block = "(empty hash)"
		return
	}
	v.Lines = make([]string, len(p.Fields))
	for i, f := range p.Fields {
		v.Lines[i] = fmt.Sprintf("%s: %s", format.BytesInline([]byte(f.Name)), format.BytesInline([]byte(f.Value)))
	}
}

func (p List) render(v *Viewer) {
	if len(p.Elements) == 0 {
		v.Block = "(empty list)"
		return
	}
	v.Lines = make([]string, len(p.Elements))
	for i, el := range p.Elements {
		v.Lines[i] = fmt.Sprintf("%d: %s", i, format.BytesInline([]byte(el)))
	}
}

func (p Set) render(v *Viewer) {
	if len(p.Members) == 0 {
		v.Block = "(empty set)"
		return
	}
	v.Lines = make([]string, len(p.Members))
	for i, m := range p.Members {
		v.Lines[i] = "- " + format.BytesInline([]byte(m))
	}
}

func (p ZSet) render(v *Viewer) {
	if len(p.Members) == 0 {
		v.Block = "(empty zset)"
		return
	}
	v.Lines = make([]string, len(p.Members))
	for i, m := range p.Members {
		v.Lines[i] = fmt.Sprintf("Score: %s - Member: %s", formatScore(m.Score), format.BytesInline([]byte(m.Member)))
	}
}

func (p Stream) render(v *Viewer) {
	if len(p.Entries) == 0 {
		v.Block = "(empty stream)"
		return
	}
	var lines []string
	for i, e := range p.Entries {
		if i > 0 {
			lines = append(lines, "---")
		}
		lines = append(lines, "ID: "+e.ID)
		if len(e.Fields) == 0 {
			lines = append(lines, "  (no fields)")
			continue
		}
		for _, f := range e.Fields {
			lines = append(lines, fmt.Sprintf("  %s: %s", format.BytesInline([]byte(f.Name)), format.BytesInline([]byte(f.Value))))
		}
	}
	v.Lines = lines
}

func (p JSON) render(v *Viewer) {
	v.Block = format.JSONPretty(p.Raw)
}

func (p Unsupported) render(v *Viewer) {
	v.Block = fmt.Sprintf("Key is of type '%s'. Value view for this type is not supported.", p.TypeName)
}

func (p Fault) render(v *Viewer) {
	v.Block = p.Message
}

// formatScore renders a score without a trailing ".0" for whole numbers.
func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'g', -1, 64)
}
