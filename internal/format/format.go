// Package format converts raw byte payloads into display-safe text.
//
// Values coming back from the store are arbitrary bytes. They are shown
// verbatim when they decode as printable UTF-8 and as hexadecimal
// otherwise, so binary values never corrupt the terminal.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// BytesInline renders bytes as a single display line. Printable UTF-8 is
// passed through with newlines, carriage returns, and tabs escaped; anything
// else becomes space-separated uppercase hex ("00 FF 10").
func BytesInline(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	if s, ok := printableUTF8(b); ok {
		return escapeInline(s)
	}
	return hexInline(b)
}

// BytesBlock renders bytes as a multi-line block. Printable UTF-8 is passed
// through unchanged (newlines preserved); anything else becomes a hex dump
// with 16 bytes per line, each line prefixed with its byte offset.
func BytesBlock(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	if s, ok := printableUTF8(b); ok {
		return s
	}
	return hexBlock(b)
}

// JSONPretty re-indents a JSON document with two-space indentation.
// Input that does not parse as JSON is returned unchanged.
func JSONPretty(raw string) string {
	var v any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return raw
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return raw
	}
	return string(out)
}

// printableUTF8 returns the decoded string when every rune is printable or
// one of \n \r \t.
func printableUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	s := string(b)
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return "", false
		}
	}
	return s, true
}

func escapeInline(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func hexInline(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}
	return sb.String()
}

func hexBlock(b []byte) string {
	const lineBytes = 16
	var buf bytes.Buffer
	for off := 0; off < len(b); off += lineBytes {
		end := off + lineBytes
		if end > len(b) {
			end = len(b)
		}
		if off > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%08X: ", off)
		for i, c := range b[off:end] {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%02X", c)
		}
	}
	return buf.String()
}
