package nxapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/inbucket/html2text"
)

const unknownFormat = "NX-API Error: Unknown response format."

// renderBody turns result.body into display text. Strings pass through,
// objects and arrays are indented with key order kept, other scalars keep
// their JSON spelling.
func renderBody(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '{', '[':
		if out, err := reencode(raw, "  "); err == nil {
			return out
		}
	}
	return string(raw)
}

func formatRPCError(fields map[string]json.RawMessage) string {
	message := "Unknown error"
	if raw, ok := fields["message"]; ok {
		message = scalarText(raw)
	}
	code := "N/A"
	if raw, ok := fields["code"]; ok {
		code = scalarText(raw)
	}
	var data string
	if raw, ok := fields["data"]; ok {
		data = scalarText(raw)
	}
	return fmt.Sprintf("NX-API Error: %s (Code: %s)\nData: %s", message, code, data)
}

func scalarText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if out, err := reencode(raw, ""); err == nil {
		return out
	}
	return string(raw)
}

// reencode rewrites a JSON document with the given indent, or compactly
// when indent is empty. Key order is kept and string escapes are decoded so
// non-ASCII text reaches the terminal as characters.
func reencode(raw []byte, indent string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	w := &jsonWriter{indent: indent}
	if err := w.value(dec, 0); err != nil {
		return "", err
	}
	return w.sb.String(), nil
}

type jsonWriter struct {
	sb     strings.Builder
	indent string
}

func (w *jsonWriter) value(dec *json.Decoder, depth int) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		return w.container(dec, v, depth)
	case string:
		return w.str(v)
	case json.Number:
		w.sb.WriteString(v.String())
	case bool:
		w.sb.WriteString(strconv.FormatBool(v))
	case nil:
		w.sb.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %v", tok)
	}
	return nil
}

func (w *jsonWriter) container(dec *json.Decoder, open json.Delim, depth int) error {
	closer := byte(']')
	if open == '{' {
		closer = '}'
	}
	w.sb.WriteByte(byte(open))

	n := 0
	for dec.More() {
		if n > 0 {
			w.sb.WriteByte(',')
		}
		w.newline(depth + 1)

		if open == '{' {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			name, ok := key.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", key)
			}
			if err := w.str(name); err != nil {
				return err
			}
			w.sb.WriteByte(':')
			if w.indent != "" {
				w.sb.WriteByte(' ')
			}
		}

		if err := w.value(dec, depth+1); err != nil {
			return err
		}
		n++
	}

	// closing delimiter
	if _, err := dec.Token(); err != nil {
		return err
	}
	if n > 0 {
		w.newline(depth)
	}
	w.sb.WriteByte(closer)
	return nil
}

func (w *jsonWriter) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.sb.WriteByte('\n')
	w.sb.WriteString(strings.Repeat(w.indent, depth))
}

func (w *jsonWriter) str(s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	w.sb.Write(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}))
	return nil
}

// truthy follows JSON-RPC client conventions where null, false, zero and
// empty containers count as absent.
func truthy(raw json.RawMessage) bool {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return false
	}
	switch buf.String() {
	case "", "null", "false", "0", `""`, "{}", "[]":
		return false
	}
	return true
}

// bodyText renders a rejected response body for display. Web servers in
// front of NX-API answer auth and routing errors with HTML pages.
func bodyText(h http.Header, data []byte) string {
	text := string(data)
	if strings.Contains(h.Get("Content-Type"), "html") {
		if plain, err := html2text.FromString(text, html2text.Options{OmitLinks: true}); err == nil {
			text = plain
		}
	}
	return strings.TrimSpace(text)
}
