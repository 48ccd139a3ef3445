package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// IndentString returns the indent unit for n spaces. Zero yields "" which,
// passed to PrettifyJSON, still breaks lines but does not indent them.
func IndentString(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// PrettifyJSON re-indents JSON with json.Indent. Key order, number literals and
// string escapes are kept exactly as they appear in input; only insignificant
// whitespace changes. Leading and trailing whitespace is dropped. Invalid
// input, including empty input, returns json.Indent's *json.SyntaxError.
func PrettifyJSON(input []byte, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(input), "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EscapeNonASCII rewrites every non-ASCII character as a lowercase \uXXXX
// escape, using a UTF-16 surrogate pair above U+FFFF. Input must be valid
// JSON, where non-ASCII bytes can only occur inside strings. Invalid UTF-8
// sequences become U+FFFD.
func EscapeNonASCII(input []byte) []byte {
	i := 0
	for i < len(input) && input[i] < utf8.RuneSelf {
		i++
	}
	if i == len(input) {
		return input
	}

	out := make([]byte, 0, len(input)+16)
	out = append(out, input[:i]...)
	for i < len(input) {
		c := input[i]
		if c < utf8.RuneSelf {
			out = append(out, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(input[i:])
		i += size
		if r > 0xFFFF {
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}
