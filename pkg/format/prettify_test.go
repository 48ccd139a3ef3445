package format

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPrettifyJSON(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		indent         string
		expectedOutput string
		expectError    bool
	}{
		{
			name:           "Valid JSON with four-space indentation",
			input:          `{"key":"value"}`,
			indent:         "    ",
			expectedOutput: "{\n    \"key\": \"value\"\n}",
		},
		{
			name:           "Already formatted JSON",
			input:          "{\n    \"key\": \"value\"\n}",
			indent:         "    ",
			expectedOutput: "{\n    \"key\": \"value\"\n}",
		},
		{
			name:        "Invalid JSON",
			input:       `{"key":}`,
			indent:      "    ",
			expectError: true,
		},
		{
			name:        "Empty input",
			input:       "",
			indent:      "    ",
			expectError: true,
		},
		{
			name:           "Key order is kept",
			input:          `{"zeta":1,"alpha":2,"mid":3}`,
			indent:         "  ",
			expectedOutput: "{\n  \"zeta\": 1,\n  \"alpha\": 2,\n  \"mid\": 3\n}",
		},
		{
			name:           "Number literals and escapes kept verbatim",
			input:          `{"f":1.0,"e":1e5,"s":"a\/b\u0041"}`,
			indent:         "  ",
			expectedOutput: "{\n  \"f\": 1.0,\n  \"e\": 1e5,\n  \"s\": \"a\\/b\\u0041\"\n}",
		},
		{
			name:           "Empty containers stay inline",
			input:          `{"a":[ ],"b":{ }}`,
			indent:         "    ",
			expectedOutput: "{\n    \"a\": [],\n    \"b\": {}\n}",
		},
		{
			name:           "Zero indent breaks lines only",
			input:          `{"a":[1,2]}`,
			indent:         "",
			expectedOutput: "{\n\"a\": [\n1,\n2\n]\n}",
		},
		{
			name:           "Surrounding whitespace dropped",
			input:          "\n  {\"a\": 1}  \n",
			indent:         "\t",
			expectedOutput: "{\n\t\"a\": 1\n}",
		},
		{
			name:           "Top-level array",
			input:          `[1,{"a":null}]`,
			indent:         "  ",
			expectedOutput: "[\n  1,\n  {\n    \"a\": null\n  }\n]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := PrettifyJSON([]byte(tt.input), tt.indent)

			if tt.expectError {
				var syntaxErr *json.SyntaxError
				if !errors.As(err, &syntaxErr) {
					t.Errorf("Expected *json.SyntaxError, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if string(output) != tt.expectedOutput {
				t.Errorf("Expected output %q, got %q", tt.expectedOutput, string(output))
			}

			if !json.Valid(output) {
				t.Errorf("Output is not valid JSON: %q", string(output))
			}
		})
	}
}

func TestIndentString(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{-1, ""},
		{0, ""},
		{2, "  "},
		{4, "    "},
	}

	for _, tt := range tests {
		if got := IndentString(tt.n); got != tt.expected {
			t.Errorf("IndentString(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}
}

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ascii untouched", `{"a": "plain"}`, `{"a": "plain"}`},
		{"latin-1", `{"name": "café"}`, `{"name": "caf\u00e9"}`},
		{"bmp", `{"k": "日本"}`, `{"k": "\u65e5\u672c"}`},
		{"astral uses surrogate pair", `{"e": "😀"}`, `{"e": "\ud83d\ude00"}`},
		{"key escaped too", `{"ключ": 1}`, `{"\u043a\u043b\u044e\u0447": 1}`},
		{"invalid utf-8", "{\"b\": \"\xff\"}", `{"b": "\ufffd"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeNonASCII([]byte(tt.input))
			if string(got) != tt.expected {
				t.Errorf("EscapeNonASCII(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
			if !json.Valid(got) {
				t.Errorf("EscapeNonASCII output is not valid JSON: %q", got)
			}
		})
	}
}

func TestEscapeNonASCIIRoundTrip(t *testing.T) {
	input := []byte(`{"s": "naïve 😀 ok"}`)

	var before, after map[string]string
	if err := json.Unmarshal(input, &before); err != nil {
		t.Fatalf("Unmarshal input: %v", err)
	}
	if err := json.Unmarshal(EscapeNonASCII(input), &after); err != nil {
		t.Fatalf("Unmarshal escaped: %v", err)
	}
	if before["s"] != after["s"] {
		t.Errorf("Decoded value changed: %q != %q", before["s"], after["s"])
	}
}
