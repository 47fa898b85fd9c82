package editcmd

// White-box testing required: splitLine and shortID are unexported helpers
// that decide how each REPL line is parsed and printed.

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSplitLine(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name, in, verb, arg string
	}{
		{"empty", "", "", ""},
		{"verb only", "share", "share", ""},
		{"verb is lowercased", "SHARE", "share", ""},
		{"leading space trimmed", "  focus top", "focus", "top"},
		{"inner spacing kept", "type A  B ", "type", "A  B "},
		{"trailing CR dropped", "type hi\r", "type", "hi"},
		{"type with nothing clears", "type ", "type", ""},
	}
	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			verb, arg := splitLine(tc.in)
			c.Assert(verb, qt.Equals, tc.verb)
			c.Assert(arg, qt.Equals, tc.arg)
		})
	}
}

func TestShortID(t *testing.T) {
	c := qt.New(t)
	c.Assert(shortID("0123456789abcdef"), qt.Equals, "0123456789ab")
	c.Assert(shortID("abc"), qt.Equals, "abc")
}
