// Package checkers provides quicktest checkers shared by the test suites.
package checkers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

// JSONPathEquals returns a checker that decodes a JSON document (string or
// []byte) and compares the value at path with the wanted value using
// reflect.DeepEqual. JSON numbers decode as float64.
//
//	c.Assert(text, checkers.JSONPathEquals("$.outcome"), "completed")
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path, argNames: []string{"got", "want"}}
}

// JSONPathExists returns a checker that succeeds when path resolves in the
// JSON document.
func JSONPathExists(path string) qt.Checker {
	return &jsonPathChecker{path: path, argNames: []string{"got"}, exists: true}
}

type jsonPathChecker struct {
	path     string
	argNames []string
	exists   bool
}

func (c *jsonPathChecker) ArgNames() []string { return c.argNames }

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var raw []byte
	switch v := got.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return qt.BadCheckf("first argument is not a JSON string or []byte: %T", got)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("cannot decode JSON: %w", err)
	}
	note("path", c.path)

	val, err := jsonpath.Read(doc, c.path)
	if err != nil {
		return fmt.Errorf("path %s did not resolve: %w", c.path, err)
	}
	if c.exists {
		return nil
	}

	if !reflect.DeepEqual(val, args[0]) {
		note("value", val)
		return errors.New("value at path does not match")
	}
	return nil
}
