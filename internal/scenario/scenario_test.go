package scenario_test

import (
	"context"
	"strings"
	"testing"

	"plvm/internal/scenario"

	"github.com/nalgeon/be"
)

func TestScenarios(t *testing.T) {
	cases, err := scenario.Load("testdata/scenarios.md")
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 9)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			res := c.Run(context.Background())
			if !res.Passed() {
				t.Errorf("line %d: %s", c.Line, res.Failure)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	md := "# Title\n\n" +
		"## Test: one\n\n```pl\nreturn: 1;\n```\n\n```expect\n1\n```\n\n" +
		"## Other heading\n\n" +
		"## Test: two\n\n```pl\nreturn: 2;\n```\n"

	cases, err := scenario.Extract(md)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)
	be.Equal(t, cases[0].Name, "one")
	be.Equal(t, cases[0].Source, "return: 1;\n")
	be.Equal(t, cases[0].Expect, "1\n")
	be.Equal(t, cases[0].Line, 6)
	be.Equal(t, cases[1].Expect, "")
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		md   string
		want string
	}{
		{"fence outside", "```pl\nreturn: 1;\n```\n", "outside of test case"},
		{"unknown fence", "## Test: a\n\n```go\nx\n```\n", "unknown fence language 'go'"},
		{"no source", "## Test: a\n\n```expect\n1\n```\n", "has no pl fence"},
		{"two sources", "## Test: a\n\n```pl\nx\n```\n\n```pl\ny\n```\n", "multiple pl fences"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scenario.Extract(tt.md)
			be.Err(t, err, tt.want)
		})
	}
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name string
		c    scenario.Case
		want string
	}{
		{"wrong value", scenario.Case{Source: "return: 2;", Expect: "3"}, `expected "3", got "2"`},
		{"unexpected error", scenario.Case{Source: "throw \"x\";", Expect: "1"}, "unexpected error x"},
		{"missing error", scenario.Case{Source: "return: 1;", Expect: "error: x"}, "got result"},
		{"wrong output", scenario.Case{Source: "std.console.log(\"a\");", Output: "b\n"}, "expected output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.c.Run(context.Background())
			be.Equal(t, res.Passed(), false)
			be.True(t, strings.Contains(res.Failure, tt.want))
		})
	}
}
