// Package scenario runs scripts described in markdown files.
//
// Each case is a heading "Test: <name>" followed by a pl fence holding the
// script, an optional expect fence holding the expected result and an
// optional output fence holding the expected console output. The expected
// result is the rendering of the returned value, "error: <text>" for a run
// that fails with a message containing text, or "compile error: <text>".
package scenario

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"plvm/pkg/interpreter"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fenceSource = "pl"
	fenceExpect = "expect"
	fenceOutput = "output"

	prefixError        = "error:"
	prefixCompileError = "compile error:"
)

// Case is one scenario extracted from markdown
type Case struct {
	Name   string
	Line   int    // line of the pl fence
	Source string // script
	Expect string // expected result, "" when not checked
	Output string // expected console output, "" when not checked
}

// Result is the outcome of running a Case
type Result struct {
	Case    Case
	Got     string // rendered result or error
	Output  string // console output of the run
	Err     error  // compile or run failure
	Failure string // empty when the case passed
}

func (r Result) Passed() bool {
	return r.Failure == ""
}

// Load reads the scenarios of a markdown file
func Load(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return Extract(string(data))
}

// Extract parses a markdown document and returns its scenarios in order
func Extract(markdown string) ([]Case, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test '%s' has no %s fence", current.Name, fenceSource)
		}
		cases = append(cases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := textOf(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{Name: strings.TrimPrefix(heading, "Test: ")}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := contentOf(n, source)
			line := lineOf(n, source)

			if current == nil {
				if language == "" {
					return ast.WalkContinue, nil
				}
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", line, language)
			}

			var dst *string
			switch language {
			case fenceSource:
				dst = &current.Source
				current.Line = line
			case fenceExpect:
				dst = &current.Expect
			case fenceOutput:
				dst = &current.Output
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, language, current.Name)
			}
			if *dst != "" {
				return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences found in test '%s'", line, language, current.Name)
			}
			*dst = content
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

// Run compiles and executes the case and compares what it produced
func (c Case) Run(ctx context.Context, opts ...interpreter.Option) Result {
	var out bytes.Buffer
	res := Result{Case: c}
	expect := strings.TrimSpace(c.Expect)

	it, err := interpreter.Compile(c.Source, append(opts, interpreter.WithWriter(&out))...)
	if err != nil {
		res.Err = err
		res.Got = prefixCompileError + " " + err.Error()
		res.Failure = matchError(expect, prefixCompileError, err)
		return res
	}

	v, err := it.Run(ctx)
	res.Output = out.String()
	if err != nil {
		res.Err = err
		res.Got = prefixError + " " + err.Error()
		res.Failure = matchError(expect, prefixError, err)
		return res
	}

	res.Got = v.String()
	switch {
	case strings.HasPrefix(expect, prefixError), strings.HasPrefix(expect, prefixCompileError):
		res.Failure = fmt.Sprintf("expected %q, got result %q", expect, res.Got)
	case c.Expect != "" && res.Got != expect:
		res.Failure = fmt.Sprintf("expected %q, got %q", expect, res.Got)
	case c.Output != "" && res.Output != c.Output:
		res.Failure = fmt.Sprintf("expected output %q, got %q", c.Output, res.Output)
	}
	return res
}

func matchError(expect, prefix string, err error) string {
	if !strings.HasPrefix(expect, prefix) {
		return fmt.Sprintf("unexpected %s %v", strings.TrimSuffix(prefix, ":"), err)
	}
	want := strings.TrimSpace(strings.TrimPrefix(expect, prefix))
	if !strings.Contains(err.Error(), want) {
		return fmt.Sprintf("expected %s containing %q, got %q", strings.TrimSuffix(prefix, ":"), want, err.Error())
	}
	return ""
}

// textOf extracts plain text content from a markdown node
func textOf(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// contentOf extracts the content of a fenced code block
func contentOf(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line a node starts on
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
