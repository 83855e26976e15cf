package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	red       = color.New(color.FgRed).SprintFunc()
	brightRed = color.New(color.FgHiRed).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	blue      = color.New(color.FgBlue).SprintFunc()
	cyan      = color.New(color.FgCyan).SprintFunc()
	gray      = color.New(color.FgHiBlack).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	redBold   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

func EnableColor(enable bool) {
	color.NoColor = !enable
}

func RedText(text string) string   { return red(text) }
func GreenText(text string) string { return green(text) }
func GrayText(text string) string  { return gray(text) }
func BoldText(text string) string  { return bold(text) }

func Error(message string) string {
	return brightRed("Error: ") + message
}

func Success(message string) string {
	return green("Success: ") + message
}

func Position(line, col int) string {
	return cyan(fmt.Sprintf("%d:%d", line, col))
}

// Diagnostic renders a message pointing into source:
//
//	error: type mismatch
//	  --> file.pl:3:5
//	   |
//	 3 | var x: int = "a";
//	   |     ^
func Diagnostic(file, source string, line, col int, class, message string) string {
	var lines []string
	lines = append(lines, redBold("error: "+class))
	lines = append(lines, fmt.Sprintf("  %s %s:%d:%d", blue("-->"), file, line, col))

	src := strings.Split(source, "\n")
	if line < 1 || line > len(src) {
		return strings.Join(append(lines, "  "+message), "\n")
	}

	num := fmt.Sprintf("%d", line)
	margin := strings.Repeat(" ", len(num))
	text := strings.ReplaceAll(src[line-1], "\t", " ")
	caret := strings.Repeat(" ", max(col-1, 0)) + "^"

	lines = append(lines,
		blue(margin+" |"),
		blue(num+" |")+" "+text,
		blue(margin+" |")+" "+red(caret)+" "+message)
	return strings.Join(lines, "\n")
}
