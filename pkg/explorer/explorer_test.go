package explorer_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"plvm/pkg/explorer"
	"plvm/pkg/interpreter"

	"github.com/nalgeon/be"
)

const script = `
public var a: int = 7;
var s: string = "x";
public const var pi: double = 3.5;
class P(x: int) { public var y: int = x * 2; var hidden: int = 1; }
public var p = new P(4);
let L = std.List<string>;
public var l = new L();
l.add("q");
`

func explore(t *testing.T) *explorer.Explorer {
	t.Helper()
	it, err := interpreter.Compile(script)
	be.Err(t, err, nil)
	_, err = it.Run(context.Background())
	be.Err(t, err, nil)
	return explorer.New(it.Frame())
}

func TestList(t *testing.T) {
	entries := explore(t).List()
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	be.Equal(t, names, []string{"a", "s", "pi", "p", "l"})

	be.Equal(t, entries[0], explorer.Entry{Name: "a", Type: "int", Modifiers: "public ", Slot: "int#0"})
	be.Equal(t, entries[2].Modifiers, "public const ")
	be.Equal(t, entries[2].Slot, "double#0")
	be.Equal(t, entries[3].Type, "P")
	be.Equal(t, entries[4].Type, "std.List<string>")
}

func TestRead(t *testing.T) {
	ex := explore(t)

	v, err := ex.Read("a")
	be.Err(t, err, nil)
	be.Equal(t, v, any(int32(7)))

	v, err = ex.Read("s")
	be.Err(t, err, nil)
	be.Equal(t, v, any("x"))

	_, err = ex.Read("std")
	be.Err(t, err, explorer.ErrUnknownVariable)
	_, err = ex.Read("nope")
	be.Err(t, err, explorer.ErrUnknownVariable)
}

func TestInspect(t *testing.T) {
	var out bytes.Buffer
	be.Err(t, explore(t).Inspect(&out), nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	be.Equal(t, len(lines), 5)
	be.Equal(t, lines[0], "public var a: int = 7")
	be.Equal(t, lines[1], `var s: string = "x"`)
	be.Equal(t, lines[2], "public const var pi: double = 3.5")
	be.Equal(t, lines[4], "public var l: std.List<string> = [q]")
}

func TestExport(t *testing.T) {
	ex := explore(t)

	public := ex.Export(false)
	be.Equal(t, public, map[string]any{
		"a":  int32(7),
		"pi": 3.5,
		"p":  map[string]any{"y": int32(8)},
		"l":  []any{"q"},
	})

	all := ex.Export(true)
	be.Equal(t, len(all), 5)
	be.Equal(t, all["s"], any("x"))
}

func TestSnapshot(t *testing.T) {
	ex := explore(t)

	data, err := ex.Snapshot()
	be.Err(t, err, nil)
	again, err := ex.Snapshot()
	be.Err(t, err, nil)
	be.Equal(t, data, again)

	m, err := explorer.ReadSnapshot(data)
	be.Err(t, err, nil)
	be.Equal(t, len(m), 4)
	be.Equal(t, m["a"], any(uint64(7)))
	be.Equal(t, m["pi"], any(3.5))
	be.Equal(t, m["l"], any([]any{"q"}))
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, err := explorer.ReadSnapshot([]byte{0xff, 0x00})
	be.Err(t, err, "unmarshal snapshot")
}
