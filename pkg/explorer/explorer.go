package explorer

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"plvm/pkg/ast"
	"plvm/pkg/inst"
	"plvm/pkg/interpreter"
	"plvm/pkg/lang"
	"plvm/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

var ErrUnknownVariable = errors.New("unknown variable")

// snapshots are encoded canonically so that equal memory gives equal bytes
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("explorer: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Entry describes one top level variable
type Entry struct {
	Name      string
	Type      string
	Modifiers string // "public const " style, "" when none
	Slot      string // "int#0"
}

// Explorer reads the global frame of a finished run
type Explorer struct {
	frame *interpreter.Frame
}

func New(frame *interpreter.Frame) *Explorer {
	return &Explorer{frame: frame}
}

// variables skips the std namespace
func (e *Explorer) variables() []*types.Variable {
	var vars []*types.Variable
	for _, v := range e.frame.Vars {
		if v.Type == lang.Namespace {
			continue
		}
		vars = append(vars, v)
	}
	return vars
}

// List returns the top level variables in declaration order
func (e *Explorer) List() []Entry {
	vars := e.variables()
	entries := make([]Entry, len(vars))
	for i, v := range vars {
		entries[i] = Entry{
			Name:      v.Name,
			Type:      v.Type.String(),
			Modifiers: v.Modifiers.String(),
			Slot:      fmt.Sprintf("%s#%d", v.Type.Kind(), v.Pos.Index),
		}
	}
	return entries
}

// Read returns the raw slot content of a top level variable
func (e *Explorer) Read(name string) (any, error) {
	v, ok := e.frame.Lookup(name)
	if !ok || v.Type == lang.Namespace {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	return e.frame.Read(v), nil
}

// Inspect writes one line per variable: modifiers, name, type and value
func (e *Explorer) Inspect(w io.Writer) error {
	for _, v := range e.variables() {
		_, err := fmt.Fprintf(w, "%svar %s: %s = %s\n", v.Modifiers, v.Name, v.Type, render(e.frame.Read(v)))
		if err != nil {
			return err
		}
	}
	return nil
}

func render(raw any) string {
	switch x := raw.(type) {
	case string:
		return strconv.Quote(x)
	case float32:
		return inst.FormatFloat(x)
	case float64:
		return inst.FormatDouble(x)
	default:
		return inst.Stringify(x)
	}
}

// Export converts variables into plain Go values. Only public variables
// are exported unless all is set. Objects become maps of their public
// members.
func (e *Explorer) Export(all bool) map[string]any {
	out := make(map[string]any)
	seen := make(map[*inst.ActionContext]bool)
	for _, v := range e.variables() {
		if !all && !v.Modifiers.IsPublic() {
			continue
		}
		out[v.Name] = export(v.Type, e.frame.Read(v), seen)
	}
	return out
}

func export(t types.TypeInstance, raw any, seen map[*inst.ActionContext]bool) any {
	cls, ok := t.(*ast.ClassType)
	obj, isObj := raw.(*inst.ActionContext)
	if !ok || !isObj {
		return lang.Export(raw)
	}

	if seen[obj] {
		return "<cycle>"
	}
	seen[obj] = true
	defer delete(seen, obj)

	fields := make(map[string]any)
	for _, m := range cls.Members() {
		if !m.Modifiers.IsPublic() {
			continue
		}
		fields[m.Name] = export(m.Type, obj.CurrentMem().Read(m.Type.Kind(), m.Pos.Index), seen)
	}
	return fields
}

// Snapshot encodes the public variables as canonical CBOR
func (e *Explorer) Snapshot() ([]byte, error) {
	return cborEncMode.Marshal(e.Export(false))
}

// ReadSnapshot decodes a snapshot written by Snapshot
func ReadSnapshot(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("explorer: unmarshal snapshot: %w", err)
	}
	return m, nil
}
