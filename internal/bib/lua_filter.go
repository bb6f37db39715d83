package bib

import (
	"context"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// luaFilterTimeout bounds each predicate evaluation; a filter script must
// never be able to hang a build.
const luaFilterTimeout = time.Second

// FilterDiagnostics applies a user-supplied Lua predicate to each
// diagnostic and keeps those for which it returns true. The predicate
// runs sandboxed (base, string, table and math libraries only) with the
// globals text, file, line and kind bound per record. An empty predicate
// keeps everything.
func FilterDiagnostics(diags []Diagnostic, predicate string) ([]Diagnostic, error) {
	pred := strings.TrimSpace(predicate)
	if pred == "" {
		return diags, nil
	}
	if !strings.Contains(pred, "return") {
		pred = "return (" + pred + ")"
	}

	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		keep, err := evalDiagnosticPredicate(pred, d)
		if err != nil {
			return nil, fmt.Errorf("diagnostic filter: %v", err)
		}
		if keep {
			out = append(out, d)
		}
	}
	return out, nil
}

func evalDiagnosticPredicate(pred string, d Diagnostic) (bool, error) {
	L := newFilterState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), luaFilterTimeout)
	defer cancel()
	L.SetContext(ctx)

	L.SetGlobal("text", lua.LString(d.Text))
	L.SetGlobal("file", lua.LString(d.File))
	L.SetGlobal("line", lua.LNumber(d.Line))
	L.SetGlobal("kind", lua.LString(d.Kind))

	if err := L.DoString(pred); err != nil {
		return false, err
	}
	if L.GetTop() == 0 {
		return false, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// newFilterState builds a restricted interpreter: no io, no os, no
// package loading.
func newFilterState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	libs := []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	return L
}
