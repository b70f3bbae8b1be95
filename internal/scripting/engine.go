package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM holding the scene rules.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under
// scriptsDir/scene. A missing directory leaves the built-in rules in force.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(scriptsDir, "scene")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scene scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the engine's VM.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// CutContext is what the cutting rule sees each tick.
type CutContext struct {
	Elapsed float64 // seconds since cutting started
	Scale   float64 // configured impulse per second of cutting
	Tick    int
}

// CutImpulse calls the Lua cut_impulse function and returns the impulse
// magnitude to push the trunk with. Without the function, or when it
// fails, it returns Scale * Elapsed.
func (e *Engine) CutImpulse(ctx CutContext) float64 {
	fallback := ctx.Scale * ctx.Elapsed
	fn := e.vm.GetGlobal("cut_impulse")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("elapsed", lua.LNumber(ctx.Elapsed))
	t.RawSetString("scale", lua.LNumber(ctx.Scale))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua cut_impulse error", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		e.log.Error("lua cut_impulse returned a non-number", zap.String("type", ret.Type().String()))
		return fallback
	}
	return float64(n)
}

// ImpactContext describes one contact between monitored bodies.
type ImpactContext struct {
	A, B    string
	Impulse float64
}

// DamagingImpact calls the Lua is_damaging_impact function. Without the
// function, or when it fails, any positive impulse is damaging.
func (e *Engine) DamagingImpact(ctx ImpactContext) bool {
	fallback := ctx.Impulse > 0
	fn := e.vm.GetGlobal("is_damaging_impact")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("a", lua.LString(ctx.A))
	t.RawSetString("b", lua.LString(ctx.B))
	t.RawSetString("impulse", lua.LNumber(ctx.Impulse))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua is_damaging_impact error", zap.Error(err))
		return fallback
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(ret)
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
