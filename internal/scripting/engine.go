package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/tornado"
	"github.com/tornadoscript/tornado/internal/world"
)

// WeatherSetter is implemented by hosts that let scripts change the weather.
type WeatherSetter interface {
	SetWeather(w world.Weather)
}

// Controls is everything console commands and scripts may act on.
type Controls struct {
	Factory *tornado.Factory
	Params  *param.Store
	World   world.Query
	Weather WeatherSetter // nil when the host has fixed weather
}

// scriptCommand is a console command defined by a Lua script.
type scriptCommand struct {
	help string
	fn   *lua.LFunction
}

// Engine wraps a single gopher-lua VM for console scripting.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	ctl      Controls
	commands map[string]scriptCommand
	out      []string // print output of the running chunk
}

// NewEngine creates a Lua engine exposing the tornado module and loads every
// script in scriptsDir/console.
func NewEngine(scriptsDir string, ctl Controls, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	if err := openSafeLibs(vm); err != nil {
		vm.Close()
		return nil, err
	}
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, ctl: ctl, commands: make(map[string]scriptCommand)}
	e.openTornado()

	if scriptsDir != "" {
		if err := e.loadDir(filepath.Join(scriptsDir, "console")); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load console scripts: %w", err)
		}
	}
	return e, nil
}

// openSafeLibs opens the libraries chunks may use. os, io and debug stay
// closed since chunks also arrive over the remote console.
func openSafeLibs(vm *lua.LState) error {
	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		err := vm.CallByParam(lua.P{Fn: vm.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open lua %s: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile"} {
		vm.SetGlobal(name, lua.LNil)
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
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

func (e *Engine) openTornado() {
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"spawn":            e.luaSpawn,
		"summon":           e.luaSummon,
		"remove_all":       e.luaRemoveAll,
		"count":            e.luaCount,
		"get":              e.luaGet,
		"set":              e.luaSet,
		"weather":          e.luaWeather,
		"print":            e.luaPrint,
		"register_command": e.luaRegisterCommand,
	})
	e.vm.SetGlobal("tornado", mod)
	e.vm.PreloadModule("tornado", func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	// chunks run from the console print into the console
	e.vm.SetGlobal("print", e.vm.NewFunction(e.luaPrint))
}

// DoString runs a chunk and returns whatever it printed.
func (e *Engine) DoString(chunk string) (string, error) {
	e.out = e.out[:0]
	err := e.vm.DoString(chunk)
	return e.flush(), err
}

// HasCommand reports whether a script registered name.
func (e *Engine) HasCommand(name string) bool {
	_, ok := e.commands[strings.ToLower(name)]
	return ok
}

// Commands returns the script commands and their help text.
func (e *Engine) Commands() map[string]string {
	out := make(map[string]string, len(e.commands))
	for name, c := range e.commands {
		out[name] = c.help
	}
	return out
}

// CallCommand runs a script command with its arguments. A string returned by
// the Lua function is appended to the printed output.
func (e *Engine) CallCommand(name string, args []string) (string, error) {
	c, ok := e.commands[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownCommand)
	}
	t := e.vm.NewTable()
	for _, a := range args {
		t.Append(lua.LString(a))
	}

	e.out = e.out[:0]
	if err := e.vm.CallByParam(lua.P{
		Fn:      c.fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Debug("lua command failed", zap.String("command", name), zap.Error(err))
		return e.flush(), fmt.Errorf("%s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if s, ok := ret.(lua.LString); ok && s != "" {
		e.out = append(e.out, string(s))
	}
	return e.flush(), nil
}

func (e *Engine) flush() string {
	s := strings.Join(e.out, "\n")
	e.out = e.out[:0]
	return s
}

// ── tornado module ──────────────────────────────────────────────

// pushResult follows the Lua convention of true on success and nil plus a
// message on failure.
func pushResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (e *Engine) luaSpawn(L *lua.LState) int {
	dist := float32(L.OptNumber(1, spawnDistance))
	_, err := e.ctl.Factory.SpawnAhead(dist)
	return pushResult(L, err)
}

func (e *Engine) luaSummon(L *lua.LState) int {
	return pushResult(L, summonToPlayer(e.ctl))
}

func (e *Engine) luaRemoveAll(L *lua.LState) int {
	e.ctl.Factory.RemoveAll()
	return 0
}

func (e *Engine) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.ctl.Factory.ActiveCount()))
	return 1
}

func (e *Engine) luaGet(L *lua.LState) int {
	name := L.CheckString(1)
	v, ok := e.ctl.Params.Lookup(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	switch v.Value.Kind {
	case param.KindInt:
		L.Push(lua.LNumber(v.Value.I))
	case param.KindFloat:
		L.Push(lua.LNumber(v.Value.F))
	case param.KindBool:
		L.Push(lua.LBool(v.Value.B))
	default:
		L.Push(lua.LString(v.Value.S))
	}
	return 1
}

func (e *Engine) luaSet(L *lua.LState) int {
	name := L.CheckString(1)
	val := L.CheckAny(2)
	return pushResult(L, e.ctl.Params.Parse(name, val.String()))
}

func (e *Engine) luaWeather(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(e.ctl.World.Weather().String()))
		return 1
	}
	name := L.CheckString(1)
	wt, ok := world.ParseWeather(strings.ToLower(name))
	if !ok {
		return pushResult(L, fmt.Errorf("unknown weather %q", name))
	}
	if e.ctl.Weather == nil {
		return pushResult(L, errors.New("weather is fixed on this host"))
	}
	e.ctl.Weather.SetWeather(wt)
	return pushResult(L, nil)
}

func (e *Engine) luaPrint(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	e.out = append(e.out, strings.Join(parts, "\t"))
	return 0
}

func (e *Engine) luaRegisterCommand(L *lua.LState) int {
	name := strings.ToLower(L.CheckString(1))
	help := L.CheckString(2)
	fn := L.CheckFunction(3)
	if _, builtin := builtinNames[name]; builtin {
		L.ArgError(1, "cannot replace built-in command "+name)
		return 0
	}
	e.commands[name] = scriptCommand{help: help, fn: fn}
	e.log.Debug("lua command registered", zap.String("command", name))
	return 0
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
