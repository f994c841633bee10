package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/jason-s-yu/monopoly/internal/models"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Script is a compiled board hook file. Every global function whose name starts with
// an event name ("onland", "onland_free_parking", ...) becomes a board-specific handler.
//
// A hook receives a context table:
//
//	function onland_free_parking(ctx)
//	  ctx.gain(100)
//	  ctx.default()
//	end
//
// Fields: event, space, space_id, space_type, cost, owner, player, roll, d1, d2, in_jail.
// Functions: money(), gain(n), lose(n), move(n), teleport(name), go_to_jail(), default().
type Script struct {
	name  string
	proto *lua.FunctionProto
}

// CompileScript parses and compiles Lua source once so every game can run it in its own state.
func CompileScript(name string, r io.Reader) (*Script, error) {
	chunk, err := parse.Parse(r, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &Script{name: name, proto: proto}, nil
}

// LuaHooks is one running instance of a Script.
type LuaHooks struct {
	L        *lua.LState
	handlers Handlers
}

// Open runs the script in a fresh state and collects its hook functions.
func (s *Script) Open() (*LuaHooks, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua library %s: %w", lib.name, err)
		}
	}

	L.Push(L.NewFunctionFromProto(s.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("run %s: %w", s.name, err)
	}

	h := &LuaHooks{L: L, handlers: make(Handlers)}
	L.G.Global.ForEach(func(k, v lua.LValue) {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			return
		}
		name := k.String()
		for _, ev := range events {
			if name == ev || strings.HasPrefix(name, ev+"_") {
				h.handlers[name] = h.handler(ev, fn)
				return
			}
		}
	})
	return h, nil
}

// Handlers returns the hook functions keyed by their global name.
func (h *LuaHooks) Handlers() Handlers {
	return h.handlers
}

func (h *LuaHooks) Close() {
	h.L.Close()
}

func (h *LuaHooks) handler(event string, fn *lua.LFunction) HandlerFunc {
	return func(c *Context) ([]models.Status, error) {
		var out []models.Status
		var goErr error
		ctx := h.context(c, event, &out, &goErr)
		if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, ctx); err != nil {
			if goErr != nil {
				return out, goErr
			}
			return out, fmt.Errorf("lua %s at %q: %w", event, c.Space.Name, err)
		}
		return out, nil
	}
}

// context builds the table handed to a hook. Statuses produced by its functions are
// appended to out; a Go error aborts the hook and is kept in goErr.
func (h *LuaHooks) context(c *Context, event string, out *[]models.Status, goErr *error) *lua.LTable {
	L := h.L
	t := L.NewTable()
	L.SetField(t, "event", lua.LString(event))
	L.SetField(t, "space", lua.LString(c.Space.Name))
	L.SetField(t, "space_id", lua.LNumber(c.Space.ID))
	L.SetField(t, "space_type", lua.LString(c.Space.Type.String()))
	L.SetField(t, "cost", lua.LNumber(c.Space.Cost))
	L.SetField(t, "owner", lua.LString(idOrEmpty(c.Space)))
	L.SetField(t, "player", lua.LString(c.Player.ID.String()))
	L.SetField(t, "roll", lua.LNumber(c.Roll.Total()))
	L.SetField(t, "d1", lua.LNumber(c.Roll.D1))
	L.SetField(t, "d2", lua.LNumber(c.Roll.D2))
	L.SetField(t, "in_jail", lua.LBool(c.Player.InJail))

	run := func(L *lua.LState, st []models.Status, err error) int {
		*out = append(*out, st...)
		if err != nil {
			*goErr = err
			L.RaiseError("%v", err)
		}
		return 0
	}
	// The last argument is read so both ctx.gain(5) and ctx:gain(5) work.
	L.SetFuncs(t, map[string]lua.LGFunction{
		"money": func(L *lua.LState) int {
			L.Push(lua.LNumber(c.Player.Money))
			return 1
		},
		"gain": func(L *lua.LState) int {
			n := L.CheckInt(L.GetTop())
			c.Player.Gain(n)
			return run(L, []models.Status{models.MoneyGiven(c.Player.ID, n)}, nil)
		},
		"lose": func(L *lua.LState) int {
			n := L.CheckInt(L.GetTop())
			c.Player.PayBank(n)
			return run(L, []models.Status{models.MoneyLost(c.Player.ID, n)}, nil)
		},
		"move": func(L *lua.LState) int {
			st, err := c.Board.Move(c.Player, L.CheckInt(L.GetTop()))
			return run(L, st, err)
		},
		"teleport": func(L *lua.LState) int {
			dest := c.Board.teleportTarget(L.CheckString(L.GetTop()))
			if dest == nil {
				c.Board.logger.Warnf("lua teleport target %q is not on this board", L.CheckString(L.GetTop()))
				return 0
			}
			st, err := c.Board.MoveTo(c.Player, dest)
			return run(L, st, err)
		},
		"go_to_jail": func(L *lua.LState) int {
			st, err := onlandGotoJail(c)
			return run(L, st, err)
		},
		"default": func(L *lua.LState) int {
			fn := Universal[event+"_"+c.Space.Key()]
			if fn == nil {
				fn = Universal[event]
			}
			if fn == nil {
				return 0
			}
			st, err := fn(c)
			return run(L, st, err)
		},
	})
	return t
}

func idOrEmpty(s *models.Space) string {
	if !s.IsOwned() {
		return ""
	}
	return s.Owner.String()
}
