package scripting

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tornadoscript/tornado/internal/param"
	"github.com/tornadoscript/tornado/internal/tornado"
	"github.com/tornadoscript/tornado/internal/world"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// spawnDistance is how far ahead of the player console spawns happen.
const spawnDistance = 180

var builtinNames = map[string]struct{}{
	"spawn": {}, "summon": {}, "toggle": {}, "removeall": {},
	"set": {}, "reset": {}, "ls": {}, "list": {}, "help": {}, "?": {}, "lua": {},
}

type builtin struct {
	usage string
	help  string
	run   func(args []string, rest string) (string, error)
}

// Console parses console lines and runs built-in or script commands.
type Console struct {
	engine   *Engine
	ctl      Controls
	log      *zap.Logger
	builtins map[string]builtin
}

func NewConsole(engine *Engine, ctl Controls, log *zap.Logger) *Console {
	c := &Console{engine: engine, ctl: ctl, log: log}
	list := builtin{usage: "ls", help: "list variables", run: c.list}
	help := builtin{usage: "help", help: "list commands", run: c.help}
	c.builtins = map[string]builtin{
		"spawn":     {usage: "spawn", help: "spawn a tornado ahead of the player", run: c.spawn},
		"summon":    {usage: "summon", help: "move the newest tornado to the player", run: c.summon},
		"toggle":    {usage: "toggle", help: "spawn a tornado, or remove it when only one is allowed", run: c.toggle},
		"removeall": {usage: "removeall", help: "remove every tornado", run: c.removeAll},
		"set":       {usage: "set <name> <value>", help: "change a variable", run: c.set},
		"reset":     {usage: "reset <name>", help: "restore a variable's default", run: c.reset},
		"ls":        list,
		"list":      list,
		"help":      help,
		"?":         help,
		"lua":       {usage: "lua <chunk>", help: "run a Lua chunk", run: c.lua},
	}
	return c
}

// Exec runs one console line and returns its reply.
func (c *Console) Exec(line string) (string, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])

	if b, ok := c.builtins[name]; ok {
		out, err := b.run(fields[1:], rest)
		if errors.Is(err, ErrUsage) {
			return "", fmt.Errorf("%w: %s", ErrUsage, b.usage)
		}
		return out, err
	}
	if c.engine != nil && c.engine.HasCommand(name) {
		return c.engine.CallCommand(name, fields[1:])
	}
	return "", fmt.Errorf("%q: %w", fields[0], ErrUnknownCommand)
}

func formatPos(p world.Vec3) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", p[0], p[1], p[2])
}

func (c *Console) spawn(_ []string, _ string) (string, error) {
	v, err := c.ctl.Factory.SpawnAhead(spawnDistance)
	if err != nil {
		return "", err
	}
	return "tornado spawned at " + formatPos(v.Position()), nil
}

func summonToPlayer(ctl Controls) error {
	player, ok := ctl.World.Player()
	if !ok {
		return tornado.ErrNoPlayer
	}
	return ctl.Factory.Summon(player.Position())
}

func (c *Console) summon(_ []string, _ string) (string, error) {
	if err := summonToPlayer(c.ctl); err != nil {
		return "", err
	}
	return "tornado summoned", nil
}

func (c *Console) toggle(_ []string, _ string) (string, error) {
	v, err := c.ctl.Factory.Toggle()
	if err != nil {
		return "", err
	}
	if v == nil {
		return "tornadoes removed", nil
	}
	return "tornado spawned at " + formatPos(v.Position()), nil
}

func (c *Console) removeAll(_ []string, _ string) (string, error) {
	n := c.ctl.Factory.ActiveCount()
	c.ctl.Factory.RemoveAll()
	return fmt.Sprintf("removed %d tornadoes", n), nil
}

func (c *Console) set(args []string, _ string) (string, error) {
	if len(args) != 2 {
		return "", ErrUsage
	}
	if err := c.ctl.Params.Parse(args[0], args[1]); err != nil {
		return "", err
	}
	v, _ := c.ctl.Params.Lookup(args[0])
	return fmt.Sprintf("%s = %s", v.Name, v.Value), nil
}

func (c *Console) reset(args []string, _ string) (string, error) {
	if len(args) != 1 {
		return "", ErrUsage
	}
	if err := c.ctl.Params.Reset(args[0]); err != nil {
		return "", err
	}
	v, _ := c.ctl.Params.Lookup(args[0])
	return fmt.Sprintf("%s = %s", v.Name, v.Value), nil
}

func (c *Console) list(_ []string, _ string) (string, error) {
	var b strings.Builder
	c.ctl.Params.Each(func(v *param.Var) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s = %s (%s", v.Name, v.Value, v.Value.Kind)
		if v.ReadOnly {
			b.WriteString(", read-only")
		}
		b.WriteByte(')')
	})
	return b.String(), nil
}

func (c *Console) help(_ []string, _ string) (string, error) {
	lines := make([]string, 0, len(c.builtins))
	seen := map[string]bool{}
	for _, b := range c.builtins {
		if seen[b.usage] {
			continue
		}
		seen[b.usage] = true
		lines = append(lines, fmt.Sprintf("%-20s %s", b.usage, b.help))
	}
	if c.engine != nil {
		for name, h := range c.engine.Commands() {
			lines = append(lines, fmt.Sprintf("%-20s %s", name, h))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

func (c *Console) lua(_ []string, rest string) (string, error) {
	if rest == "" {
		return "", ErrUsage
	}
	if c.engine == nil {
		return "", errors.New("lua is not available")
	}
	return c.engine.DoString(rest)
}
