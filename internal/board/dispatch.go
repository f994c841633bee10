package board

import (
	"github.com/jason-s-yu/monopoly/internal/models"
)

// Event names fired by the board.
const (
	EventLand  = "onland"
	EventPass  = "onpass"
	EventLeave = "onleave"
	EventRoll  = "onroll"
)

var events = []string{EventLand, EventPass, EventLeave, EventRoll}

// Context is what a handler sees for one event.
type Context struct {
	Board  *Board
	Space  *models.Space
	Player *models.Player
	Roll   Roll
}

// HandlerFunc reacts to an event and reports what happened.
type HandlerFunc func(c *Context) ([]models.Status, error)

// Handlers maps handler names ("onland", "onland_go_to_jail", ...) to functions.
type Handlers map[string]HandlerFunc

// dispatchTable is keyed by event, then normalised space name.
type dispatchTable map[string]map[string]HandlerFunc

// builtins run before the resolved handler for every space.
var builtins = map[string]HandlerFunc{
	EventLand: landBuiltin,
}

// landBuiltin records the player's new position.
func landBuiltin(c *Context) ([]models.Status, error) {
	c.Board.put(c.Player, c.Space)
	return nil, nil
}

// resolve picks, for every event and every distinct space name, the single handler that
// wins the lookup chain: board-specific "E_name", board-specific "E", universal "E_name",
// universal "E".
func resolve(spaces []*models.Space, board Handlers) dispatchTable {
	table := make(dispatchTable, len(events))
	tiers := []Handlers{board, Universal}
	for _, ev := range events {
		byName := make(map[string]HandlerFunc)
		for _, s := range spaces {
			key := s.Key()
			if _, done := byName[key]; done {
				continue
			}
		lookup:
			for _, h := range tiers {
				for _, name := range []string{ev + "_" + key, ev} {
					if fn, ok := h[name]; ok {
						byName[key] = fn
						break lookup
					}
				}
			}
		}
		table[ev] = byName
	}
	return table
}

// RunEvent fires event at s for p: the built-in for the event first, then the resolved handler.
func (b *Board) RunEvent(event string, s *models.Space, p *models.Player, r Roll) ([]models.Status, error) {
	c := &Context{Board: b, Space: s, Player: p, Roll: r}
	var out []models.Status
	if fn, ok := builtins[event]; ok {
		st, err := fn(c)
		out = append(out, st...)
		if err != nil {
			return out, err
		}
	}
	if fn := b.table[event][s.Key()]; fn != nil {
		st, err := fn(c)
		out = append(out, st...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
