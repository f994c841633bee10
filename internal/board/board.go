// Package board holds the space ring, player positions, movement and the per-space
// event dispatch that turns landing, passing and rolling into statuses.
package board

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

// Dice returns a number in [1, sides].
type Dice func(sides int) int

// RandomDice rolls with math/rand.
func RandomDice(sides int) int {
	return rand.IntN(sides) + 1
}

// Board is one game's ring of spaces together with where every player stands.
// It is not safe for concurrent use; the owning game serialises access.
type Board struct {
	Name  string
	Start *models.Space

	Dice Dice
	// Pick returns a number in [0, n). Used for chance draws and random teleports.
	Pick func(n int) int

	spaces    map[int]*models.Space
	order     []*models.Space
	positions map[uuid.UUID]*models.Space
	players   []*models.Player
	chance    []ChanceCard
	table     dispatchTable
	hooks     *LuaHooks
	logger    *logrus.Entry
}

// New builds a board around an already closed ring starting at start.
func New(name string, start *models.Space, chance []ChanceCard, handlers Handlers, logger *logrus.Entry) (*Board, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	b := &Board{
		Name:      name,
		Start:     start,
		Dice:      RandomDice,
		Pick:      rand.IntN,
		spaces:    make(map[int]*models.Space),
		positions: make(map[uuid.UUID]*models.Space),
		chance:    chance,
		logger:    logger.WithField("board", name),
	}
	cur := start
	for {
		if cur.Next == nil || cur.Next.Prev != cur {
			return nil, fmt.Errorf("after space %q: %w", cur.Name, apperror.ErrBrokenRing)
		}
		b.spaces[cur.ID] = cur
		b.order = append(b.order, cur)
		cur = cur.Next
		if cur == start {
			break
		}
		if len(b.order) > 10000 {
			return nil, fmt.Errorf("ring does not return to %q: %w", start.Name, apperror.ErrBrokenRing)
		}
	}
	b.table = resolve(b.order, handlers)
	return b, nil
}

// Close releases the board's hook state.
func (b *Board) Close() {
	if b.hooks != nil {
		b.hooks.Close()
		b.hooks = nil
	}
}

// Spaces returns every space in ring order from the start space.
func (b *Board) Spaces() []*models.Space {
	return b.order
}

// SpaceByID implements models.SpaceLookup.
func (b *Board) SpaceByID(id int) *models.Space {
	return b.spaces[id]
}

// SpaceByName returns the n-th space (1-based) in ring order whose name matches, case-insensitively.
func (b *Board) SpaceByName(name string, n int) *models.Space {
	key := models.NormalizeName(name)
	seen := 0
	for _, s := range b.order {
		if s.Key() == key {
			seen++
			if seen == n {
				return s
			}
		}
	}
	return nil
}

// FindJail returns the first jail in ring order.
func (b *Board) FindJail() *models.Space {
	for _, s := range b.order {
		if s.Type == models.SpaceJail {
			return s
		}
	}
	return nil
}

// AddPlayer places p on the start space.
func (b *Board) AddPlayer(p *models.Player) {
	b.players = append(b.players, p)
	b.put(p, b.Start)
}

// Players returns every player seated on the board in join order.
func (b *Board) Players() []*models.Player {
	return b.players
}

// Position is where p currently stands, or nil when p is not on the board.
func (b *Board) Position(p *models.Player) *models.Space {
	return b.positions[p.ID]
}

func (b *Board) put(p *models.Player, s *models.Space) {
	b.positions[p.ID] = s
	p.Space = s
}

// Occupants lists the players standing on s.
func (b *Board) Occupants(s *models.Space) []uuid.UUID {
	var out []uuid.UUID
	for _, p := range b.players {
		if b.positions[p.ID] == s {
			out = append(out, p.ID)
		}
	}
	return out
}

// Move walks amount spaces forward, or backward when negative, firing onpass on every
// space stepped onto and onland on the last one.
func (b *Board) Move(p *models.Player, amount int) ([]models.Status, error) {
	cur := b.positions[p.ID]
	if cur == nil {
		return nil, fmt.Errorf("move %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	out, err := b.RunEvent(EventLeave, cur, p, Roll{})
	if err != nil {
		return out, err
	}
	back := amount < 0
	steps := amount
	if back {
		steps = -amount
	}
	for i := 0; i < steps; i++ {
		cur = cur.Step(back)
		if cur == nil {
			return out, fmt.Errorf("move %s: %w", p.ID, apperror.ErrBrokenRing)
		}
		st, err := b.RunEvent(EventPass, cur, p, Roll{})
		out = append(out, st...)
		if err != nil {
			return out, err
		}
	}
	st, err := b.RunEvent(EventLand, cur, p, Roll{})
	return append(out, st...), err
}

// MoveTo teleports p to s, firing only onleave and onland.
func (b *Board) MoveTo(p *models.Player, s *models.Space) ([]models.Status, error) {
	cur := b.positions[p.ID]
	if cur == nil {
		return nil, fmt.Errorf("teleport %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	out, err := b.RunEvent(EventLeave, cur, p, Roll{})
	if err != nil {
		return out, err
	}
	st, err := b.RunEvent(EventLand, s, p, Roll{})
	return append(out, st...), err
}

// Roll is the dice result passed to onroll handlers.
type Roll struct {
	D1, D2 int
}

func (r Roll) Total() int { return r.D1 + r.D2 }

func (r Roll) Doubles() bool { return r.D1 == r.D2 }

// RollPlayer rolls two dice for p, settles loan interest, installments and overdue
// loans, then fires onroll on p's space.
func (b *Board) RollPlayer(p *models.Player, sides int) (Roll, []models.Status, error) {
	r := Roll{D1: b.Dice(sides), D2: b.Dice(sides)}
	p.LastRoll = r.Total()

	p.CompoundLoans()
	p.PayTurnLoans()
	var out []models.Status
	for _, due := range p.AdvanceLoanDeadlines() {
		out = append(out, p.ForceRepay(due))
	}

	cur := b.positions[p.ID]
	if cur == nil {
		return r, out, fmt.Errorf("roll %s: %w", p.ID, apperror.ErrPlayerOffBoard)
	}
	st, err := b.RunEvent(EventRoll, cur, p, r)
	return r, append(out, st...), err
}

// Snapshot is the board as sent in the board response.
type Snapshot struct {
	Name         string         `json:"name"`
	Spaces       []SpaceView    `json:"spaces"`
	PlayerSpaces map[string]int `json:"playerSpaces"`
}

// SpaceView adds the occupants to a space.
type SpaceView struct {
	*models.Space
	Players []string `json:"players"`
}

func (b *Board) Snapshot() Snapshot {
	snap := Snapshot{Name: b.Name, PlayerSpaces: make(map[string]int, len(b.positions))}
	for _, s := range b.order {
		occ := b.Occupants(s)
		ids := make([]string, 0, len(occ))
		for _, id := range occ {
			ids = append(ids, id.String())
		}
		snap.Spaces = append(snap.Spaces, SpaceView{Space: s, Players: ids})
	}
	for id, s := range b.positions {
		snap.PlayerSpaces[id.String()] = s.ID
	}
	return snap
}

// Describe renders the ring as "a -> b -> ..." for diagnostics.
func (b *Board) Describe() string {
	names := make([]string, 0, len(b.order))
	for _, s := range b.order {
		names = append(names, s.Name)
	}
	return strings.Join(names, " -> ")
}
