package board

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/jason-s-yu/monopoly/internal/models"
)

// Chance card kinds.
const (
	CardMove             = "move"
	CardStealAll         = "steal-all"
	CardGiveAll          = "give-all"
	CardGain             = "gain"
	CardLose             = "lose"
	CardTeleport         = "teleport"
	CardTeleportNextType = "teleport-next-type"
)

// CardData is the argument of a card. Board files may write it as a number or a string.
type CardData string

func (d *CardData) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = CardData(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*d = CardData(n.String())
	return nil
}

// ChanceCard is one entry of a chance deck.
type ChanceCard struct {
	Event string   `json:"event" toml:"event"`
	Type  string   `json:"type" toml:"type"`
	Data  CardData `json:"data" toml:"data"`
}

var nthPrefix = regexp.MustCompile(`^n=(\d+)`)

// DrawChance picks a card uniformly. An empty deck yields a card that gains nothing.
func (b *Board) DrawChance() ChanceCard {
	if len(b.chance) == 0 {
		return ChanceCard{Event: "None", Type: CardGain, Data: "0"}
	}
	return b.chance[b.Pick(len(b.chance))]
}

// DrawAndExecute draws a card for p and applies it.
func (b *Board) DrawAndExecute(p *models.Player) ([]models.Status, error) {
	card := b.DrawChance()
	out := []models.Status{models.DrawChance(card.Event, p.ID)}
	st, err := b.ExecuteChance(p, card)
	return append(out, st...), err
}

// ExecuteChance applies card to p. Cards that name nothing on this board are dropped.
func (b *Board) ExecuteChance(p *models.Player, card ChanceCard) ([]models.Status, error) {
	log := b.logger.WithField("card", card.Event)
	switch card.Type {
	case CardMove, CardStealAll, CardGiveAll, CardGain, CardLose:
		amount, err := strconv.Atoi(strings.TrimSpace(string(card.Data)))
		if err != nil {
			log.Warnf("chance card %q has a non-numeric amount %q", card.Type, card.Data)
			return nil, nil
		}
		return b.applyAmountCard(p, card.Type, amount)
	case CardTeleport:
		dest := b.teleportTarget(string(card.Data))
		if dest == nil {
			log.Warnf("teleport target %q is not on this board", card.Data)
			return nil, nil
		}
		return b.MoveTo(p, dest)
	case CardTeleportNextType:
		t, err := models.ParseSpaceType(string(card.Data))
		if err != nil {
			log.Warnf("teleport-next-type: %v", err)
			return nil, nil
		}
		if dest := b.nextOfType(p, t); dest != nil {
			return b.MoveTo(p, dest)
		}
		return nil, nil
	default:
		log.Warnf("unknown chance card type %q", card.Type)
		return nil, nil
	}
}

func (b *Board) applyAmountCard(p *models.Player, kind string, amount int) ([]models.Status, error) {
	switch kind {
	case CardMove:
		return b.Move(p, amount)
	case CardGain:
		p.Gain(amount)
		if amount == 0 {
			return nil, nil
		}
		return []models.Status{models.MoneyGiven(p.ID, amount)}, nil
	case CardLose:
		p.PayBank(amount)
		return []models.Status{models.MoneyLost(p.ID, amount)}, nil
	}
	var out []models.Status
	for _, other := range b.players {
		if other.ID == p.ID || other.Bankrupt {
			continue
		}
		if kind == CardStealAll {
			other.Pay(amount, p)
			out = append(out, models.PayOther(amount, other.ID, p.ID))
		} else {
			p.Pay(amount, other)
			out = append(out, models.PayOther(amount, p.ID, other.ID))
		}
	}
	return out, nil
}

// teleportTarget resolves a teleport argument: a space name, "N=<k> name" for the
// k-th occurrence, or "_random".
func (b *Board) teleportTarget(arg string) *models.Space {
	name := strings.ToLower(strings.TrimSpace(arg))
	if name == "_random" {
		if len(b.order) == 0 {
			return nil
		}
		return b.order[b.Pick(len(b.order))]
	}
	n := 1
	if m := nthPrefix.FindStringSubmatch(name); m != nil {
		n, _ = strconv.Atoi(m[1])
		name = strings.TrimSpace(strings.TrimPrefix(name, m[0]))
	}
	if n < 1 {
		return nil
	}
	return b.SpaceByName(name, n)
}

// nextOfType scans forward from the space after p's position, wrapping round the ring.
func (b *Board) nextOfType(p *models.Player, t models.SpaceType) *models.Space {
	cur := b.positions[p.ID]
	if cur == nil {
		return nil
	}
	s := cur.Next
	for i := 0; i < len(b.order); i++ {
		if s.Type == t {
			return s
		}
		s = s.Next
	}
	return nil
}
