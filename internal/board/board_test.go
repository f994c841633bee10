// internal/board/board_test.go
package board

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miniBoard = `
# ids in ring order: go=1 a=2 jail=3 b=4 chance=5 income tax=6 go to jail=7 c=8
go { type = go; cost = -200; not_purchaseable; }
a { type = property; cost = 100; color = brown; rent = 10; house1 = 50; }
b { type = property; cost = 100; color = brown; rent = 10; }
c { type = railroad; cost = 200; }
jail { type = jail; cost = 100; bailcost = 50; }
chance { type = chance; not_purchaseable; }
income tax { type = income_tax; not_purchaseable; }
go to jail { type = goto_jail; not_purchaseable; }

start = go -> a;
left = jail -> b;
top = chance -> income tax;
right = go to jail -> c;
`

type roster map[uuid.UUID]*models.Player

func (r roster) PlayerByID(id uuid.UUID) *models.Player { return r[id] }

// setupTestBoard builds the mini board with optional board-specific handlers and seats n players.
func setupTestBoard(t *testing.T, handlers Handlers, n int) (*Board, []*models.Player) {
	def, err := ParseDSL("mini", miniBoard)
	require.NoError(t, err)
	b, err := def.Build(nil)
	require.NoError(t, err)
	if handlers != nil {
		b.table = resolve(b.order, handlers)
	}
	r := roster{}
	players := make([]*models.Player, n)
	for i := range players {
		p := models.NewPlayer(uuid.New(), models.DefaultStartingMoney, r)
		r[p.ID] = p
		b.AddPlayer(p)
		players[i] = p
	}
	return b, players
}

// fixedDice returns the given faces in order, repeating the last one.
func fixedDice(faces ...int) Dice {
	i := 0
	return func(int) int {
		f := faces[min(i, len(faces)-1)]
		i++
		return f
	}
}

func TestRingIsClosed(t *testing.T) {
	b, _ := setupTestBoard(t, nil, 0)
	require.Len(t, b.Spaces(), 8)
	s := b.Start
	for i := 0; i < 8; i++ {
		assert.Equal(t, i+1, s.ID)
		s = s.Next
	}
	assert.Same(t, b.Start, s)
	assert.Same(t, b.Start.Prev, b.SpaceByID(8))
	assert.Equal(t, "go -> a -> jail -> b -> chance -> income tax -> go to jail -> c", b.Describe())
}

func TestMoveFiresOnpassPerStep(t *testing.T) {
	var passes, lands int
	counting := Handlers{
		EventPass: func(c *Context) ([]models.Status, error) { passes++; return nil, nil },
		EventLand: func(c *Context) ([]models.Status, error) { lands++; return nil, nil },
	}
	b, players := setupTestBoard(t, counting, 1)
	p := players[0]

	_, err := b.Move(p, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, passes)
	assert.Equal(t, 1, lands)
	assert.Equal(t, 6, b.Position(p).ID)

	passes = 0
	_, err = b.Move(p, -3)
	require.NoError(t, err)
	assert.Equal(t, 3, passes)
	assert.Equal(t, 3, b.Position(p).ID)
	assert.Same(t, b.Position(p), p.Space)

	// wraps around the ring
	_, err = b.Move(p, 8)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Position(p).ID)
}

func TestPassingGoPays(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	p := players[0]
	b.put(p, b.SpaceByID(8))

	st, err := b.Move(p, 2)
	require.NoError(t, err)
	require.NotEmpty(t, st)
	assert.Equal(t, models.StatusPassGo, st[0].Kind)
	assert.Equal(t, models.DefaultStartingMoney+200, p.Money)
}

func TestLookupChainPriority(t *testing.T) {
	var hit []string
	mark := func(name string) HandlerFunc {
		return func(c *Context) ([]models.Status, error) {
			hit = append(hit, name)
			return nil, nil
		}
	}
	b, players := setupTestBoard(t, Handlers{
		"onland_a": mark("board onland_a"),
		"onland":   mark("board onland"),
	}, 1)
	p := players[0]

	_, err := b.MoveTo(p, b.SpaceByID(2))
	require.NoError(t, err)
	_, err = b.MoveTo(p, b.SpaceByID(4))
	require.NoError(t, err)
	// a board-level generic handler wins over the universal named one
	_, err = b.MoveTo(p, b.SpaceByID(6))
	require.NoError(t, err)

	assert.Equal(t, []string{"board onland_a", "board onland", "board onland"}, hit)
	assert.Equal(t, models.DefaultStartingMoney, p.Money, "income tax was not charged")
	assert.Equal(t, 6, b.Position(p).ID, "built-in onland still records the position")
}

func TestUniversalNamedHandlerBeatsGeneric(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	p := players[0]

	st, err := b.MoveTo(p, b.SpaceByID(6))
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPayTax, st[0].Kind)
	assert.Equal(t, 150, st[0].Amount)
	assert.Equal(t, models.DefaultStartingMoney-150, p.Money)
}

func TestRentWithFullSet(t *testing.T) {
	b, players := setupTestBoard(t, nil, 2)
	owner, visitor := players[0], players[1]
	require.Equal(t, models.StatusBuySuccess, owner.Buy(b.SpaceByID(2)).Kind)
	require.Equal(t, models.StatusBuyNewSet, owner.Buy(b.SpaceByID(4)).Kind)
	ownerBefore := owner.Money

	st, err := b.MoveTo(visitor, b.SpaceByID(2))
	require.NoError(t, err)

	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPayOther, st[0].Kind)
	assert.Equal(t, models.DefaultStartingMoney-20, visitor.Money)
	assert.Equal(t, ownerBefore+20, owner.Money)
}

func TestUnownedLandingPrompts(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	st, err := b.MoveTo(players[0], b.SpaceByID(8))
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPromptToBuy, st[0].Kind)
	assert.Equal(t, 8, st[0].Space)
}

func TestRailroadRent(t *testing.T) {
	b, players := setupTestBoard(t, nil, 2)
	owner, visitor := players[0], players[1]
	owner.Buy(b.SpaceByID(8))

	_, err := b.MoveTo(visitor, b.SpaceByID(8))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStartingMoney-25, visitor.Money)
}

func TestGoToJail(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	p := players[0]

	_, err := b.MoveTo(p, b.SpaceByID(7))
	require.NoError(t, err)
	assert.True(t, p.InJail)
	assert.Equal(t, 3, b.Position(p).ID)
	assert.Equal(t, models.JailDoubleAttempts, p.JailDoublesRemaining)
}

func TestJailRollForcesBailOnThirdMiss(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	p := players[0]
	p.GotoJail(b.FindJail())
	b.put(p, b.FindJail())

	for i := 0; i < 2; i++ {
		b.Dice = fixedDice(1, 2)
		_, _, err := b.RollPlayer(p, 6)
		require.NoError(t, err)
		assert.True(t, p.InJail)
		assert.Equal(t, 3, b.Position(p).ID)
	}

	b.Dice = fixedDice(1, 2)
	_, st, err := b.RollPlayer(p, 6)
	require.NoError(t, err)
	assert.False(t, p.InJail)
	assert.Equal(t, models.StatusPayJail, st[0].Kind)
	assert.Equal(t, 6, b.Position(p).ID, "moved by the roll after paying bail")
}

func TestChanceCards(t *testing.T) {
	b, players := setupTestBoard(t, nil, 3)
	p, q, r := players[0], players[1], players[2]

	_, err := b.ExecuteChance(p, ChanceCard{Type: CardStealAll, Data: "10"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStartingMoney+20, p.Money)
	assert.Equal(t, models.DefaultStartingMoney-10, q.Money)
	assert.Equal(t, models.DefaultStartingMoney-10, r.Money)

	_, err = b.ExecuteChance(p, ChanceCard{Type: CardLose, Data: "20"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStartingMoney, p.Money)

	_, err = b.ExecuteChance(p, ChanceCard{Type: CardTeleport, Data: "B"})
	require.NoError(t, err)
	assert.Equal(t, 4, b.Position(p).ID)

	_, err = b.ExecuteChance(p, ChanceCard{Type: CardTeleportNextType, Data: "railroad"})
	require.NoError(t, err)
	assert.Equal(t, 8, b.Position(p).ID)

	st, err := b.ExecuteChance(p, ChanceCard{Type: CardTeleport, Data: "nowhere"})
	require.NoError(t, err)
	assert.Empty(t, st)
	assert.Equal(t, 8, b.Position(p).ID)
}

func TestTeleportNthOccurrence(t *testing.T) {
	src := `
x { type = void; not_purchaseable; }
y { type = void; not_purchaseable; }
start = x -> y;
left = x;
top = y;
right = x;
`
	def, err := ParseDSL("dup", src)
	require.NoError(t, err)
	b, err := def.Build(nil)
	require.NoError(t, err)

	assert.Equal(t, 1, b.teleportTarget("x").ID)
	assert.Equal(t, 3, b.teleportTarget("N=2 x").ID)
	assert.Equal(t, 5, b.teleportTarget("n=3 X").ID)
	assert.Nil(t, b.teleportTarget("N=4 x"))

	b.Pick = func(n int) int { return n - 1 }
	assert.Equal(t, 5, b.teleportTarget("_random").ID)
}

func TestEmptyDeckGainsNothing(t *testing.T) {
	b, players := setupTestBoard(t, nil, 1)
	b.chance = nil
	st, err := b.MoveTo(players[0], b.SpaceByID(5))
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.Equal(t, models.StatusDrawChance, st[0].Kind)
	assert.Equal(t, "None", st[0].Event)
	assert.Equal(t, models.DefaultStartingMoney, players[0].Money)
}

const utilityBoard = `
go { type = go; cost = -200; not_purchaseable; }
water works { type = utility; cost = 150; }
electric company { type = utility; cost = 150; }
luxury tax { type = luxury_tax; not_purchaseable; }

start = go;
left = water works;
top = electric company;
right = luxury tax;
`

func setupUtilityBoard(t *testing.T, n int) (*Board, []*models.Player) {
	t.Helper()
	def, err := ParseDSL("utility", utilityBoard)
	require.NoError(t, err)
	b, err := def.Build(nil)
	require.NoError(t, err)
	r := roster{}
	players := make([]*models.Player, n)
	for i := range players {
		p := models.NewPlayer(uuid.New(), models.DefaultStartingMoney, r)
		r[p.ID] = p
		b.AddPlayer(p)
		players[i] = p
	}
	return b, players
}

func TestUtilityRent(t *testing.T) {
	b, players := setupUtilityBoard(t, 2)
	owner, visitor := players[0], players[1]
	require.Equal(t, models.StatusBuySuccess, owner.Buy(b.SpaceByID(2)).Kind)
	owner.Buy(b.SpaceByID(3))
	require.Equal(t, 2, owner.Utilities())
	ownerBefore := owner.Money

	visitor.LastRoll = 7
	st, err := b.MoveTo(visitor, b.SpaceByID(2))
	require.NoError(t, err)

	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPayOther, st[0].Kind)
	assert.Equal(t, 14, st[0].Amount)
	assert.Equal(t, models.DefaultStartingMoney-14, visitor.Money)
	assert.Equal(t, ownerBefore+14, owner.Money)
}

func TestLuxuryTax(t *testing.T) {
	b, players := setupUtilityBoard(t, 1)
	p := players[0]

	st, err := b.MoveTo(p, b.SpaceByID(4))
	require.NoError(t, err)

	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPayTax, st[0].Kind)
	assert.Equal(t, 75, st[0].Amount)
	assert.Equal(t, "luxury", st[0].TaxName)
	assert.Equal(t, models.DefaultStartingMoney-75, p.Money)
}

func TestInstallmentsSurviveBoardRollOverride(t *testing.T) {
	calls := 0
	b, players := setupTestBoard(t, Handlers{
		EventRoll: func(c *Context) ([]models.Status, error) {
			calls++
			return nil, nil
		},
	}, 2)
	lender, borrower := players[0], players[1]
	l := models.NewLoan(lender.ID, borrower.ID, models.LoanTerms{
		Type: models.LoanPerTurn, Amount: 100, InterestType: models.InterestSimple, AmountPerTurn: 30,
	}, models.DealAccepted)
	require.NoError(t, lender.LoanPlayer(borrower, l))
	b.Dice = fixedDice(1, 2)

	_, _, err := b.RollPlayer(borrower, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 70, l.TotalOwed)
	assert.Equal(t, 1, b.Position(borrower).ID, "the override decides movement")
}
