package board

import (
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonBoard = `{
  "spaces": {
    "go": {"type": "go", "cost": -200, "not_purchaseable": true},
    "lot": {"type": "property", "cost": 60, "color": "Brown", "rent": [2, 10, 30, 90, 160, 250], "house_cost": 50, "hotel_cost": 50},
    "jail": {"type": "jail", "bailcost": 50, "not_purchaseable": true},
    "park": {"type": "free_parking", "not_purchaseable": true, "jackpot": "yes"}
  },
  "start": "go -> lot",
  "left": "jail",
  "top": "park",
  "right": "lot"
}`

const tomlBoard = `
start = "go -> lot"
left = "jail"
top = "park"
right = "lot"

[spaces.go]
type = "go"
cost = -200
not_purchaseable = true

[spaces.lot]
type = "property"
cost = 60
rent = 2
color = "red"

[spaces.jail]
type = "jail"
bailcost = 50

[spaces.park]
type = "free_parking"
`

const chanceDeck = `[{"event": "dividend", "type": "gain", "data": 50}, {"event": "back", "type": "move", "data": "-1"}]`

func TestParseDSLAttributes(t *testing.T) {
	def, err := ParseDSL("x", `
mediterranean avenue { type = property; cost = 60; color = Dark Blue; rent = [2 10 30 90 160 250]; house_cost = 50; }
jail { type = JAIL; bailcost = 50; custom = thing; }
start = mediterranean avenue; left = jail; top = jail; right = jail;
`)
	require.NoError(t, err)
	s := def.Spaces["mediterranean_avenue"]
	require.NotNil(t, s)
	assert.Equal(t, models.SpaceProperty, s.Type)
	assert.Equal(t, 60, s.Cost)
	assert.True(t, s.Purchaseable)
	assert.Equal(t, "dark blue", s.Property.Color)
	assert.Equal(t, 2, s.Property.Rent)
	assert.Equal(t, [4]int{10, 30, 90, 160}, s.Property.HouseRent)
	assert.Equal(t, 250, s.Property.HotelRent)

	j := def.Spaces["jail"]
	assert.Equal(t, 50, j.BailCost())
	assert.Equal(t, "thing", j.Extra["custom"])
	assert.Equal(t, []string{"mediterranean avenue"}, def.Sides["start"])
}

func TestParseDSLErrors(t *testing.T) {
	_, err := ParseDSL("x", `a { type = property; cost = 1`)
	assert.Error(t, err)
	_, err = ParseDSL("x", `a { cost = 1; }`)
	assert.ErrorContains(t, err, "missing type")
	_, err = ParseDSL("x", `a { type = castle; }`)
	assert.ErrorContains(t, err, "unknown space type")
	_, err = ParseDSL("x", `a { type = void; } start = a -> ;`)
	assert.Error(t, err)

	def, err := ParseDSL("x", `a { type = void; } start = a -> b; left = a; top = a; right = a;`)
	require.NoError(t, err)
	assert.ErrorIs(t, def.Validate(), apperror.ErrSpaceMissing)

	def, err = ParseDSL("x", `a { type = void; } start = a;`)
	require.NoError(t, err)
	assert.ErrorIs(t, def.Validate(), apperror.ErrSpaceMissing)
}

func TestCatalogFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"j.json":              {Data: []byte(jsonBoard)},
		"t.toml":              {Data: []byte(tomlBoard)},
		"j-chance.json":       {Data: []byte(chanceDeck)},
		"generic-chance.json": {Data: []byte(`[]`)},
		"notes.txt":           {Data: []byte("ignored")},
	}
	c := NewCatalog(fsys, nil)

	names, err := c.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"j", "t"}, names)

	j, err := c.Load("j")
	require.NoError(t, err)
	assert.Len(t, j.Chance, 2)
	assert.Equal(t, CardData("50"), j.Chance[0].Data)
	lot := j.Spaces["lot"]
	assert.Equal(t, "brown", lot.Property.Color)
	assert.Equal(t, 250, lot.Property.HotelRent)
	assert.False(t, j.Spaces["go"].Purchaseable)
	assert.Equal(t, "yes", j.Spaces["park"].Extra["jackpot"])

	tb, err := c.Load("t")
	require.NoError(t, err)
	assert.Empty(t, tb.Chance, "falls back to the generic deck")
	assert.Equal(t, -200, tb.Spaces["go"].Cost)
	assert.Equal(t, 2, tb.Spaces["lot"].Property.Rent)

	b, err := c.NewBoard("t", nil)
	require.NoError(t, err)
	assert.Equal(t, "go -> lot -> jail -> park -> lot", b.Describe())
	assert.Equal(t, 2, b.SpaceByID(2).Property.SetSize, "set size defaults to placed copies")

	_, err = c.Load("missing")
	assert.ErrorIs(t, err, apperror.ErrUnknownBoard)
	_, err = c.Load("../etc/passwd")
	assert.ErrorIs(t, err, apperror.ErrUnknownBoard)
}

func TestCatalogBuildsIndependentBoards(t *testing.T) {
	c := NewCatalog(fstest.MapFS{"j.json": {Data: []byte(jsonBoard)}}, nil)
	b1, err := c.NewBoard("j", nil)
	require.NoError(t, err)
	b2, err := c.NewBoard("j", nil)
	require.NoError(t, err)

	b1.SpaceByID(2).Owner = uuid.New()
	assert.False(t, b2.SpaceByID(2).IsOwned())
}

func TestLuaHooks(t *testing.T) {
	script := `
function onland_park(ctx)
  ctx.gain(100)
end

function onland(ctx)
  if ctx.space_type == "jail" then
    ctx:lose(5)
  end
  ctx.default()
end

not_a_hook = 3
`
	c := NewCatalog(fstest.MapFS{
		"j.json": {Data: []byte(jsonBoard)},
		"j.lua":  {Data: []byte(script)},
	}, nil)
	b, err := c.NewBoard("j", nil)
	require.NoError(t, err)
	defer b.Close()

	r := roster{}
	p := models.NewPlayer(uuid.New(), models.DefaultStartingMoney, r)
	r[p.ID] = p
	b.AddPlayer(p)

	st, err := b.MoveTo(p, b.SpaceByID(4))
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.Equal(t, models.StatusMoneyGiven, st[0].Kind)
	assert.Equal(t, models.DefaultStartingMoney+100, p.Money)

	// the board-level onland wraps the universal one
	st, err = b.MoveTo(p, b.SpaceByID(2))
	require.NoError(t, err)
	require.Len(t, st, 1)
	assert.Equal(t, models.StatusPromptToBuy, st[0].Kind)

	st, err = b.MoveTo(p, b.SpaceByID(3))
	require.NoError(t, err)
	assert.Equal(t, models.StatusMoneyLost, st[0].Kind)
	assert.Equal(t, models.DefaultStartingMoney+95, p.Money)
}

func TestLuaErrorsSurface(t *testing.T) {
	_, err := CompileScript("bad.lua", strings.NewReader("function ("))
	assert.Error(t, err)

	c := NewCatalog(fstest.MapFS{
		"j.json": {Data: []byte(jsonBoard)},
		"j.lua":  {Data: []byte(`function onland_park(ctx) error("boom") end`)},
	}, nil)
	b, err := c.NewBoard("j", nil)
	require.NoError(t, err)
	defer b.Close()
	p := models.NewPlayer(uuid.New(), 0, nil)
	b.AddPlayer(p)

	_, err = b.MoveTo(p, b.SpaceByID(4))
	assert.ErrorContains(t, err, "boom")
}

func TestClassicBoardLoads(t *testing.T) {
	c := NewCatalog(os.DirFS("../../boards"), nil)
	b, err := c.NewBoard("classic", nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Len(t, b.Spaces(), 40)
	assert.NotNil(t, b.FindJail())
	boardwalk := b.SpaceByName("boardwalk", 1)
	require.NotNil(t, boardwalk)
	assert.Equal(t, 2, boardwalk.Property.SetSize)
	assert.Equal(t, 2000, boardwalk.Property.HotelRent)
	assert.Equal(t, 3, len(collect(b, "chance")))
}

func collect(b *Board, name string) []*models.Space {
	var out []*models.Space
	for i := 1; ; i++ {
		s := b.SpaceByName(name, i)
		if s == nil {
			return out
		}
		out = append(out, s)
	}
}
