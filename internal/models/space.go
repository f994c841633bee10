package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SpaceType enumerates the kinds of board spaces.
type SpaceType int

const (
	SpaceProperty SpaceType = iota
	SpaceCommunityChest
	SpaceChance
	SpaceJail
	SpaceFreeParking
	SpaceGotoJail
	SpaceGo
	SpaceLuxuryTax
	SpaceIncomeTax
	SpaceRailroad
	SpaceVoid
	SpaceUtility
)

var spaceTypeNames = map[SpaceType]string{
	SpaceProperty:       "property",
	SpaceCommunityChest: "community_chest",
	SpaceChance:         "chance",
	SpaceJail:           "jail",
	SpaceFreeParking:    "free_parking",
	SpaceGotoJail:       "goto_jail",
	SpaceGo:             "go",
	SpaceLuxuryTax:      "luxury_tax",
	SpaceIncomeTax:      "income_tax",
	SpaceRailroad:       "railroad",
	SpaceVoid:           "void",
	SpaceUtility:        "utility",
}

func (t SpaceType) String() string {
	if n, ok := spaceTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("SpaceType(%d)", int(t))
}

// MarshalText encodes the type by name so snapshots stay readable.
func (t SpaceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseSpaceType accepts the names used by board files, case-insensitively.
// A leading "ST_" prefix is tolerated.
func ParseSpaceType(s string) (SpaceType, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "st_")
	for t, n := range spaceTypeNames {
		if n == key {
			return t, nil
		}
	}
	return SpaceVoid, fmt.Errorf("unknown space type %q", s)
}

// PropertyAttrs are the rent and building tables of a purchasable space.
type PropertyAttrs struct {
	Rent      int    `json:"rent"`
	HouseRent [4]int `json:"houseRent"`
	HotelRent int    `json:"hotelRent"`
	HouseCost int    `json:"houseCost"`
	HotelCost int    `json:"hotelCost"`
	Color     string `json:"color,omitempty"`
	SetSize   int    `json:"setSize,omitempty"`
}

// JailAttrs holds the bail charged to leave a jail space.
type JailAttrs struct {
	BailCost int `json:"bailCost"`
}

// TaxAttrs configures tax spaces. Percent applies to income tax, Amount to flat taxes.
type TaxAttrs struct {
	Percent int `json:"percent,omitempty"`
	Amount  int `json:"amount,omitempty"`
}

// Space is one cell of the board ring.
type Space struct {
	ID           int       `json:"id"`
	Type         SpaceType `json:"spaceType"`
	Name         string    `json:"name"`
	Cost         int       `json:"cost"`
	Purchaseable bool      `json:"purchaseable"`
	Owner        uuid.UUID `json:"owner"`
	Houses       int       `json:"houses"`
	Hotel        bool      `json:"hotel"`
	Mortgaged    bool      `json:"mortgaged"`

	Property *PropertyAttrs    `json:"property,omitempty"`
	Jail     *JailAttrs        `json:"jail,omitempty"`
	Tax      *TaxAttrs         `json:"tax,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`

	Next *Space `json:"-"`
	Prev *Space `json:"-"`
}

// Key is the normalised name used by event lookups: lowercased, spaces replaced by underscores.
func (s *Space) Key() string {
	return NormalizeName(s.Name)
}

// NormalizeName lowercases name and replaces spaces with underscores.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// IsOwned reports whether any player holds the space.
func (s *Space) IsOwned() bool {
	return s.Owner != uuid.Nil
}

// Color returns the colour set of a property, or "" for other spaces.
func (s *Space) Color() string {
	if s.Property == nil {
		return ""
	}
	return s.Property.Color
}

// Level is the building level used for even-building rules: a hotel counts as 5.
func (s *Space) Level() int {
	if s.Hotel {
		return 5
	}
	return s.Houses
}

func (s *Space) houseCost() int {
	if s.Property == nil {
		return 0
	}
	return s.Property.HouseCost
}

func (s *Space) hotelCost() int {
	if s.Property == nil {
		return 0
	}
	return s.Property.HotelCost
}

// BailCost is the bail configured on a jail space.
func (s *Space) BailCost() int {
	if s.Jail == nil {
		return 0
	}
	return s.Jail.BailCost
}

// PropertyRent computes rent for a property space. holdsSet reports whether
// the owner holds the full colour set.
func (s *Space) PropertyRent(holdsSet bool) int {
	if s.Type != SpaceProperty || s.Mortgaged || s.Property == nil {
		return 0
	}
	if s.Hotel {
		return s.Property.HotelRent
	}
	if s.Houses == 0 {
		if holdsSet {
			return s.Property.Rent * 2
		}
		return s.Property.Rent
	}
	return s.Property.HouseRent[min(s.Houses, 4)-1]
}

// Clone copies the definition of s without ownership, buildings or ring links.
func (s *Space) Clone(id int) *Space {
	c := &Space{
		ID:           id,
		Type:         s.Type,
		Name:         s.Name,
		Cost:         s.Cost,
		Purchaseable: s.Purchaseable,
	}
	if s.Property != nil {
		p := *s.Property
		c.Property = &p
	}
	if s.Jail != nil {
		j := *s.Jail
		c.Jail = &j
	}
	if s.Tax != nil {
		t := *s.Tax
		c.Tax = &t
	}
	if len(s.Extra) > 0 {
		c.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// SetNext links s to next in both directions.
func (s *Space) SetNext(next *Space) {
	s.Next = next
	next.Prev = s
}

// Step walks one link forward, or backward when back is set.
func (s *Space) Step(back bool) *Space {
	if back {
		return s.Prev
	}
	return s.Next
}
