package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jason-s-yu/monopoly/internal/apperror"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

// SideNames are chained in this order and the last one is closed back onto the first.
var SideNames = []string{"start", "left", "top", "right"}

// known attributes; anything else lands in Space.Extra.
var knownAttrs = map[string]bool{
	"type": true, "cost": true, "not_purchaseable": true,
	"rent": true, "house1": true, "house2": true, "house3": true, "house4": true, "hotel": true,
	"house_cost": true, "hotel_cost": true, "color": true, "set_size": true,
	"bailcost": true, "tax": true, "percent": true,
}

// Definition is a parsed board file. It is immutable once loaded and every game
// builds its own Board from it.
type Definition struct {
	Name   string
	Spaces map[string]*models.Space
	Sides  map[string][]string
	Chance []ChanceCard
	Script *Script
}

func newDefinition(name string) *Definition {
	return &Definition{
		Name:   name,
		Spaces: make(map[string]*models.Space),
		Sides:  make(map[string][]string),
	}
}

// AddSpace turns a flat attribute map into a space template.
func (d *Definition) AddSpace(name string, attrs map[string]string) error {
	s, err := spaceFromAttrs(name, attrs)
	if err != nil {
		return fmt.Errorf("space %q: %w", name, err)
	}
	d.Spaces[models.NormalizeName(name)] = s
	return nil
}

func spaceFromAttrs(name string, attrs map[string]string) (*models.Space, error) {
	typ, ok := attrs["type"]
	if !ok {
		return nil, fmt.Errorf("missing type")
	}
	st, err := models.ParseSpaceType(typ)
	if err != nil {
		return nil, err
	}
	s := &models.Space{Type: st, Name: name, Purchaseable: true}
	if v, ok := attrs["not_purchaseable"]; ok && v != "false" && v != "0" {
		s.Purchaseable = false
	}
	if s.Cost, err = atoiAttr(attrs, "cost"); err != nil {
		return nil, err
	}

	ints := make(map[string]int)
	for _, k := range []string{"house1", "house2", "house3", "house4", "hotel", "house_cost", "hotel_cost", "set_size", "bailcost", "tax", "percent"} {
		if ints[k], err = atoiAttr(attrs, k); err != nil {
			return nil, err
		}
	}

	switch st {
	case models.SpaceProperty:
		pa := &models.PropertyAttrs{
			HouseRent: [4]int{ints["house1"], ints["house2"], ints["house3"], ints["house4"]},
			HotelRent: ints["hotel"],
			HouseCost: ints["house_cost"],
			HotelCost: ints["hotel_cost"],
			Color:     strings.ToLower(attrs["color"]),
			SetSize:   ints["set_size"],
		}
		if err := parseRent(attrs["rent"], pa); err != nil {
			return nil, err
		}
		s.Property = pa
	case models.SpaceJail:
		s.Jail = &models.JailAttrs{BailCost: ints["bailcost"]}
	case models.SpaceIncomeTax:
		s.Tax = &models.TaxAttrs{Percent: ints["percent"]}
	case models.SpaceLuxuryTax:
		s.Tax = &models.TaxAttrs{Amount: ints["tax"]}
	}

	for k, v := range attrs {
		if knownAttrs[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[k] = v
	}
	return s, nil
}

// parseRent accepts a single base rent or a six-entry list: base, one to four houses, hotel.
func parseRent(v string, pa *models.PropertyAttrs) error {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	nums := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("attribute rent: %q is not a number", part)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		pa.Rent = nums[0]
	case 6:
		pa.Rent = nums[0]
		copy(pa.HouseRent[:], nums[1:5])
		pa.HotelRent = nums[5]
	default:
		return fmt.Errorf("attribute rent: want 1 or 6 values, got %d", len(nums))
	}
	return nil
}

// Validate checks that every side exists and names defined spaces.
func (d *Definition) Validate() error {
	total := 0
	for _, side := range SideNames {
		names, ok := d.Sides[side]
		if !ok || len(names) == 0 {
			return fmt.Errorf("board %s: side %q is missing: %w", d.Name, side, apperror.ErrSpaceMissing)
		}
		for _, n := range names {
			if _, ok := d.Spaces[models.NormalizeName(n)]; !ok {
				return fmt.Errorf("board %s: side %q places undefined space %q: %w", d.Name, side, n, apperror.ErrSpaceMissing)
			}
		}
		total += len(names)
	}
	if total < 2 {
		return fmt.Errorf("board %s: needs at least two spaces: %w", d.Name, apperror.ErrBrokenRing)
	}
	return nil
}

// Build places a fresh copy of every template into a closed ring and opens the board's
// hook script when it has one. Spaces are numbered from 1 in ring order.
func (d *Definition) Build(logger *logrus.Entry) (*Board, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	var first, prev *models.Space
	var placed []*models.Space
	id := 1
	for _, side := range SideNames {
		for _, n := range d.Sides[side] {
			s := d.Spaces[models.NormalizeName(n)].Clone(id)
			id++
			if prev == nil {
				first = s
			} else {
				prev.SetNext(s)
			}
			prev = s
			placed = append(placed, s)
		}
	}
	prev.SetNext(first)
	fillSetSizes(placed)

	handlers := Handlers{}
	var hooks *LuaHooks
	if d.Script != nil {
		var err error
		if hooks, err = d.Script.Open(); err != nil {
			return nil, fmt.Errorf("board %s: %w", d.Name, err)
		}
		handlers = hooks.Handlers()
	}
	b, err := New(d.Name, first, d.Chance, handlers, logger)
	if err != nil {
		if hooks != nil {
			hooks.Close()
		}
		return nil, err
	}
	b.hooks = hooks
	return b, nil
}

// fillSetSizes defaults a colour's set size to the number of placed spaces with that colour.
func fillSetSizes(placed []*models.Space) {
	counts := make(map[string]int)
	for _, s := range placed {
		if c := s.Color(); c != "" {
			counts[c]++
		}
	}
	for _, s := range placed {
		if c := s.Color(); c != "" && s.Property.SetSize == 0 {
			s.Property.SetSize = counts[c]
		}
	}
}
