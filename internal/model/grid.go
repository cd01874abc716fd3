package model

import (
	"encoding/xml"
	"strings"
)

// HeatingGrid is the catalog document: the heating area and the production
// units available to it. Units keep file order; that order is the merit-order
// tie-break.
type HeatingGrid struct {
	XMLName   xml.Name         `json:"-" yaml:"-" xml:"HeatingGrid"`
	Name      string           `json:"name" yaml:"name" xml:"Name"`
	ImagePath string           `json:"image_path,omitempty" yaml:"image_path,omitempty" xml:"ImagePath,omitempty"`
	Buildings int              `json:"buildings,omitempty" yaml:"buildings,omitempty" xml:"Buildings,omitempty"`
	Units     []ProductionUnit `json:"production_units" yaml:"production_units" xml:"ProductionUnits>ProductionUnit"`
}

// Validate trims unit names in place, then checks every unit and rejects
// duplicate names. Every catalog passes through it before lookup or dispatch,
// so Unit and Select only ever see trimmed names.
func (g *HeatingGrid) Validate() error {
	if g == nil || len(g.Units) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(g.Units))
	for i := range g.Units {
		g.Units[i].Name = strings.TrimSpace(g.Units[i].Name)
		u := g.Units[i]
		if err := u.Validate(); err != nil {
			return err
		}
		if _, ok := seen[u.Name]; ok {
			return &DuplicateUnitError{Unit: u.Name}
		}
		seen[u.Name] = struct{}{}
	}
	return nil
}

// Unit looks a unit up by name.
func (g *HeatingGrid) Unit(name string) (ProductionUnit, bool) {
	name = strings.TrimSpace(name)
	for _, u := range g.Units {
		if u.Name == name {
			return u, true
		}
	}
	return ProductionUnit{}, false
}

// Select returns a copy of the grid restricted to the named units. The result
// keeps catalog order regardless of the order of names. No names selects all.
func (g *HeatingGrid) Select(names []string) (*HeatingGrid, error) {
	out := *g
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := g.Unit(n); !ok {
			return nil, &UnknownUnitError{Unit: n}
		}
		want[n] = true
	}
	if len(want) == 0 {
		out.Units = append([]ProductionUnit(nil), g.Units...)
		return &out, nil
	}
	out.Units = make([]ProductionUnit, 0, len(want))
	for _, u := range g.Units {
		if want[u.Name] {
			out.Units = append(out.Units, u)
		}
	}
	return &out, nil
}
