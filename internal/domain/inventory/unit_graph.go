package inventory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/inventario-lotes/internal/domain"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
)

// QuantityScale máximo de dígitos decimales de una cantidad del libro. Coincide con la escala de las
// columnas NUMERIC y con la única división de una conversión.
const QuantityScale = 16

// FitsQuantityScale indica si q se almacena sin redondeo.
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Exponent() >= -QuantityScale
}

var unitCodeFolder = cases.Fold()

// NormalizeUnitCode normaliza el código de una unidad para compararlo sin distinguir mayúsculas ("KG" == "kg").
func NormalizeUnitCode(code string) string {
	return unitCodeFolder.String(strings.TrimSpace(code))
}

// UnitGraph agrupa las unidades en grupos de conversión. Cada grupo tiene exactamente una unidad base
// con factor 1 y el resto expresa su factor respecto a ella. Es inmutable tras construirse.
type UnitGraph struct {
	byID   map[string]entity.Unit
	bases  map[string]string // groupID -> unitID base
	sorted []entity.Unit
}

// NewUnitGraph valida las invariantes de los grupos y construye el grafo.
func NewUnitGraph(units []entity.Unit) (*UnitGraph, error) {
	g := &UnitGraph{
		byID:  make(map[string]entity.Unit, len(units)),
		bases: make(map[string]string),
	}
	codes := make(map[string]string, len(units))
	groups := make(map[string]struct{})
	for _, u := range units {
		if u.ID == "" || u.GroupID == "" || strings.TrimSpace(u.Code) == "" {
			return nil, fmt.Errorf("%w: unidad sin id, código o grupo", domain.ErrInvalidUnitGroup)
		}
		if _, dup := g.byID[u.ID]; dup {
			return nil, fmt.Errorf("%w: id de unidad repetido %q", domain.ErrInvalidUnitGroup, u.ID)
		}
		code := NormalizeUnitCode(u.Code)
		if other, dup := codes[code]; dup {
			return nil, fmt.Errorf("%w: código %q repetido (unidades %s y %s)", domain.ErrInvalidUnitGroup, u.Code, other, u.ID)
		}
		if !u.ConversionFactor.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: factor no positivo en %q", domain.ErrInvalidUnitGroup, u.Code)
		}
		if u.IsBaseUnit {
			if !u.ConversionFactor.Equal(decimal.NewFromInt(1)) {
				return nil, fmt.Errorf("%w: la unidad base %q debe tener factor 1", domain.ErrInvalidUnitGroup, u.Code)
			}
			if prev, ok := g.bases[u.GroupID]; ok {
				return nil, fmt.Errorf("%w: el grupo %q tiene dos unidades base (%s, %s)", domain.ErrInvalidUnitGroup, u.GroupID, prev, u.ID)
			}
			g.bases[u.GroupID] = u.ID
		}
		codes[code] = u.ID
		groups[u.GroupID] = struct{}{}
		g.byID[u.ID] = u
		g.sorted = append(g.sorted, u)
	}
	for groupID := range groups {
		if _, ok := g.bases[groupID]; !ok {
			return nil, fmt.Errorf("%w: el grupo %q no tiene unidad base", domain.ErrInvalidUnitGroup, groupID)
		}
	}
	sortUnits(g.sorted)
	return g, nil
}

// sortUnits ordena por grupo y dentro del grupo por código.
func sortUnits(units []entity.Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].GroupID != units[j].GroupID {
			return units[i].GroupID < units[j].GroupID
		}
		return NormalizeUnitCode(units[i].Code) < NormalizeUnitCode(units[j].Code)
	})
}

// Unit devuelve la unidad por ID.
func (g *UnitGraph) Unit(id string) (entity.Unit, bool) {
	u, ok := g.byID[id]
	return u, ok
}

// Units devuelve todas las unidades ordenadas por grupo y código.
func (g *UnitGraph) Units() []entity.Unit {
	out := make([]entity.Unit, len(g.sorted))
	copy(out, g.sorted)
	return out
}

// Subset devuelve, en el orden del grafo, las unidades cuyos IDs están en ids.
func (g *UnitGraph) Subset(ids map[string]struct{}) []entity.Unit {
	var out []entity.Unit
	for _, u := range g.sorted {
		if _, ok := ids[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out
}

// BaseUnitOf devuelve la unidad base del grupo.
func (g *UnitGraph) BaseUnitOf(groupID string) (entity.Unit, bool) {
	id, ok := g.bases[groupID]
	if !ok {
		return entity.Unit{}, false
	}
	return g.byID[id], true
}

// ToBase normaliza la cantidad a unidades base de su grupo (sin redondeo).
func (g *UnitGraph) ToBase(quantity decimal.Decimal, unitID string) (decimal.Decimal, error) {
	u, ok := g.byID[unitID]
	if !ok {
		return decimal.Zero, fmt.Errorf("unidad %q: %w", unitID, domain.ErrNotFound)
	}
	return quantity.Mul(u.ConversionFactor), nil
}

// Convert convierte quantity de fromUnitID a toUnitID: quantity * from.factor / to.factor.
// La multiplicación es exacta; la división se hace una sola vez con QuantityScale dígitos.
func (g *UnitGraph) Convert(quantity decimal.Decimal, fromUnitID, toUnitID string) (decimal.Decimal, error) {
	from, ok := g.byID[fromUnitID]
	if !ok {
		return decimal.Zero, fmt.Errorf("unidad origen %q: %w", fromUnitID, domain.ErrNotFound)
	}
	to, ok := g.byID[toUnitID]
	if !ok {
		return decimal.Zero, fmt.Errorf("unidad destino %q: %w", toUnitID, domain.ErrNotFound)
	}
	if from.GroupID != to.GroupID {
		return decimal.Zero, fmt.Errorf("%s -> %s: %w", from.Code, to.Code, domain.ErrIncompatibleUnits)
	}
	if from.ID == to.ID || from.ConversionFactor.Equal(to.ConversionFactor) {
		return quantity, nil
	}
	return quantity.Mul(from.ConversionFactor).DivRound(to.ConversionFactor, QuantityScale), nil
}

// RoundForDisplay redondea una cantidad para presentación. No usar dentro del libro.
func RoundForDisplay(quantity decimal.Decimal, places int32) decimal.Decimal {
	return quantity.Round(places)
}
