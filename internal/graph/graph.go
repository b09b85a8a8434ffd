// Package graph models recipe nesting as an explicit directed graph: an
// ingredient node points at the recipe that produced it, and a recipe node
// points at the ingredients it expands into on a label.
//
// Nodes are loaded lazily from a Fuente and memoized for the lifetime of one
// Grafo, so a label that mentions the same sub-recipe several times queries
// it once.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxProfundidad bounds nesting when the caller passes 0.
const DefaultMaxProfundidad = 16

var ErrProfundidad = errors.New("graph: profundidad máxima de anidamiento superada")

// CicloError reports a recipe that reaches itself through its own expansion.
type CicloError struct {
	Ruta []uuid.UUID // recipe ids from the first repeated recipe back to itself
}

func (e *CicloError) Error() string {
	ids := make([]string, len(e.Ruta))
	for i, id := range e.Ruta {
		ids[i] = id.String()
	}
	return "graph: ciclo entre elaborados " + strings.Join(ids, " -> ")
}

type Alergeno struct {
	ID     uuid.UUID
	Nombre string
}

// Ingrediente is an ingredient node. ProductorID is the recipe that created it
// (split output or self-registered combine result); nil for catalog items.
type Ingrediente struct {
	ID           uuid.UUID
	Nombre       string
	Conservacion string
	Alergenos    []Alergeno
	ProductorID  *uuid.UUID
}

type Linea struct {
	IngredienteID uuid.UUID
	Cantidad      decimal.Decimal
	EsOrigen      bool
}

// Receta is a recipe node with all of its lines.
type Receta struct {
	ID         uuid.UUID
	Nombre     string
	Escandallo bool
	Lineas     []Linea
}

// Expansion returns the lines rendered inside a produced ingredient's
// parentheses, heaviest first. A combine recipe expands into its inputs; a
// split recipe expands into the ingredient it portions, since its other
// lines are the sibling outputs.
func (r *Receta) Expansion() []Linea {
	var out []Linea
	for _, l := range r.Lineas {
		if l.EsOrigen == r.Escandallo {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Cantidad.GreaterThan(out[j].Cantidad)
	})
	return out
}

// Fuente loads nodes. Missing ids are simply absent from the result.
type Fuente interface {
	Ingredientes(ctx context.Context, ids []uuid.UUID) ([]Ingrediente, error)
	Receta(ctx context.Context, id uuid.UUID) (*Receta, error)
}

type Grafo struct {
	fuente         Fuente
	maxProfundidad int

	ingredientes map[uuid.UUID]*Ingrediente
	recetas      map[uuid.UUID]*Receta
}

func New(f Fuente, maxProfundidad int) *Grafo {
	if maxProfundidad <= 0 {
		maxProfundidad = DefaultMaxProfundidad
	}
	return &Grafo{
		fuente:         f,
		maxProfundidad: maxProfundidad,
		ingredientes:   make(map[uuid.UUID]*Ingrediente),
		recetas:        make(map[uuid.UUID]*Receta),
	}
}

// Nodo is one entry of an expanded label tree.
type Nodo struct {
	Nombre    string
	Alergenos []Alergeno
	Hijos     []*Nodo
}

// Texto renders the node: "Salsa* (Tomate, Sal*, Albahaca)".
func (n *Nodo) Texto() string {
	var b strings.Builder
	b.WriteString(n.Nombre)
	if len(n.Alergenos) > 0 {
		b.WriteString("*")
	}
	if len(n.Hijos) > 0 {
		b.WriteString(" (")
		for i, h := range n.Hijos {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(h.Texto())
		}
		b.WriteString(")")
	}
	return b.String()
}

// Recorrer visits n and every descendant, parents first.
func (n *Nodo) Recorrer(fn func(*Nodo)) {
	fn(n)
	for _, h := range n.Hijos {
		h.Recorrer(fn)
	}
}

// Expandir builds the label tree rooted at ingredient id. It returns
// (nil, nil) if the ingredient does not exist.
func (g *Grafo) Expandir(ctx context.Context, id uuid.UUID) (*Nodo, error) {
	return g.expandir(ctx, id, nil)
}

func (g *Grafo) expandir(ctx context.Context, id uuid.UUID, ruta []uuid.UUID) (*Nodo, error) {
	ing, err := g.ingrediente(ctx, id)
	if err != nil || ing == nil {
		return nil, err
	}
	nodo := &Nodo{Nombre: ing.Nombre, Alergenos: ing.Alergenos}
	if ing.ProductorID == nil {
		return nodo, nil
	}

	recetaID := *ing.ProductorID
	for i, visitado := range ruta {
		if visitado == recetaID {
			ciclo := append(append([]uuid.UUID{}, ruta[i:]...), recetaID)
			return nil, &CicloError{Ruta: ciclo}
		}
	}
	if len(ruta) >= g.maxProfundidad {
		return nil, ErrProfundidad
	}

	receta, err := g.receta(ctx, recetaID)
	if err != nil {
		return nil, err
	}
	if receta == nil {
		return nodo, nil
	}

	lineas := receta.Expansion()
	if err := g.precargar(ctx, lineas); err != nil {
		return nil, err
	}
	ruta = append(ruta, recetaID)
	for _, l := range lineas {
		hijo, err := g.expandir(ctx, l.IngredienteID, ruta)
		if err != nil {
			return nil, err
		}
		if hijo != nil {
			nodo.Hijos = append(nodo.Hijos, hijo)
		}
	}
	return nodo, nil
}

// precargar fetches every not-yet-known ingredient of lineas in one call.
func (g *Grafo) precargar(ctx context.Context, lineas []Linea) error {
	var faltan []uuid.UUID
	for _, l := range lineas {
		if _, ok := g.ingredientes[l.IngredienteID]; !ok {
			faltan = append(faltan, l.IngredienteID)
		}
	}
	return g.cargarIngredientes(ctx, faltan)
}

func (g *Grafo) cargarIngredientes(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	list, err := g.fuente.Ingredientes(ctx, ids)
	if err != nil {
		return fmt.Errorf("graph: cargar ingredientes: %w", err)
	}
	for _, id := range ids {
		g.ingredientes[id] = nil
	}
	for i := range list {
		ing := list[i]
		g.ingredientes[ing.ID] = &ing
	}
	return nil
}

func (g *Grafo) ingrediente(ctx context.Context, id uuid.UUID) (*Ingrediente, error) {
	if ing, ok := g.ingredientes[id]; ok {
		return ing, nil
	}
	if err := g.cargarIngredientes(ctx, []uuid.UUID{id}); err != nil {
		return nil, err
	}
	return g.ingredientes[id], nil
}

func (g *Grafo) receta(ctx context.Context, id uuid.UUID) (*Receta, error) {
	if r, ok := g.recetas[id]; ok {
		return r, nil
	}
	r, err := g.fuente.Receta(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("graph: cargar elaborado %s: %w", id, err)
	}
	g.recetas[id] = r
	return r, nil
}

// AlergenosDe returns the allergens found anywhere under nodos, deduplicated
// by id and sorted by name.
func AlergenosDe(nodos []*Nodo) []Alergeno {
	vistos := make(map[uuid.UUID]Alergeno)
	for _, n := range nodos {
		n.Recorrer(func(m *Nodo) {
			for _, a := range m.Alergenos {
				vistos[a.ID] = a
			}
		})
	}
	out := make([]Alergeno, 0, len(vistos))
	for _, a := range vistos {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out
}
