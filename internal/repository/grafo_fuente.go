package repository

import (
	"context"
	"errors"

	"trazabilidad/internal/graph"
	"trazabilidad/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// grafoFuente feeds graph.Grafo from the relational store.
type grafoFuente struct{ db *gorm.DB }

// NewGrafoFuente returns a graph.Fuente reading through db. Pass a transaction
// to get a consistent snapshot for a whole label.
func NewGrafoFuente(db *gorm.DB) graph.Fuente { return &grafoFuente{db: db} }

func (f *grafoFuente) Ingredientes(ctx context.Context, ids []uuid.UUID) ([]graph.Ingrediente, error) {
	var list []model.Ingrediente
	err := f.db.WithContext(ctx).Preload("Alergenos").Where("id IN ?", ids).Find(&list).Error
	if err != nil {
		return nil, err
	}
	out := make([]graph.Ingrediente, 0, len(list))
	for _, i := range list {
		al := make([]graph.Alergeno, 0, len(i.Alergenos))
		for _, a := range i.Alergenos {
			al = append(al, graph.Alergeno{ID: a.ID, Nombre: a.Nombre})
		}
		out = append(out, graph.Ingrediente{
			ID:           i.ID,
			Nombre:       i.Nombre,
			Conservacion: i.Conservacion,
			Alergenos:    al,
			ProductorID:  i.ElaboradoOrigenID,
		})
	}
	return out, nil
}

func (f *grafoFuente) Receta(ctx context.Context, id uuid.UUID) (*graph.Receta, error) {
	var e model.Elaborado
	err := f.db.WithContext(ctx).
		Preload("Lineas", func(db *gorm.DB) *gorm.DB { return db.Order("cantidad DESC") }).
		First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r := &graph.Receta{ID: e.ID, Nombre: e.Nombre, Escandallo: e.EsEscandallo()}
	for _, l := range e.Lineas {
		r.Lineas = append(r.Lineas, graph.Linea{
			IngredienteID: l.IngredienteID,
			Cantidad:      l.Cantidad,
			EsOrigen:      l.EsOrigen,
		})
	}
	return r, nil
}
