package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaveNombre(t *testing.T) {
	assert.Equal(t, "azúcar moreno", ClaveNombre("  Azúcar   MORENO "))
	// decomposed and precomposed forms collide
	assert.Equal(t, ClaveNombre("Jam\u00f3n"), ClaveNombre("Jamo\u0301n"))
	assert.NotEqual(t, ClaveNombre("Jamón"), ClaveNombre("Jamon"))
}

func TestSinAcentos(t *testing.T) {
	assert.Equal(t, "Congelacion", SinAcentos("Congelación"))
	assert.Equal(t, "Pina", SinAcentos("Piña"))
	assert.Equal(t, "CAFE", SinAcentos("CAFÉ"))
}

func TestIngrediente_EsDerivadoDe(t *testing.T) {
	var ing Ingrediente
	e := Elaborado{Forma: FormaEscandallo}
	assert.False(t, ing.EsDerivadoDe(e.ID))
	ing.ElaboradoOrigenID = &e.ID
	assert.True(t, ing.EsDerivadoDe(e.ID))
	assert.True(t, e.EsEscandallo())
}
