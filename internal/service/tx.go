package service

import (
	"context"
	"errors"
	"strings"

	"trazabilidad/internal/apierror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. Any error returned by fn rolls
// the whole transaction back.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

// fallo passes typed outcomes through untouched; anything else is a storage
// failure: logged with full detail and returned as an opaque StorageError.
func fallo(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("storage failure")
	return apierror.Storage(err)
}

// noEncontrado maps gorm.ErrRecordNotFound to a NotFoundError and leaves any
// other error for fallo.
func noEncontrado(err error, detalle string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(detalle)
	}
	return err
}

func parseID(campo, valor string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(valor))
	if err != nil {
		return uuid.Nil, apierror.Validationf("%s inválido", campo).WithField(campo, "uuid")
	}
	return id, nil
}

func parseIDOpcional(campo string, valor *string) (*uuid.UUID, error) {
	if valor == nil || strings.TrimSpace(*valor) == "" {
		return nil, nil
	}
	id, err := parseID(campo, *valor)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func idsString(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func strPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
