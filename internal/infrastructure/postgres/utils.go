package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-lotes/internal/domain"
)

// Códigos SQLSTATE que el núcleo distingue.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// batchNumberConstraint restricción UNIQUE(product_id, batch_number) de stock_batches.
const batchNumberConstraint = "uq_stock_batches_product_number"

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// isConcurrencyFailure conflictos de bloqueo que el llamador debe reintentar.
func isConcurrencyFailure(err error) bool {
	switch code, _ := pgCode(err); code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// mapError traduce errores de PostgreSQL a los errores de dominio y envuelve el resto con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	code, constraint := pgCode(err)
	switch {
	case code == codeUniqueViolation && constraint == batchNumberConstraint:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicateBatch)
	case code == codeUniqueViolation, code == codeCheckViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case code == codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case isConcurrencyFailure(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
	case code == codeQueryCanceled:
		// lock_timeout se reporta como 55P03; statement_timeout como 57014.
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
	}
	return fmt.Errorf("%s: %w", op, err)
}
