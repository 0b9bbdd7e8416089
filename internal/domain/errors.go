package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Errores del libro de lotes.
	ErrIncompatibleUnits      = errors.New("las unidades no pertenecen al mismo grupo de conversión")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrDuplicateBatch         = errors.New("el número de lote ya existe para este producto")
	ErrUnattributedIncrease   = errors.New("un aumento de stock debe registrarse como un lote")
	ErrNonZeroBatchDeletion   = errors.New("el lote todavía tiene existencias")
	ErrConcurrentModification = errors.New("conflicto de concurrencia, reintente la operación")

	// Errores de configuración de unidades.
	ErrUnitInUse        = errors.New("la unidad está referenciada por lotes o existencias")
	ErrInvalidUnitGroup = errors.New("grupo de unidades inválido")

	// ErrAggregateDrift el agregado no coincide con los lotes; se corrige con Reconcile.
	ErrAggregateDrift = errors.New("la existencia agregada no coincide con los lotes")
)
