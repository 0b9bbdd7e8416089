package inventory

import (
	"math"
	"time"
)

// Clasificación de frescura de un lote.
const (
	ExpiryExpired      = "expired"
	ExpiryExpiringSoon = "expiring_soon"
	ExpiryHealthy      = "healthy"
	ExpiryNone         = "no_expiry"
)

// DefaultExpiringSoonDays ventana por defecto para "próximo a vencer".
const DefaultExpiringSoonDays = 30

// ExpiryStatus resultado de la clasificación. DaysLeft sólo tiene sentido si Bucket != ExpiryNone.
type ExpiryStatus struct {
	Bucket   string
	DaysLeft int
}

// Classify aplica la ventana por defecto de 30 días.
func Classify(expiry *time.Time, now time.Time) ExpiryStatus {
	return ClassifyWithWindow(expiry, now, DefaultExpiringSoonDays)
}

// ClassifyWithWindow calcula los días de calendario restantes (en la zona horaria de now):
// < 0 vencido, 0..windowDays próximo a vencer, resto sano; sin fecha -> sin vencimiento.
func ClassifyWithWindow(expiry *time.Time, now time.Time, windowDays int) ExpiryStatus {
	if expiry == nil {
		return ExpiryStatus{Bucket: ExpiryNone}
	}
	days := DaysUntil(*expiry, now)
	switch {
	case days < 0:
		return ExpiryStatus{Bucket: ExpiryExpired, DaysLeft: days}
	case days <= windowDays:
		return ExpiryStatus{Bucket: ExpiryExpiringSoon, DaysLeft: days}
	default:
		return ExpiryStatus{Bucket: ExpiryHealthy, DaysLeft: days}
	}
}

// DaysUntil días de calendario entre la fecha de now y la de expiry.
func DaysUntil(expiry, now time.Time) int {
	loc := now.Location()
	ny, nm, nd := now.Date()
	ey, em, ed := expiry.In(loc).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	day := time.Date(ey, em, ed, 0, 0, 0, 0, loc)
	// Round absorbe los días de 23/25 horas por cambio de horario.
	return int(math.Round(day.Sub(today).Hours() / 24))
}
