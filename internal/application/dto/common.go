package dto

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// PageRequest paginación por query string (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=500"`
	Offset int `query:"offset" validate:"min=0"`
}

// Normalize aplica el límite por defecto y recorta valores fuera de rango.
func (p *PageRequest) Normalize() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página. HasMore indica que puede haber más filas tras esta página.
type PageResponse struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details errores de validación por campo.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError error de validación de un campo del cuerpo.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
