package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Stage indica la etapa del motor de lotes que falló.
type ErrorResponse struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Stage   string             `json:"stage,omitempty"`
	Details []ValidationDetail `json:"details,omitempty"`
	// Materialization se informa cuando la generación de seriales quedó incompleta.
	Materialization *MaterializationReport `json:"materialization,omitempty"`
}

// MaterializationReport seriales persistidos de un lote cuya materialización se interrumpió.
type MaterializationReport struct {
	LotID     string `json:"lot_id"`
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
}

// ValidationDetail error de validación de un campo del cuerpo o query.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
