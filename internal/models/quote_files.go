package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteFiles representa el artefacto PDF generado de un presupuesto.
// El mismo documento sirve para la vista previa y la descarga.
type QuoteFiles struct {
	ID          uuid.UUID `json:"id" db:"id"`
	QuoteID     uuid.UUID `json:"quote_id" db:"quote_id"`
	PDFData     []byte    `json:"pdf_data" db:"pdf_data"`
	PDFSize     int64     `json:"pdf_size" db:"pdf_size"`
	GeneratedAt time.Time `json:"generated_at" db:"generated_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
