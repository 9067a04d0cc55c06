package models

import (
	"time"

	"github.com/google/uuid"
)

// Quote representa un presupuesto. Mientras se edita vive solo en memoria;
// al guardarse se materializa como registro inmutable.
// Guarda un snapshot del cliente (nombre, rif, dirección) además del
// ClientID: el snapshot es la fuente autoritativa para el render aunque el
// cliente se edite o elimine después.
type Quote struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	CompanyID     uuid.UUID  `json:"company_id" db:"company_id"`
	ClientID      *uuid.UUID `json:"client_id,omitempty" db:"client_id"`
	Work          string     `json:"work" db:"work"`
	ClientName    string     `json:"client_name" db:"client_name"`
	ClientRif     string     `json:"client_rif" db:"client_rif"`
	ClientAddress string     `json:"client_address" db:"client_address"`
	IssueDate     string     `json:"issue_date" db:"issue_date"`
	Currency      Currency   `json:"currency" db:"currency"`
	Subtotal      float64    `json:"subtotal" db:"subtotal"`
	Tax           float64    `json:"tax" db:"tax"`
	Total         float64    `json:"total" db:"total"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	// Items se popula en consultas
	Items []QuoteItem `json:"items,omitempty"`
}

// QuoteItem representa una línea de un presupuesto.
// El total de línea nunca se almacena: siempre se deriva de qty × precio.
type QuoteItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	QuoteID     uuid.UUID `json:"quote_id" db:"quote_id"`
	LineNo      int       `json:"line_no" db:"line_no"`
	Code        string    `json:"code" db:"code"`
	Unit        string    `json:"unit" db:"unit"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	SG          string    `json:"sg" db:"sg"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
}

// LineTotal retorna el total derivado de la línea
func (i QuoteItem) LineTotal() float64 {
	return i.Quantity * i.UnitPrice
}

// Totals representa los totales calculados de un presupuesto
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// QuoteDraft representa el presupuesto en edición (estado en memoria)
type QuoteDraft struct {
	Quote Quote       `json:"quote"`
	Items []QuoteItem `json:"items"`
}

// QuoteRequest representa la cabecera de un presupuesto en un request
type QuoteRequest struct {
	Work          string   `json:"work" binding:"required"`
	ClientName    string   `json:"client_name" binding:"required"`
	ClientRif     string   `json:"client_rif"`
	ClientAddress string   `json:"client_address"`
	IssueDate     string   `json:"issue_date" binding:"required,datetime=2006-01-02"`
	ClientID      *string  `json:"client_id,omitempty" binding:"omitempty,uuid"`
	Currency      Currency `json:"currency" binding:"omitempty,oneof=USD CLP"`
}

// QuoteItemRequest representa una línea en un request
type QuoteItemRequest struct {
	Code        string  `json:"code"`
	Unit        string  `json:"unit"`
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"gte=0"`
	SG          string  `json:"sg"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// SaveQuoteRequest representa el request para guardar un presupuesto
type SaveQuoteRequest struct {
	Quote QuoteRequest       `json:"quote" binding:"required"`
	Items []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SetDraftRequest representa el request para actualizar el borrador
type SetDraftRequest struct {
	Quote QuoteRequest       `json:"quote" binding:"required"`
	Items []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// QuoteResponse representa la respuesta al guardar o consultar un presupuesto
type QuoteResponse struct {
	ID            uuid.UUID   `json:"id"`
	Work          string      `json:"work"`
	ClientName    string      `json:"client_name"`
	ClientRif     string      `json:"client_rif"`
	ClientAddress string      `json:"client_address"`
	IssueDate     string      `json:"issue_date"`
	Currency      Currency    `json:"currency"`
	Totals        Totals      `json:"totals"`
	Items         []QuoteItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	Links         Links       `json:"links"`
}

// QuoteListResponse representa la respuesta al listar presupuestos
type QuoteListResponse struct {
	Items    []QuoteResponse `json:"items"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Total    int             `json:"total"`
}

// Links representa los enlaces relacionados a un presupuesto
type Links struct {
	Self string `json:"self"`
	PDF  string `json:"pdf"`
}

// EmailQuoteRequest representa el request para enviar un presupuesto por email
type EmailQuoteRequest struct {
	To *string `json:"to,omitempty" binding:"omitempty,email"`
}

// EmailQuoteResponse representa la respuesta al enviar el email
type EmailQuoteResponse struct {
	Status string `json:"status"`
}
