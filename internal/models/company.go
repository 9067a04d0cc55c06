package models

import (
	"time"

	"github.com/google/uuid"
)

// Currency representa una moneda soportada para presupuestos
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCLP Currency = "CLP"
)

// DefaultIVARate es la tasa de IVA por defecto (porcentaje)
const DefaultIVARate = 16.0

// Company representa la empresa que emite los presupuestos.
// Es un registro singleton: existe a lo más una fila.
type Company struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Rif             string    `json:"rif" db:"rif"`
	Phone           string    `json:"phone" db:"phone"`
	AddressLines    string    `json:"address_lines" db:"address_lines"`
	LogoURL         *string   `json:"logo_url,omitempty" db:"logo_url"`
	DefaultCurrency Currency  `json:"default_currency" db:"default_currency"`
	IVARate         float64   `json:"iva_rate" db:"iva_rate"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Resolved indica si la empresa ya tiene identidad persistida
func (c *Company) Resolved() bool {
	return c.ID != uuid.Nil
}

// Equal compara campo por campo los datos editables de la empresa
func (c *Company) Equal(other *Company) bool {
	sameLogo := (c.LogoURL == nil && other.LogoURL == nil) ||
		(c.LogoURL != nil && other.LogoURL != nil && *c.LogoURL == *other.LogoURL)

	return c.Name == other.Name &&
		c.Rif == other.Rif &&
		c.Phone == other.Phone &&
		c.AddressLines == other.AddressLines &&
		sameLogo &&
		c.DefaultCurrency == other.DefaultCurrency &&
		c.IVARate == other.IVARate
}

// DefaultCompany retorna la empresa con valores por defecto (aún sin persistir)
func DefaultCompany() Company {
	return Company{
		DefaultCurrency: CurrencyUSD,
		IVARate:         DefaultIVARate,
	}
}

// UpdateCompanyRequest representa el request para actualizar la empresa
type UpdateCompanyRequest struct {
	Name            string   `json:"name" binding:"required"`
	Rif             string   `json:"rif" binding:"required"`
	Phone           string   `json:"phone"`
	AddressLines    string   `json:"address_lines"`
	LogoURL         *string  `json:"logo_url,omitempty"`
	DefaultCurrency Currency `json:"default_currency" binding:"omitempty,oneof=USD CLP"`
	IVARate         *float64 `json:"iva_rate,omitempty" binding:"omitempty,gte=0,lte=100"`
}

// LogoUploadResponse representa la respuesta al subir un logo
type LogoUploadResponse struct {
	LogoURL string `json:"logo_url"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}
