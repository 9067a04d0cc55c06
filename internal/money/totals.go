package money

import (
	"github.com/hypernova-labs/quote-service/internal/models"
)

// DefaultTaxRate es la tasa de IVA por defecto como fracción (16%)
const DefaultTaxRate = 0.16

// TaxRateFromPercent convierte la tasa almacenada en la empresa
// (porcentaje, ej. 16) a fracción (0.16).
func TaxRateFromPercent(percent float64) float64 {
	return percent / 100
}

// ComputeTotals calcula subtotal, IVA y total de una lista de líneas.
// Es una función pura: no redondea valores intermedios (solo el
// formateador redondea para mostrar), de modo que la identidad
// total = subtotal + tax se mantiene exacta en punto flotante.
// Una lista vacía retorna totales en cero.
func ComputeTotals(items []models.QuoteItem, taxRate float64) models.Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Quantity * item.UnitPrice
	}

	tax := subtotal * taxRate
	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
