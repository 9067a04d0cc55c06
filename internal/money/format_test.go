package money

import (
	"testing"

	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$1,500.00", Format(1500, models.CurrencyUSD))
	assert.Equal(t, "$0.00", Format(0, models.CurrencyUSD))
	assert.Equal(t, "$19.99", Format(19.99, models.CurrencyUSD))
	assert.Equal(t, "$1,234,567.89", Format(1234567.89, models.CurrencyUSD))
}

func TestFormatCLP(t *testing.T) {
	// CLP no lleva decimales y agrupa con punto
	assert.Equal(t, "$1.500", Format(1500, models.CurrencyCLP))
	assert.Equal(t, "$0", Format(0, models.CurrencyCLP))
	assert.Equal(t, "$1.234.568", Format(1234567.89, models.CurrencyCLP))
}

func TestFormatRounding(t *testing.T) {
	// El redondeo a unidades menores sucede solo al formatear
	assert.Equal(t, "$0.13", Format(0.125000001, models.CurrencyUSD))
	assert.Equal(t, "$2.00", Format(1.999, models.CurrencyUSD))
}

func TestFormatNegative(t *testing.T) {
	assert.Equal(t, "-$250.50", Format(-250.5, models.CurrencyUSD))
}

func TestFormatUnknownCurrencyFallsBackToUSD(t *testing.T) {
	assert.Equal(t, "$100.00", Format(100, models.Currency("XXX-NOPE")))
}
