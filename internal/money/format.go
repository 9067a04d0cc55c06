package money

import (
	"math"

	gomoney "github.com/Rhymond/go-money"
	"github.com/hypernova-labs/quote-service/internal/models"
)

// Format renderiza un monto en la convención de la moneda indicada:
// USD con 2 decimales y agrupación americana ($1,500.00), CLP sin
// decimales y agrupación chilena ($1.500). Una moneda desconocida cae
// a USD para no fallar el render. Montos negativos y cero se formatean
// con la convención de signo estándar.
func Format(amount float64, currency models.Currency) string {
	code := string(currency)
	if gomoney.GetCurrency(code) == nil {
		code = string(models.CurrencyUSD)
	}

	cur := gomoney.GetCurrency(code)
	minor := int64(math.Round(amount * math.Pow10(cur.Fraction)))
	return gomoney.New(minor, code).Display()
}
