package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCompany() *models.Company {
	return &models.Company{
		Name:            "Construcciones Delta C.A.",
		Rif:             "J-98765432-1",
		Phone:           "+58 212 555 1234",
		AddressLines:    "Calle Los Samanes, Edif. Delta, Caracas",
		DefaultCurrency: models.CurrencyUSD,
		IVARate:         16,
	}
}

func sampleQuote() (*models.Quote, []models.QuoteItem) {
	items := []models.QuoteItem{
		{Code: "NA", Unit: "m2", Description: "Impermeabilización con manto asfáltico de 3mm, incluye limpieza previa de la superficie y aplicación de primer asfáltico", Quantity: 120, SG: "1", UnitPrice: 14.5},
		{Code: "NA", Unit: "sg", Description: "Transporte de materiales", Quantity: 1, SG: "1", UnitPrice: 250},
	}
	quote := &models.Quote{
		Work:          "Impermeabilización de techo",
		ClientName:    "Constructora Andes C.A.",
		ClientRif:     "J-12345678-9",
		ClientAddress: "Av. Principal, Caracas",
		IssueDate:     "2025-03-15",
		Currency:      models.CurrencyUSD,
		Subtotal:      1990,
		Tax:           318.4,
		Total:         2308.4,
	}
	return quote, items
}

func TestGenerateQuotePDF(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()

	data, err := generator.GenerateQuotePDF(sampleCompany(), quote, items)
	require.NoError(t, err)

	assert.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestGenerateQuotePDFDeterministic(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()
	company := sampleCompany()

	first, err := generator.GenerateQuotePDF(company, quote, items)
	require.NoError(t, err)

	second, err := generator.GenerateQuotePDF(company, quote, items)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateQuotePDFDoesNotMutateInputs(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()
	company := sampleCompany()

	originalQuote := *quote
	originalItems := append([]models.QuoteItem(nil), items...)

	_, err := generator.GenerateQuotePDF(company, quote, items)
	require.NoError(t, err)

	assert.Equal(t, originalQuote, *quote)
	assert.Equal(t, originalItems, items)
}

func TestGenerateQuotePDFWithLogo(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()
	company := sampleCompany()

	logo := testPNGDataURL(t, 64, 64)
	company.LogoURL = &logo

	data, err := generator.GenerateQuotePDF(company, quote, items)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGenerateQuotePDFInvalidLogoFallsBackToPlaceholder(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()
	company := sampleCompany()

	broken := "data:image/png;base64,not-base64!"
	company.LogoURL = &broken

	data, err := generator.GenerateQuotePDF(company, quote, items)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGenerateQuotePDFManyItemsPaginates(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, _ := sampleQuote()

	items := make([]models.QuoteItem, 80)
	for i := range items {
		items[i] = models.QuoteItem{
			Code:        "NA",
			Unit:        "m2",
			Description: "Partida de obra con descripción suficientemente larga como para ocupar más de una línea en la tabla del documento",
			Quantity:    float64(i + 1),
			UnitPrice:   10,
		}
	}

	data, err := generator.GenerateQuotePDF(sampleCompany(), quote, items)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGenerateQuoteFiles(t *testing.T) {
	generator := NewDocumentGenerator(testLogger())
	quote, items := sampleQuote()
	quote.ID = uuid.New()

	files, err := generator.GenerateQuoteFiles(sampleCompany(), quote, items)
	require.NoError(t, err)

	assert.Equal(t, quote.ID, files.QuoteID)
	assert.Equal(t, int64(len(files.PDFData)), files.PDFSize)
	assert.NotEmpty(t, files.PDFData)
}

func TestDecodeDataURL(t *testing.T) {
	imageType, data, err := decodeDataURL(testPNGDataURL(t, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, "PNG", imageType)
	assert.NotEmpty(t, data)

	_, _, err = decodeDataURL("https://example.com/logo.png")
	assert.Error(t, err)

	_, _, err = decodeDataURL("data:image/gif;base64,R0lGOD==")
	assert.Error(t, err)
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "15/03/2025", displayDate("2025-03-15"))
	// Fechas no parseables se muestran tal cual
	assert.Equal(t, "pronto", displayDate("pronto"))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "12", formatQuantity(12))
	assert.Equal(t, "2.50", formatQuantity(2.5))
}

// testPNGDataURL genera un PNG sintético codificado como data URL
func testPNGDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
