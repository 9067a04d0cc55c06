package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/hypernova-labs/quote-service/internal/money"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// DocumentGenerator maneja la generación del PDF del presupuesto
type DocumentGenerator struct {
	logger *logrus.Logger
}

// NewDocumentGenerator crea una nueva instancia del generador
func NewDocumentGenerator(logger *logrus.Logger) *DocumentGenerator {
	return &DocumentGenerator{
		logger: logger,
	}
}

// GenerateQuoteFiles genera el PDF de un presupuesto guardado
func (d *DocumentGenerator) GenerateQuoteFiles(company *models.Company, quote *models.Quote, items []models.QuoteItem) (*models.QuoteFiles, error) {
	pdfData, err := d.GenerateQuotePDF(company, quote, items)
	if err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	files := &models.QuoteFiles{
		ID:          uuid.New(),
		QuoteID:     quote.ID,
		PDFData:     pdfData,
		PDFSize:     int64(len(pdfData)),
		GeneratedAt: time.Now(),
		UpdatedAt:   time.Now(),
	}

	d.logger.WithFields(logrus.Fields{
		"quote_id": quote.ID,
		"pdf_size": files.PDFSize,
	}).Info("Quote PDF generated successfully")

	return files, nil
}

// GenerateQuotePDF genera el PDF del presupuesto. El render es una
// función pura de sus entradas: mismas entradas, mismos bytes. Por eso
// la fecha de creación del documento se fija desde la fecha de emisión
// y nunca desde el reloj.
func (d *DocumentGenerator) GenerateQuotePDF(company *models.Company, quote *models.Quote, items []models.QuoteItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetCatalogSort(true)
	if issued, err := time.Parse("2006-01-02", quote.IssueDate); err == nil {
		pdf.SetCreationDate(issued)
		pdf.SetModificationDate(issued)
	}

	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	usableWidth := pageWidth - 20

	// Caja del logo (esquina superior izquierda)
	logoSize := 25.0
	pdf.SetDrawColor(120, 120, 120)
	pdf.Rect(10, 10, logoSize, logoSize, "D")
	if !d.drawLogo(pdf, company.LogoURL, 10, 10, logoSize) {
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.SetXY(10, 10+logoSize/2-2)
		pdf.CellFormat(logoSize, 4, "LOGO", "", 0, "C", false, 0, "")
	}

	// Título y fecha de emisión (derecha)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(10+logoSize+5, 10)
	pdf.CellFormat(usableWidth-logoSize-5, 9, "PRESUPUESTO", "", 2, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(usableWidth-logoSize-5, 6, tr(fmt.Sprintf("FECHA EMISIÓN: %s", displayDate(quote.IssueDate))), "", 2, "R", false, 0, "")
	pdf.CellFormat(usableWidth-logoSize-5, 6, tr(fmt.Sprintf("MONEDA: %s", quote.Currency)), "", 2, "R", false, 0, "")

	// Datos de la empresa
	pdf.SetXY(10, 10+logoSize+5)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(usableWidth, 6, tr(company.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if company.Rif != "" {
		pdf.CellFormat(usableWidth, 5, tr(fmt.Sprintf("RIF.: %s", company.Rif)), "", 2, "L", false, 0, "")
	}
	if company.Phone != "" {
		pdf.CellFormat(usableWidth, 5, tr(fmt.Sprintf("TELÉFONO: %s", company.Phone)), "", 2, "L", false, 0, "")
	}
	if company.AddressLines != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(usableWidth, 5, tr(fmt.Sprintf("DIRECCIÓN: %s", company.AddressLines)), "", "L", false)
	}
	pdf.Ln(3)

	// Datos del presupuesto y del cliente (siempre desde el snapshot)
	pdf.SetFont("Arial", "B", 9)
	d.labelRow(pdf, tr, usableWidth, "OBRA:", quote.Work)
	d.labelRow(pdf, tr, usableWidth, "CLIENTE:", quote.ClientName)
	d.labelRow(pdf, tr, usableWidth, "RIF:", quote.ClientRif)
	d.labelRow(pdf, tr, usableWidth, "DIRECCIÓN:", quote.ClientAddress)
	pdf.Ln(4)

	// Tabla de items
	colWidths := []float64{20, 15, 75, 18, 12, 28, 28}
	colHeaders := []string{"CÓDIGO", "UND", "DESCRIPCIÓN", "CANT.", "SG", "P. UNITARIO", "PRECIO TOTAL"}

	drawTableHeader := func() {
		pdf.SetFillColor(230, 230, 230)
		pdf.SetFont("Arial", "B", 8)
		for i, header := range colHeaders {
			pdf.CellFormat(colWidths[i], 7, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(7)
	}
	drawTableHeader()

	pdf.SetFont("Arial", "", 8)
	lineHeight := 5.0
	_, pageHeight := pdf.GetPageSize()
	breakAt := pageHeight - 25

	for _, item := range items {
		descLines := pdf.SplitText(tr(item.Description), colWidths[2]-2)
		if len(descLines) == 0 {
			descLines = []string{""}
		}
		rowHeight := float64(len(descLines)) * lineHeight

		if pdf.GetY()+rowHeight > breakAt {
			pdf.AddPage()
			drawTableHeader()
			pdf.SetFont("Arial", "", 8)
		}

		x, y := pdf.GetX(), pdf.GetY()
		pdf.CellFormat(colWidths[0], rowHeight, tr(item.Code), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], rowHeight, tr(item.Unit), "1", 0, "C", false, 0, "")

		// Descripción con salto de línea dentro de su celda
		descX := x + colWidths[0] + colWidths[1]
		pdf.Rect(descX, y, colWidths[2], rowHeight, "D")
		pdf.SetXY(descX+1, y)
		for _, line := range descLines {
			pdf.CellFormat(colWidths[2]-2, lineHeight, line, "", 2, "L", false, 0, "")
		}
		pdf.SetXY(descX+colWidths[2], y)

		pdf.CellFormat(colWidths[3], rowHeight, formatQuantity(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], rowHeight, tr(item.SG), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[5], rowHeight, money.Format(item.UnitPrice, quote.Currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[6], rowHeight, money.Format(item.LineTotal(), quote.Currency), "1", 0, "R", false, 0, "")
		pdf.Ln(rowHeight)
	}

	pdf.Ln(4)

	// Nota sobre condiciones de pago
	noteWidth := usableWidth - 70
	noteY := pdf.GetY()
	pdf.SetFont("Arial", "I", 7)
	pdf.MultiCell(noteWidth, 4, tr("NOTA: Se requiere un anticipo para dar inicio a los trabajos. "+
		"Los precios expresados están sujetos a variación según la tasa de cambio vigente a la fecha de pago."), "", "L", false)

	// Totales (derecha, alineados con la tabla). Un borrador todavía no
	// trae totales persistidos: se calculan con la misma función y la
	// misma tasa que usa el guardado.
	ivaPercent := models.DefaultIVARate
	if company.IVARate > 0 {
		ivaPercent = company.IVARate
	}

	subtotal, tax, total := quote.Subtotal, quote.Tax, quote.Total
	if total == 0 && subtotal == 0 {
		totals := money.ComputeTotals(items, money.TaxRateFromPercent(ivaPercent))
		subtotal, tax, total = totals.Subtotal, totals.Tax, totals.Total
	}

	totalsX := 10 + usableWidth - 70
	pdf.SetXY(totalsX, noteY)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(40, 6, "SUB-TOTAL", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, money.Format(subtotal, quote.Currency), "1", 1, "R", false, 0, "")
	pdf.SetX(totalsX)
	pdf.CellFormat(40, 6, tr(fmt.Sprintf("I.V.A. %s%%", formatQuantity(ivaPercent))), "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, money.Format(tax, quote.Currency), "1", 1, "R", false, 0, "")
	pdf.SetX(totalsX)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 7, "TOTAL", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, money.Format(total, quote.Currency), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	return buf.Bytes(), nil
}

// labelRow dibuja una fila etiqueta-valor de los datos del presupuesto
func (d *DocumentGenerator) labelRow(pdf *gofpdf.Fpdf, tr func(string) string, width float64, label, value string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(28, 5, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(width-28, 5, tr(value), "", 1, "L", false, 0, "")
}

// drawLogo decodifica el logo (data URL) y lo dibuja escalado dentro de
// la caja. Retorna false si no hay logo o no se pudo decodificar; la
// caja queda con el placeholder.
func (d *DocumentGenerator) drawLogo(pdf *gofpdf.Fpdf, logoURL *string, x, y, size float64) bool {
	if logoURL == nil || *logoURL == "" {
		return false
	}

	imageType, data, err := decodeDataURL(*logoURL)
	if err != nil {
		d.logger.WithError(err).Warn("Could not decode company logo, rendering placeholder")
		return false
	}

	opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader("company-logo", opts, bytes.NewReader(data))
	if pdf.Err() || info == nil {
		d.logger.Warn("Could not register company logo, rendering placeholder")
		pdf.ClearError()
		return false
	}

	// Escalar conservando proporciones dentro de la caja
	w, h := info.Extent()
	scale := size / w
	if size/h < scale {
		scale = size / h
	}
	drawW, drawH := w*scale, h*scale
	pdf.ImageOptions("company-logo", x+(size-drawW)/2, y+(size-drawH)/2, drawW, drawH, false, opts, 0, "")
	return true
}

// decodeDataURL extrae el tipo de imagen y los bytes de un data URL
func decodeDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return "", nil, fmt.Errorf("unsupported logo format")
	}

	rest := strings.TrimPrefix(dataURL, "data:image/")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, fmt.Errorf("logo data URL is not base64 encoded")
	}

	imageType := rest[:sep]
	switch imageType {
	case "png":
		imageType = "PNG"
	case "jpeg", "jpg":
		imageType = "JPG"
	default:
		return "", nil, fmt.Errorf("unsupported logo image type: %s", imageType)
	}

	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("error decoding logo data: %w", err)
	}
	return imageType, data, nil
}

// displayDate reformatea la fecha ISO a DD/MM/YYYY solo para mostrar
func displayDate(isoDate string) string {
	parsed, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return parsed.Format("02/01/2006")
}

// formatQuantity imprime cantidades sin decimales de relleno
func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return fmt.Sprintf("%.2f", q)
}
