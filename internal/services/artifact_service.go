package services

import (
	"fmt"
	"time"

	"github.com/hypernova-labs/quote-service/internal/database"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// pdfCacheTTL es la vigencia del PDF en caché. Los presupuestos
// guardados son inmutables, el TTL solo acota el uso de memoria.
const pdfCacheTTL = 24 * time.Hour

// ArtifactService resuelve los bytes del PDF de un presupuesto:
// caché Redis, luego persistencia durable, y como último recurso el
// render. Caché y persistencia son best-effort; un fallo en ellas se
// registra y el documento se sirve igual.
type ArtifactService struct {
	store     *Store
	generator *DocumentGenerator
	artifacts ArtifactBackend
	cache     *database.Redis
	logger    *logrus.Logger
}

// NewArtifactService crea el servicio. artifacts y cache pueden ser
// nil cuando el despliegue no los tiene.
func NewArtifactService(store *Store, generator *DocumentGenerator, artifacts ArtifactBackend, cache *database.Redis, logger *logrus.Logger) *ArtifactService {
	return &ArtifactService{
		store:     store,
		generator: generator,
		artifacts: artifacts,
		cache:     cache,
		logger:    logger,
	}
}

// GetQuotePDF retorna los bytes del PDF de un presupuesto guardado.
// La misma salida sirve para vista previa y descarga: la disposición
// es asunto del transporte, no del documento.
func (a *ArtifactService) GetQuotePDF(quote *models.Quote) ([]byte, error) {
	cacheKey := fmt.Sprintf("quote_pdf:%s", quote.ID)

	if a.cache != nil {
		if data, err := a.cache.GetBytes(cacheKey); err == nil && len(data) > 0 {
			return data, nil
		}
	}

	if a.artifacts != nil {
		files, err := a.artifacts.GetQuoteFiles(quote.ID)
		if err == nil && files != nil && len(files.PDFData) > 0 {
			a.cacheBytes(cacheKey, files.PDFData)
			return files.PDFData, nil
		}
	}

	company := a.store.Company()
	files, err := a.generator.GenerateQuoteFiles(&company, quote, quote.Items)
	if err != nil {
		return nil, err
	}

	if a.artifacts != nil {
		if err := a.artifacts.SaveQuoteFiles(files); err != nil {
			a.logger.WithError(err).Warn("Could not persist quote PDF")
		}
	}
	a.cacheBytes(cacheKey, files.PDFData)

	return files.PDFData, nil
}

// RenderDraftPDF renderiza el borrador actual sin tocar caché ni
// persistencia: el borrador cambia con cada edición
func (a *ArtifactService) RenderDraftPDF() ([]byte, error) {
	company := a.store.Company()
	draft := a.store.Draft()
	return a.generator.GenerateQuotePDF(&company, &draft.Quote, draft.Items)
}

func (a *ArtifactService) cacheBytes(key string, data []byte) {
	if a.cache == nil {
		return
	}
	if err := a.cache.SetWithTTL(key, data, pdfCacheTTL); err != nil {
		a.logger.WithError(err).Warn("Could not cache quote PDF")
	}
}
