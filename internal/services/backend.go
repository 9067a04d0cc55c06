package services

import (
	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
)

// Backend define la persistencia que consume el Store. La implementan
// el backend relacional (database.PostgresBackend) y la variante de
// almacenamiento local (database.LocalStore).
type Backend interface {
	// GetCompany retorna (nil, nil) cuando el singleton aún no existe
	GetCompany() (*models.Company, error)
	InsertCompany(company *models.Company) error
	UpdateCompany(company *models.Company) error

	ListClients() ([]models.Client, error)
	GetClient(id uuid.UUID) (*models.Client, error)
	InsertClient(client *models.Client) error
	UpdateClient(client *models.Client) error
	DeleteClient(id uuid.UUID) error

	InsertQuoteHeader(quote *models.Quote) error
	InsertQuoteItems(quoteID uuid.UUID, items []models.QuoteItem) error
	GetQuote(id uuid.UUID) (*models.Quote, error)
	ListQuotes(page, pageSize int) ([]models.Quote, int, error)
}

// ArtifactBackend es la persistencia durable opcional de los PDFs
// renderizados. La variante local no la implementa: allí el documento
// se regenera bajo demanda.
type ArtifactBackend interface {
	GetQuoteFiles(quoteID uuid.UUID) (*models.QuoteFiles, error)
	SaveQuoteFiles(files *models.QuoteFiles) error
}
