package database

import (
	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// PostgresBackend agrupa los repositorios relacionales detrás de la
// interfaz de persistencia que consume el Store
type PostgresBackend struct {
	companies *CompanyRepository
	clients   *ClientRepository
	quotes    *QuoteRepository
	files     *QuoteFilesRepository
}

// NewPostgresBackend crea el backend relacional completo
func NewPostgresBackend(db *DB, logger *logrus.Logger) *PostgresBackend {
	return &PostgresBackend{
		companies: NewCompanyRepository(db, logger),
		clients:   NewClientRepository(db, logger),
		quotes:    NewQuoteRepository(db, logger),
		files:     NewQuoteFilesRepository(db, logger),
	}
}

// GetCompany obtiene el singleton de la empresa ((nil, nil) si no existe)
func (b *PostgresBackend) GetCompany() (*models.Company, error) {
	return b.companies.Get()
}

// InsertCompany crea el registro de la empresa
func (b *PostgresBackend) InsertCompany(company *models.Company) error {
	return b.companies.Insert(company)
}

// UpdateCompany actualiza el registro de la empresa
func (b *PostgresBackend) UpdateCompany(company *models.Company) error {
	return b.companies.Update(company)
}

// ListClients obtiene el roster de clientes
func (b *PostgresBackend) ListClients() ([]models.Client, error) {
	return b.clients.List()
}

// GetClient obtiene un cliente por ID
func (b *PostgresBackend) GetClient(id uuid.UUID) (*models.Client, error) {
	return b.clients.GetByID(id)
}

// InsertClient crea un cliente
func (b *PostgresBackend) InsertClient(client *models.Client) error {
	return b.clients.Create(client)
}

// UpdateClient actualiza un cliente
func (b *PostgresBackend) UpdateClient(client *models.Client) error {
	return b.clients.Update(client)
}

// DeleteClient elimina un cliente
func (b *PostgresBackend) DeleteClient(id uuid.UUID) error {
	return b.clients.Delete(id)
}

// InsertQuoteHeader inserta la cabecera de un presupuesto
func (b *PostgresBackend) InsertQuoteHeader(quote *models.Quote) error {
	return b.quotes.CreateHeader(quote)
}

// InsertQuoteItems inserta las líneas de un presupuesto
func (b *PostgresBackend) InsertQuoteItems(quoteID uuid.UUID, items []models.QuoteItem) error {
	return b.quotes.CreateItems(quoteID, items)
}

// GetQuote obtiene un presupuesto con sus items
func (b *PostgresBackend) GetQuote(id uuid.UUID) (*models.Quote, error) {
	return b.quotes.GetByID(id)
}

// ListQuotes obtiene presupuestos paginados
func (b *PostgresBackend) ListQuotes(page, pageSize int) ([]models.Quote, int, error) {
	return b.quotes.List(page, pageSize)
}

// GetQuoteFiles obtiene el artefacto PDF persistido
func (b *PostgresBackend) GetQuoteFiles(quoteID uuid.UUID) (*models.QuoteFiles, error) {
	return b.files.GetByQuoteID(quoteID)
}

// SaveQuoteFiles persiste el artefacto PDF (UPSERT)
func (b *PostgresBackend) SaveQuoteFiles(files *models.QuoteFiles) error {
	return b.files.CreateOrUpdate(files)
}
