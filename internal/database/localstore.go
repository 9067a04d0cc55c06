package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Nombres de los slots de almacenamiento local
const (
	localSlotCompany = "company.json"
	localSlotClients = "clients.json"
	localSlotQuotes  = "quotes.json"
)

// LocalStore es la variante de persistencia en almacenamiento local:
// slots serializados en disco, leídos al arrancar y escritos en cada
// mutación. Datos corruptos o ausentes caen silenciosamente a los
// valores por defecto. Todas las operaciones completan síncronamente.
type LocalStore struct {
	mu      sync.Mutex
	path    string
	logger  *logrus.Logger
	company *models.Company
	clients []models.Client
	quotes  []models.Quote
}

// NewLocalStore crea el backend local y carga los slots existentes
func NewLocalStore(path string, logger *logrus.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("error creating local storage dir: %w", err)
	}

	store := &LocalStore{
		path:   path,
		logger: logger,
	}
	store.load()

	return store, nil
}

// load lee los slots de disco; cualquier error deja el slot en defaults
func (s *LocalStore) load() {
	var company models.Company
	if s.readSlot(localSlotCompany, &company) && company.ID != uuid.Nil {
		s.company = &company
	}

	var clients []models.Client
	if s.readSlot(localSlotClients, &clients) {
		s.clients = clients
	}

	var quotes []models.Quote
	if s.readSlot(localSlotQuotes, &quotes) {
		s.quotes = quotes
	}
}

// readSlot deserializa un slot; retorna false si falta o está corrupto
func (s *LocalStore) readSlot(name string, v interface{}) bool {
	data, err := os.ReadFile(filepath.Join(s.path, name))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.WithError(err).Warnf("Corrupt local storage slot %s, falling back to defaults", name)
		return false
	}
	return true
}

// writeSlot serializa un slot a disco
func (s *LocalStore) writeSlot(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error serializing slot %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.path, name), data, 0o644); err != nil {
		return fmt.Errorf("error writing slot %s: %w", name, err)
	}
	return nil
}

// GetCompany obtiene el singleton de la empresa ((nil, nil) si no existe)
func (s *LocalStore) GetCompany() (*models.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.company == nil {
		return nil, nil
	}
	copied := *s.company
	return &copied, nil
}

// InsertCompany crea el registro de la empresa
func (s *LocalStore) InsertCompany(company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt

	copied := *company
	s.company = &copied
	return s.writeSlot(localSlotCompany, s.company)
}

// UpdateCompany actualiza el registro de la empresa
func (s *LocalStore) UpdateCompany(company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.company == nil || s.company.ID != company.ID {
		return fmt.Errorf("company not found: %s", company.ID)
	}

	company.UpdatedAt = time.Now()
	copied := *company
	s.company = &copied
	return s.writeSlot(localSlotCompany, s.company)
}

// ListClients obtiene el roster de clientes
func (s *LocalStore) ListClients() ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]models.Client, len(s.clients))
	copy(clients, s.clients)
	return clients, nil
}

// GetClient obtiene un cliente por ID
func (s *LocalStore) GetClient(id uuid.UUID) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, client := range s.clients {
		if client.ID == id {
			copied := client
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("client not found: %s", id)
}

// InsertClient crea un cliente
func (s *LocalStore) InsertClient(client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt

	s.clients = append(s.clients, *client)
	return s.writeSlot(localSlotClients, s.clients)
}

// UpdateClient actualiza un cliente
func (s *LocalStore) UpdateClient(client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clients {
		if s.clients[i].ID == client.ID {
			client.CreatedAt = s.clients[i].CreatedAt
			client.UpdatedAt = time.Now()
			s.clients[i] = *client
			return s.writeSlot(localSlotClients, s.clients)
		}
	}
	return fmt.Errorf("client not found: %s", client.ID)
}

// DeleteClient elimina un cliente del roster
func (s *LocalStore) DeleteClient(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			return s.writeSlot(localSlotClients, s.clients)
		}
	}
	return fmt.Errorf("client not found: %s", id)
}

// InsertQuoteHeader inserta la cabecera de un presupuesto
func (s *LocalStore) InsertQuoteHeader(quote *models.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	quote.CreatedAt = time.Now()

	header := *quote
	header.Items = nil
	s.quotes = append(s.quotes, header)
	return s.writeSlot(localSlotQuotes, s.quotes)
}

// InsertQuoteItems agrega las líneas a un presupuesto ya guardado
func (s *LocalStore) InsertQuoteItems(quoteID uuid.UUID, items []models.QuoteItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.quotes {
		if s.quotes[i].ID == quoteID {
			stored := make([]models.QuoteItem, len(items))
			for j := range items {
				items[j].QuoteID = quoteID
				items[j].LineNo = j + 1
				if items[j].ID == uuid.Nil {
					items[j].ID = uuid.New()
				}
				stored[j] = items[j]
			}
			s.quotes[i].Items = stored
			return s.writeSlot(localSlotQuotes, s.quotes)
		}
	}
	return fmt.Errorf("quote not found: %s", quoteID)
}

// GetQuote obtiene un presupuesto con sus items
func (s *LocalStore) GetQuote(id uuid.UUID) (*models.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, quote := range s.quotes {
		if quote.ID == id {
			copied := quote
			copied.Items = make([]models.QuoteItem, len(quote.Items))
			copy(copied.Items, quote.Items)
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("quote not found: %s", id)
}

// ListQuotes obtiene presupuestos paginados, más recientes primero
func (s *LocalStore) ListQuotes(page, pageSize int) ([]models.Quote, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.quotes)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	// s.quotes está en orden de inserción; se recorre desde el final
	quotes := make([]models.Quote, 0, end-start)
	for i := total - 1 - start; i >= total-end; i-- {
		quotes = append(quotes, s.quotes[i])
	}
	return quotes, total, nil
}
