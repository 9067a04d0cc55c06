package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/hypernova-labs/quote-service/internal/money"
	"github.com/sirupsen/logrus"
)

// ErrCompanyNotResolved indica que se intentó guardar un presupuesto
// antes de que la empresa tenga identidad persistida. Es un error de
// secuencia, no una falla transitoria: no debe reintentarse.
var ErrCompanyNotResolved = errors.New("company identity not resolved")

// ValidationError representa un campo de entrada inválido, detectado
// antes de tocar el backend
type ValidationError struct {
	Field string
	Issue string
}

// Error implementa la interfaz error
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Issue)
}

// Store mantiene el estado en memoria de la aplicación (empresa,
// borrador de presupuesto y roster de clientes) sincronizado con el
// backend de persistencia. Toda mutación pasa por sus operaciones; las
// completaciones se aplican en serie.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *logrus.Logger

	company models.Company
	draft   models.QuoteDraft
	clients []models.Client

	pending sync.WaitGroup
}

// NewStore crea un Store sobre el backend dado
func NewStore(backend Backend, logger *logrus.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Load carga el estado inicial desde el backend. Si la empresa no
// existe se inserta con defaults; si el backend falla se usan defaults
// en memoria sin bloquear el arranque (la persistencia es best-effort).
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, err := s.backend.GetCompany()
	switch {
	case err != nil:
		s.logger.WithError(err).Warn("Could not load company from backend, using in-memory defaults")
		s.company = models.DefaultCompany()
	case company == nil:
		def := models.DefaultCompany()
		if err := s.backend.InsertCompany(&def); err != nil {
			s.logger.WithError(err).Warn("Could not insert default company, using in-memory defaults")
			s.company = models.DefaultCompany()
		} else {
			s.company = def
			s.logger.WithField("company_id", def.ID).Info("Default company created")
		}
	default:
		s.company = *company
	}

	clients, err := s.backend.ListClients()
	if err != nil {
		s.logger.WithError(err).Warn("Could not load clients from backend")
	} else {
		s.clients = clients
	}

	s.draft = newDraft(s.company)
}

// newDraft retorna el borrador inicial de un presupuesto
func newDraft(company models.Company) models.QuoteDraft {
	currency := company.DefaultCurrency
	if currency == "" {
		currency = models.CurrencyUSD
	}
	return models.QuoteDraft{
		Quote: models.Quote{
			IssueDate: time.Now().Format("2006-01-02"),
			Currency:  currency,
		},
		Items: []models.QuoteItem{
			{Code: "NA", Unit: "NA", Quantity: 1},
		},
	}
}

// Company retorna la empresa actual
func (s *Store) Company() models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.company
}

// Clients retorna el roster actual
func (s *Store) Clients() []models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := make([]models.Client, len(s.clients))
	copy(clients, s.clients)
	return clients
}

// Draft retorna el borrador actual
func (s *Store) Draft() models.QuoteDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.draft
	draft.Items = make([]models.QuoteItem, len(s.draft.Items))
	copy(draft.Items, s.draft.Items)
	return draft
}

// SetFromForm reemplaza el borrador en memoria. No escribe al backend:
// el presupuesto solo se materializa con SaveQuote.
func (s *Store) SetFromForm(quote models.Quote, items []models.QuoteItem) error {
	if err := validateItems(items); err != nil {
		return err
	}
	if err := validateIssueDate(quote.IssueDate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quote.Currency == "" {
		quote.Currency = s.defaultCurrencyLocked()
	}
	s.draft = models.QuoteDraft{Quote: quote, Items: items}
	return nil
}

// UpdateCompany fusiona los datos recibidos con la empresa actual.
// Si el resultado es idéntico campo por campo, la escritura se omite
// por completo (corto circuito explícito, no comparación por
// referencia). El cambio se aplica localmente y la persistencia se
// despacha como tarea asíncrona cuyo fallo se registra sin re-lanzarse.
func (s *Store) UpdateCompany(req *models.UpdateCompanyRequest) models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.company
	merged.Name = req.Name
	merged.Rif = req.Rif
	merged.Phone = req.Phone
	merged.AddressLines = req.AddressLines
	if req.LogoURL != nil {
		merged.LogoURL = req.LogoURL
	}
	if req.DefaultCurrency != "" {
		merged.DefaultCurrency = req.DefaultCurrency
	}
	if req.IVARate != nil {
		merged.IVARate = *req.IVARate
	}

	if s.company.Equal(&merged) {
		return s.company
	}

	s.company = merged
	s.dispatchCompanyWrite(merged)
	return merged
}

// SetLogo actualiza solo el logo de la empresa, con la misma semántica
// de corto circuito y escritura asíncrona que UpdateCompany
func (s *Store) SetLogo(dataURL string) models.Company {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.company
	merged.LogoURL = &dataURL

	if s.company.Equal(&merged) {
		return s.company
	}

	s.company = merged
	s.dispatchCompanyWrite(merged)
	return merged
}

// dispatchCompanyWrite despacha la persistencia de la empresa en
// segundo plano. Se llama con el lock tomado.
func (s *Store) dispatchCompanyWrite(snapshot models.Company) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		if snapshot.Resolved() {
			if err := s.backend.UpdateCompany(&snapshot); err != nil {
				s.logger.WithError(err).Error("Error persisting company update")
			}
			return
		}

		if err := s.backend.InsertCompany(&snapshot); err != nil {
			s.logger.WithError(err).Error("Error persisting company insert")
			return
		}

		// El insert asignó identidad: reflejarla en el estado local
		s.mu.Lock()
		if !s.company.Resolved() {
			s.company.ID = snapshot.ID
		}
		s.mu.Unlock()
	}()
}

// Flush espera las escrituras asíncronas en vuelo (apagado ordenado)
func (s *Store) Flush() {
	s.pending.Wait()
}

// AddClient agrega un cliente al roster. El estado local solo se
// actualiza si el backend acepta la escritura.
func (s *Store) AddClient(req *models.ClientRequest) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client := &models.Client{
		CompanyID: s.company.ID,
		Name:      req.Name,
		Rif:       req.Rif,
		Address:   req.Address,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	if err := s.backend.InsertClient(client); err != nil {
		s.logger.WithError(err).Error("Error adding client")
		return nil, fmt.Errorf("error adding client: %w", err)
	}

	s.clients = append(s.clients, *client)
	return client, nil
}

// UpdateClient actualiza un cliente del roster
func (s *Store) UpdateClient(id uuid.UUID, req *models.ClientRequest) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.clients {
		if s.clients[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("client not found: %s", id)
	}

	client := s.clients[idx]
	client.Name = req.Name
	client.Rif = req.Rif
	client.Address = req.Address
	client.Email = req.Email
	client.Phone = req.Phone

	if err := s.backend.UpdateClient(&client); err != nil {
		s.logger.WithError(err).Error("Error updating client")
		return nil, fmt.Errorf("error updating client: %w", err)
	}

	s.clients[idx] = client
	return &client, nil
}

// RemoveClient elimina un cliente del roster. Los presupuestos ya
// guardados que lo referencian conservan su snapshot.
func (s *Store) RemoveClient(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.DeleteClient(id); err != nil {
		s.logger.WithError(err).Error("Error removing client")
		return fmt.Errorf("error removing client: %w", err)
	}

	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			break
		}
	}
	return nil
}

// SaveQuote materializa el presupuesto como registro persistido.
// Requiere identidad de empresa resuelta; valida antes de escribir;
// escribe la cabecera estrictamente antes que los items y propaga un
// fallo de items sin revertir la cabecera.
func (s *Store) SaveQuote(req *models.SaveQuoteRequest) (*models.Quote, error) {
	items := itemsFromRequest(req.Items)
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if err := validateIssueDate(req.Quote.IssueDate); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.company.Resolved() {
		return nil, ErrCompanyNotResolved
	}

	quote := models.Quote{
		CompanyID:     s.company.ID,
		Work:          req.Quote.Work,
		ClientName:    req.Quote.ClientName,
		ClientRif:     req.Quote.ClientRif,
		ClientAddress: req.Quote.ClientAddress,
		IssueDate:     req.Quote.IssueDate,
		Currency:      req.Quote.Currency,
	}
	if quote.Currency == "" {
		quote.Currency = s.defaultCurrencyLocked()
	}

	// La referencia débil al cliente debe existir al momento de la
	// selección; el snapshot queda como fuente para el render.
	if req.Quote.ClientID != nil && *req.Quote.ClientID != "" {
		clientID, err := uuid.Parse(*req.Quote.ClientID)
		if err != nil {
			return nil, &ValidationError{Field: "client_id", Issue: "must be a valid UUID"}
		}
		if _, err := s.backend.GetClient(clientID); err != nil {
			return nil, &ValidationError{Field: "client_id", Issue: "referenced client does not exist"}
		}
		quote.ClientID = &clientID
	}

	totals := money.ComputeTotals(items, money.TaxRateFromPercent(s.taxPercentLocked()))
	quote.Subtotal = totals.Subtotal
	quote.Tax = totals.Tax
	quote.Total = totals.Total

	if err := s.backend.InsertQuoteHeader(&quote); err != nil {
		return nil, fmt.Errorf("error saving quote: %w", err)
	}

	if err := s.backend.InsertQuoteItems(quote.ID, items); err != nil {
		// Sin rollback de la cabecera: el llamador decide la compensación
		return nil, fmt.Errorf("error saving quote items after header %s: %w", quote.ID, err)
	}
	quote.Items = items

	// Reflejar el id asignado en el borrador
	s.draft.Quote.ID = quote.ID

	s.logger.WithFields(logrus.Fields{
		"quote_id": quote.ID,
		"items":    len(items),
		"total":    quote.Total,
	}).Info("Quote saved")

	return &quote, nil
}

// GetQuote obtiene un presupuesto guardado
func (s *Store) GetQuote(id uuid.UUID) (*models.Quote, error) {
	return s.backend.GetQuote(id)
}

// ListQuotes obtiene presupuestos guardados con paginación
func (s *Store) ListQuotes(page, pageSize int) ([]models.Quote, int, error) {
	return s.backend.ListQuotes(page, pageSize)
}

// GetClient obtiene un cliente del roster por ID
func (s *Store) GetClient(id uuid.UUID) (*models.Client, error) {
	return s.backend.GetClient(id)
}

// TaxRate retorna la tasa de IVA vigente como fracción
func (s *Store) TaxRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return money.TaxRateFromPercent(s.taxPercentLocked())
}

// taxPercentLocked retorna el porcentaje de IVA de la empresa, con el
// default cuando no está configurado. Se llama con el lock tomado.
func (s *Store) taxPercentLocked() float64 {
	if s.company.IVARate <= 0 {
		return models.DefaultIVARate
	}
	return s.company.IVARate
}

// defaultCurrencyLocked retorna la moneda por defecto de la empresa.
// Se llama con el lock tomado.
func (s *Store) defaultCurrencyLocked() models.Currency {
	if s.company.DefaultCurrency == "" {
		return models.CurrencyUSD
	}
	return s.company.DefaultCurrency
}

// itemsFromRequest convierte las líneas del request al modelo
func itemsFromRequest(reqItems []models.QuoteItemRequest) []models.QuoteItem {
	items := make([]models.QuoteItem, len(reqItems))
	for i, item := range reqItems {
		items[i] = models.QuoteItem{
			Code:        item.Code,
			Unit:        item.Unit,
			Description: item.Description,
			Quantity:    item.Quantity,
			SG:          item.SG,
			UnitPrice:   item.UnitPrice,
		}
	}
	return items
}

// validateItems verifica las invariantes de las líneas antes de
// cualquier intento de persistencia
func validateItems(items []models.QuoteItem) error {
	if len(items) == 0 {
		return &ValidationError{Field: "items", Issue: "a quote requires at least one item"}
	}
	for i, item := range items {
		if item.Quantity < 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Issue: "must be non-negative"}
		}
		if item.UnitPrice < 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Issue: "must be non-negative"}
		}
	}
	return nil
}

// validateIssueDate verifica el formato ISO de la fecha de emisión
func validateIssueDate(issueDate string) error {
	if _, err := time.Parse("2006-01-02", issueDate); err != nil {
		return &ValidationError{Field: "issue_date", Issue: "must be an ISO date (YYYY-MM-DD)"}
	}
	return nil
}
