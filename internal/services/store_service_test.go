package services

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend implementa Backend en memoria contando escrituras
type fakeBackend struct {
	mu sync.Mutex

	company *models.Company
	clients []models.Client
	quotes  map[uuid.UUID]*models.Quote
	items   map[uuid.UUID][]models.QuoteItem

	companyWrites int
	headerWrites  int
	itemWrites    int

	failCompanyRead bool
	failClientWrite bool
	failItemWrite   bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		quotes: make(map[uuid.UUID]*models.Quote),
		items:  make(map[uuid.UUID][]models.QuoteItem),
	}
}

func (f *fakeBackend) GetCompany() (*models.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCompanyRead {
		return nil, errors.New("backend unavailable")
	}
	if f.company == nil {
		return nil, nil
	}
	company := *f.company
	return &company, nil
}

func (f *fakeBackend) InsertCompany(company *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyWrites++
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	stored := *company
	f.company = &stored
	return nil
}

func (f *fakeBackend) UpdateCompany(company *models.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companyWrites++
	stored := *company
	f.company = &stored
	return nil
}

func (f *fakeBackend) ListClients() ([]models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Client(nil), f.clients...), nil
}

func (f *fakeBackend) GetClient(id uuid.UUID) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.clients {
		if f.clients[i].ID == id {
			client := f.clients[i]
			return &client, nil
		}
	}
	return nil, fmt.Errorf("client not found: %s", id)
}

func (f *fakeBackend) InsertClient(client *models.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClientWrite {
		return errors.New("backend unavailable")
	}
	client.ID = uuid.New()
	f.clients = append(f.clients, *client)
	return nil
}

func (f *fakeBackend) UpdateClient(client *models.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClientWrite {
		return errors.New("backend unavailable")
	}
	for i := range f.clients {
		if f.clients[i].ID == client.ID {
			f.clients[i] = *client
			return nil
		}
	}
	return fmt.Errorf("client not found: %s", client.ID)
}

func (f *fakeBackend) DeleteClient(id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClientWrite {
		return errors.New("backend unavailable")
	}
	for i := range f.clients {
		if f.clients[i].ID == id {
			f.clients = append(f.clients[:i], f.clients[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("client not found: %s", id)
}

func (f *fakeBackend) InsertQuoteHeader(quote *models.Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headerWrites++
	quote.ID = uuid.New()
	stored := *quote
	f.quotes[quote.ID] = &stored
	return nil
}

func (f *fakeBackend) InsertQuoteItems(quoteID uuid.UUID, items []models.QuoteItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failItemWrite {
		return errors.New("backend unavailable")
	}
	f.itemWrites++
	f.items[quoteID] = append([]models.QuoteItem(nil), items...)
	return nil
}

func (f *fakeBackend) GetQuote(id uuid.UUID) (*models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.quotes[id]
	if !ok {
		return nil, fmt.Errorf("quote not found: %s", id)
	}
	quote := *stored
	quote.Items = append([]models.QuoteItem(nil), f.items[id]...)
	return &quote, nil
}

func (f *fakeBackend) ListQuotes(page, pageSize int) ([]models.Quote, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	quotes := make([]models.Quote, 0, len(f.quotes))
	for _, q := range f.quotes {
		quotes = append(quotes, *q)
	}
	return quotes, len(quotes), nil
}

func (f *fakeBackend) writes() (company, header, items int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.companyWrites, f.headerWrites, f.itemWrites
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T, backend *fakeBackend) *Store {
	t.Helper()
	store := NewStore(backend, testLogger())
	store.Load()
	return store
}

func validQuoteRequest() *models.SaveQuoteRequest {
	return &models.SaveQuoteRequest{
		Quote: models.QuoteRequest{
			Work:       "Impermeabilización de techo",
			ClientName: "Constructora Andes C.A.",
			ClientRif:  "J-12345678-9",
			IssueDate:  "2025-03-15",
		},
		Items: []models.QuoteItemRequest{
			{Code: "NA", Unit: "m2", Description: "Manto asfáltico 3mm", Quantity: 10, UnitPrice: 120},
			{Code: "NA", Unit: "sg", Description: "Transporte de materiales", Quantity: 5, UnitPrice: 100},
		},
	}
}

func TestLoadCreatesDefaultCompany(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	company := store.Company()
	assert.True(t, company.Resolved())
	assert.Equal(t, models.CurrencyUSD, company.DefaultCurrency)
	assert.Equal(t, models.DefaultIVARate, company.IVARate)
}

func TestLoadFallsBackToDefaultsOnBackendError(t *testing.T) {
	backend := newFakeBackend()
	backend.failCompanyRead = true
	store := newTestStore(t, backend)

	company := store.Company()
	assert.False(t, company.Resolved())
	assert.Equal(t, models.DefaultIVARate, company.IVARate)

	// El borrador inicial existe aunque el backend esté caído
	draft := store.Draft()
	require.Len(t, draft.Items, 1)
	assert.Equal(t, "NA", draft.Items[0].Code)
	assert.Equal(t, 1.0, draft.Items[0].Quantity)
}

func TestUpdateCompanyNoOpSkipsWrite(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	writesBefore, _, _ := backend.writes()

	req := &models.UpdateCompanyRequest{
		Name: "Construcciones Delta C.A.",
		Rif:  "J-98765432-1",
	}
	store.UpdateCompany(req)
	store.Flush()

	afterFirst, _, _ := backend.writes()
	assert.Equal(t, writesBefore+1, afterFirst)

	// Payload idéntico: cero escrituras adicionales
	store.UpdateCompany(req)
	store.Flush()

	afterSecond, _, _ := backend.writes()
	assert.Equal(t, afterFirst, afterSecond)
}

func TestUpdateCompanyAppliesLocallyBeforePersisting(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	company := store.UpdateCompany(&models.UpdateCompanyRequest{
		Name: "Obras del Sur",
		Rif:  "J-11122233-4",
	})

	assert.Equal(t, "Obras del Sur", company.Name)
	assert.Equal(t, "Obras del Sur", store.Company().Name)
	store.Flush()
}

func TestSaveQuoteRequiresResolvedCompany(t *testing.T) {
	backend := newFakeBackend()
	backend.failCompanyRead = true
	store := newTestStore(t, backend)

	_, err := store.SaveQuote(validQuoteRequest())
	require.ErrorIs(t, err, ErrCompanyNotResolved)

	_, headers, items := backend.writes()
	assert.Zero(t, headers)
	assert.Zero(t, items)
}

func TestSaveQuoteComputesTotals(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	quote, err := store.SaveQuote(validQuoteRequest())
	require.NoError(t, err)

	assert.InDelta(t, 1700.0, quote.Subtotal, 1e-9)
	assert.InDelta(t, 272.0, quote.Tax, 1e-9)
	assert.InDelta(t, 1972.0, quote.Total, 1e-9)
	assert.Equal(t, models.CurrencyUSD, quote.Currency)
	require.Len(t, quote.Items, 2)

	_, headers, items := backend.writes()
	assert.Equal(t, 1, headers)
	assert.Equal(t, 1, items)
}

func TestSaveQuoteItemFailureKeepsHeader(t *testing.T) {
	backend := newFakeBackend()
	backend.failItemWrite = true
	store := newTestStore(t, backend)

	_, err := store.SaveQuote(validQuoteRequest())
	require.Error(t, err)

	// La cabecera ya se escribió y no se revierte
	_, headers, items := backend.writes()
	assert.Equal(t, 1, headers)
	assert.Zero(t, items)
}

func TestSaveQuoteRejectsEmptyItems(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	req := validQuoteRequest()
	req.Items = nil

	_, err := store.SaveQuote(req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "items", validationErr.Field)
}

func TestSaveQuoteRejectsUnknownClientReference(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	unknown := uuid.New().String()
	req := validQuoteRequest()
	req.Quote.ClientID = &unknown

	_, err := store.SaveQuote(req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "client_id", validationErr.Field)
}

func TestSaveQuoteUsesCompanyTaxRate(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	rate := 19.0
	store.UpdateCompany(&models.UpdateCompanyRequest{
		Name:            "Obras Australes SpA",
		Rif:             "76.123.456-7",
		DefaultCurrency: models.CurrencyCLP,
		IVARate:         &rate,
	})
	store.Flush()

	quote, err := store.SaveQuote(validQuoteRequest())
	require.NoError(t, err)

	assert.InDelta(t, 323.0, quote.Tax, 1e-9)
	assert.Equal(t, models.CurrencyCLP, quote.Currency)
}

func TestClientRoundTrip(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	email := "compras@andes.example"
	client, err := store.AddClient(&models.ClientRequest{
		Name:    "Constructora Andes C.A.",
		Rif:     "J-12345678-9",
		Address: "Av. Principal, Caracas",
		Email:   &email,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, client.ID)
	assert.Len(t, store.Clients(), 1)

	updated, err := store.UpdateClient(client.ID, &models.ClientRequest{
		Name:    "Constructora Andes, C.A.",
		Rif:     "J-12345678-9",
		Address: "Av. Principal, Torre B, Caracas",
	})
	require.NoError(t, err)
	assert.Equal(t, "Constructora Andes, C.A.", updated.Name)

	require.NoError(t, store.RemoveClient(client.ID))
	assert.Empty(t, store.Clients())
}

func TestAddClientBackendFailureLeavesRosterUnchanged(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)
	backend.failClientWrite = true

	_, err := store.AddClient(&models.ClientRequest{
		Name:    "Cliente Fantasma",
		Rif:     "J-00000000-0",
		Address: "Ninguna",
	})
	require.Error(t, err)
	assert.Empty(t, store.Clients())
}

func TestRemoveClientKeepsQuoteSnapshot(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	client, err := store.AddClient(&models.ClientRequest{
		Name:    "Constructora Andes C.A.",
		Rif:     "J-12345678-9",
		Address: "Av. Principal, Caracas",
	})
	require.NoError(t, err)

	clientID := client.ID.String()
	req := validQuoteRequest()
	req.Quote.ClientID = &clientID

	saved, err := store.SaveQuote(req)
	require.NoError(t, err)

	require.NoError(t, store.RemoveClient(client.ID))

	// El snapshot del presupuesto sobrevive al cliente
	quote, err := store.GetQuote(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Constructora Andes C.A.", quote.ClientName)
	assert.Equal(t, "J-12345678-9", quote.ClientRif)
}

func TestSetFromFormValidation(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	err := store.SetFromForm(models.Quote{IssueDate: "2025-03-15"}, nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	err = store.SetFromForm(models.Quote{IssueDate: "15/03/2025"}, []models.QuoteItem{{Quantity: 1}})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "issue_date", validationErr.Field)
}

func TestSetFromFormDefaultsCurrency(t *testing.T) {
	backend := newFakeBackend()
	store := newTestStore(t, backend)

	err := store.SetFromForm(models.Quote{IssueDate: "2025-03-15"}, []models.QuoteItem{
		{Description: "Pintura de fachada", Quantity: 1, UnitPrice: 300},
	})
	require.NoError(t, err)

	draft := store.Draft()
	assert.Equal(t, models.CurrencyUSD, draft.Quote.Currency)
}
