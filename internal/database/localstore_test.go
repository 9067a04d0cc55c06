package database

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	store, err := NewLocalStore(dir, logger)
	require.NoError(t, err)
	return store, dir
}

func reopenLocalStore(t *testing.T, dir string) *LocalStore {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := NewLocalStore(dir, logger)
	require.NoError(t, err)
	return store
}

func TestLocalStoreCompanyRoundTrip(t *testing.T) {
	store, dir := newTestLocalStore(t)

	company, err := store.GetCompany()
	require.NoError(t, err)
	assert.Nil(t, company)

	fresh := models.Company{
		Name:            "Construcciones Delta C.A.",
		Rif:             "J-98765432-1",
		DefaultCurrency: models.CurrencyUSD,
		IVARate:         16,
	}
	require.NoError(t, store.InsertCompany(&fresh))
	assert.NotEqual(t, uuid.Nil, fresh.ID)

	// Los datos sobreviven a un reinicio
	reopened := reopenLocalStore(t, dir)
	loaded, err := reopened.GetCompany()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, fresh.ID, loaded.ID)
	assert.Equal(t, "Construcciones Delta C.A.", loaded.Name)

	loaded.Name = "Construcciones Delta, C.A."
	require.NoError(t, reopened.UpdateCompany(loaded))

	again, err := reopenLocalStore(t, dir).GetCompany()
	require.NoError(t, err)
	assert.Equal(t, "Construcciones Delta, C.A.", again.Name)
}

func TestLocalStoreUpdateCompanyUnknownID(t *testing.T) {
	store, _ := newTestLocalStore(t)

	err := store.UpdateCompany(&models.Company{ID: uuid.New(), Name: "Fantasma"})
	assert.ErrorContains(t, err, "not found")
}

func TestLocalStoreClientsRoundTrip(t *testing.T) {
	store, dir := newTestLocalStore(t)

	client := models.Client{
		Name:    "Constructora Andes C.A.",
		Rif:     "J-12345678-9",
		Address: "Av. Principal, Caracas",
	}
	require.NoError(t, store.InsertClient(&client))

	reopened := reopenLocalStore(t, dir)
	clients, err := reopened.ListClients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)

	clients[0].Address = "Av. Principal, Torre B, Caracas"
	require.NoError(t, reopened.UpdateClient(&clients[0]))

	require.NoError(t, reopened.DeleteClient(client.ID))
	remaining, err := reopened.ListClients()
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestLocalStoreQuoteRoundTrip(t *testing.T) {
	store, dir := newTestLocalStore(t)

	quote := models.Quote{
		Work:       "Impermeabilización de techo",
		ClientName: "Constructora Andes C.A.",
		IssueDate:  "2025-03-15",
		Currency:   models.CurrencyUSD,
		Subtotal:   1700,
		Tax:        272,
		Total:      1972,
	}
	require.NoError(t, store.InsertQuoteHeader(&quote))

	items := []models.QuoteItem{
		{Code: "NA", Unit: "m2", Description: "Manto asfáltico", Quantity: 10, UnitPrice: 120},
		{Code: "NA", Unit: "sg", Description: "Transporte", Quantity: 5, UnitPrice: 100},
	}
	require.NoError(t, store.InsertQuoteItems(quote.ID, items))

	loaded, err := reopenLocalStore(t, dir).GetQuote(quote.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, 1, loaded.Items[0].LineNo)
	assert.Equal(t, 2, loaded.Items[1].LineNo)
	assert.Equal(t, "Manto asfáltico", loaded.Items[0].Description)
}

func TestLocalStoreInsertItemsUnknownQuote(t *testing.T) {
	store, _ := newTestLocalStore(t)

	err := store.InsertQuoteItems(uuid.New(), []models.QuoteItem{{Description: "x"}})
	assert.ErrorContains(t, err, "not found")
}

func TestLocalStoreListQuotesNewestFirst(t *testing.T) {
	store, _ := newTestLocalStore(t)

	for i := 0; i < 5; i++ {
		quote := models.Quote{Work: string(rune('A' + i)), IssueDate: "2025-03-15", Currency: models.CurrencyUSD}
		require.NoError(t, store.InsertQuoteHeader(&quote))
	}

	quotes, total, err := store.ListQuotes(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, quotes, 2)
	assert.Equal(t, "E", quotes[0].Work)
	assert.Equal(t, "D", quotes[1].Work)

	quotes, _, err = store.ListQuotes(3, 2)
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "A", quotes[0].Work)

	quotes, _, err = store.ListQuotes(4, 2)
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestLocalStoreCorruptSlotFallsBackToDefaults(t *testing.T) {
	store, dir := newTestLocalStore(t)

	company := models.Company{Name: "Delta", Rif: "J-1", DefaultCurrency: models.CurrencyUSD}
	require.NoError(t, store.InsertCompany(&company))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "company.json"), []byte("{corrupt"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clients.json"), []byte("not json"), 0o644))

	reopened := reopenLocalStore(t, dir)

	loaded, err := reopened.GetCompany()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	clients, err := reopened.ListClients()
	require.NoError(t, err)
	assert.Empty(t, clients)
}
