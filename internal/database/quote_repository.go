package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// QuoteRepository maneja las operaciones de base de datos para Quote
type QuoteRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewQuoteRepository crea una nueva instancia del repositorio
func NewQuoteRepository(db *DB, logger *logrus.Logger) *QuoteRepository {
	return &QuoteRepository{
		db:     db,
		logger: logger,
	}
}

// CreateHeader inserta la cabecera del presupuesto. La escritura de la
// cabecera va estrictamente antes que la de los items; si los items
// fallan después, la cabecera no se revierte y el error se propaga al
// llamador.
func (r *QuoteRepository) CreateHeader(quote *models.Quote) error {
	if quote.ID == uuid.Nil {
		quote.ID = uuid.New()
	}
	quote.CreatedAt = time.Now()

	query := `
		INSERT INTO quotes (
			id, company_id, client_id, work, client_name, client_rif,
			client_address, issue_date, currency, subtotal, tax, total, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		quote.ID, quote.CompanyID, quote.ClientID, quote.Work,
		quote.ClientName, quote.ClientRif, quote.ClientAddress,
		quote.IssueDate, quote.Currency,
		quote.Subtotal, quote.Tax, quote.Total, quote.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("error inserting quote: %w", err)
	}

	return nil
}

// CreateItems inserta las líneas de un presupuesto ya persistido
func (r *QuoteRepository) CreateItems(quoteID uuid.UUID, items []models.QuoteItem) error {
	query := `
		INSERT INTO quote_items (
			id, quote_id, line_no, code, unit, description, quantity, sg, unit_price
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	for i := range items {
		item := &items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.QuoteID = quoteID
		item.LineNo = i + 1

		_, err := r.db.ExecWithTimeout(query,
			item.ID, item.QuoteID, item.LineNo, item.Code, item.Unit,
			item.Description, item.Quantity, item.SG, item.UnitPrice,
		)

		if err != nil {
			return fmt.Errorf("error inserting quote item %d: %w", item.LineNo, err)
		}
	}

	return nil
}

// GetByID obtiene un presupuesto por ID con sus items
func (r *QuoteRepository) GetByID(id uuid.UUID) (*models.Quote, error) {
	query := `
		SELECT id, company_id, client_id, work, client_name, client_rif,
			   client_address, issue_date, currency, subtotal, tax, total, created_at
		FROM quotes
		WHERE id = $1
	`

	var quote models.Quote
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&quote.ID, &quote.CompanyID, &quote.ClientID, &quote.Work,
		&quote.ClientName, &quote.ClientRif, &quote.ClientAddress,
		&quote.IssueDate, &quote.Currency,
		&quote.Subtotal, &quote.Tax, &quote.Total, &quote.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quote not found: %s", id)
		}
		return nil, fmt.Errorf("error querying quote: %w", err)
	}

	items, err := r.GetItemsByQuoteID(id)
	if err != nil {
		return nil, err
	}
	quote.Items = items

	return &quote, nil
}

// GetItemsByQuoteID obtiene las líneas de un presupuesto en orden de línea
func (r *QuoteRepository) GetItemsByQuoteID(quoteID uuid.UUID) ([]models.QuoteItem, error) {
	query := `
		SELECT id, quote_id, line_no, code, unit, description, quantity, sg, unit_price
		FROM quote_items
		WHERE quote_id = $1
		ORDER BY line_no
	`

	rows, err := r.db.QueryWithTimeout(query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("error querying quote items: %w", err)
	}
	defer rows.Close()

	var items []models.QuoteItem
	for rows.Next() {
		var item models.QuoteItem
		err := rows.Scan(
			&item.ID, &item.QuoteID, &item.LineNo, &item.Code, &item.Unit,
			&item.Description, &item.Quantity, &item.SG, &item.UnitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning quote item: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}

// List obtiene presupuestos guardados con paginación
func (r *QuoteRepository) List(page, pageSize int) ([]models.Quote, int, error) {
	countQuery := `SELECT COUNT(*) FROM quotes`
	var total int
	if err := r.db.QueryRowWithTimeout(countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting quotes: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT id, company_id, client_id, work, client_name, client_rif,
			   client_address, issue_date, currency, subtotal, tax, total, created_at
		FROM quotes
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryWithTimeout(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var quote models.Quote
		err := rows.Scan(
			&quote.ID, &quote.CompanyID, &quote.ClientID, &quote.Work,
			&quote.ClientName, &quote.ClientRif, &quote.ClientAddress,
			&quote.IssueDate, &quote.Currency,
			&quote.Subtotal, &quote.Tax, &quote.Total, &quote.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, total, nil
}
