package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// QuoteFilesRepository maneja las operaciones de base de datos para
// los artefactos PDF generados de los presupuestos
type QuoteFilesRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewQuoteFilesRepository crea una nueva instancia del repositorio
func NewQuoteFilesRepository(db *DB, logger *logrus.Logger) *QuoteFilesRepository {
	return &QuoteFilesRepository{
		db:     db,
		logger: logger,
	}
}

// CreateOrUpdate crea o actualiza el artefacto de un presupuesto (UPSERT)
func (r *QuoteFilesRepository) CreateOrUpdate(files *models.QuoteFiles) error {
	exists, err := r.Exists(files.QuoteID)
	if err != nil {
		return fmt.Errorf("error checking existence: %w", err)
	}

	if exists {
		return r.Update(files)
	}
	return r.Create(files)
}

// Create crea un nuevo registro de artefacto
func (r *QuoteFilesRepository) Create(files *models.QuoteFiles) error {
	query := `
		INSERT INTO quote_files (
			id, quote_id, pdf_data, pdf_size, generated_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		files.ID, files.QuoteID, files.PDFData, files.PDFSize,
		files.GeneratedAt, files.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error creating quote files: %w", err)
	}

	return nil
}

// GetByQuoteID obtiene el artefacto de un presupuesto
func (r *QuoteFilesRepository) GetByQuoteID(quoteID uuid.UUID) (*models.QuoteFiles, error) {
	query := `
		SELECT id, quote_id, pdf_data, pdf_size, generated_at, updated_at
		FROM quote_files
		WHERE quote_id = $1
	`

	var files models.QuoteFiles
	err := r.db.QueryRowWithTimeout(query, quoteID).Scan(
		&files.ID, &files.QuoteID, &files.PDFData, &files.PDFSize,
		&files.GeneratedAt, &files.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quote files not found for quote %s", quoteID)
		}
		return nil, fmt.Errorf("error querying quote files: %w", err)
	}

	return &files, nil
}

// Update actualiza el artefacto de un presupuesto
func (r *QuoteFilesRepository) Update(files *models.QuoteFiles) error {
	query := `
		UPDATE quote_files
		SET pdf_data = $1, pdf_size = $2, updated_at = $3
		WHERE quote_id = $4
	`

	_, err := r.db.ExecWithTimeout(query,
		files.PDFData, files.PDFSize, time.Now(), files.QuoteID,
	)

	if err != nil {
		return fmt.Errorf("error updating quote files: %w", err)
	}

	return nil
}

// Exists verifica si existe artefacto para un presupuesto
func (r *QuoteFilesRepository) Exists(quoteID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM quote_files WHERE quote_id = $1`

	var count int
	err := r.db.QueryRowWithTimeout(query, quoteID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking quote files existence: %w", err)
	}

	return count > 0, nil
}
