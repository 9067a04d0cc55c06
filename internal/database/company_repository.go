package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// CompanyRepository maneja las operaciones de base de datos para Company
type CompanyRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewCompanyRepository crea una nueva instancia del repositorio
func NewCompanyRepository(db *DB, logger *logrus.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Get obtiene el registro singleton de la empresa.
// Retorna (nil, nil) si todavía no existe ninguna fila.
func (r *CompanyRepository) Get() (*models.Company, error) {
	query := `
		SELECT id, name, rif, phone, address_lines, logo_url,
			   default_currency, iva_rate, created_at, updated_at
		FROM companies
		ORDER BY created_at
		LIMIT 1
	`

	var company models.Company
	err := r.db.QueryRowWithTimeout(query).Scan(
		&company.ID, &company.Name, &company.Rif, &company.Phone,
		&company.AddressLines, &company.LogoURL,
		&company.DefaultCurrency, &company.IVARate,
		&company.CreatedAt, &company.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying company: %w", err)
	}

	return &company, nil
}

// Insert crea el registro de la empresa
func (r *CompanyRepository) Insert(company *models.Company) error {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt

	query := `
		INSERT INTO companies (
			id, name, rif, phone, address_lines, logo_url,
			default_currency, iva_rate, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		company.ID, company.Name, company.Rif, company.Phone,
		company.AddressLines, company.LogoURL,
		company.DefaultCurrency, company.IVARate,
		company.CreatedAt, company.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error inserting company: %w", err)
	}

	return nil
}

// Update actualiza el registro de la empresa
func (r *CompanyRepository) Update(company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $1, rif = $2, phone = $3, address_lines = $4,
			logo_url = $5, default_currency = $6, iva_rate = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := r.db.ExecWithTimeout(query,
		company.Name, company.Rif, company.Phone, company.AddressLines,
		company.LogoURL, company.DefaultCurrency, company.IVARate,
		time.Now(), company.ID,
	)

	if err != nil {
		return fmt.Errorf("error updating company: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("company not found: %s", company.ID)
	}

	return nil
}
