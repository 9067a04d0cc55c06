package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ClientRepository maneja las operaciones de base de datos para Client
type ClientRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewClientRepository crea una nueva instancia del repositorio
func NewClientRepository(db *DB, logger *logrus.Logger) *ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

// Create crea un nuevo cliente
func (r *ClientRepository) Create(client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt

	query := `
		INSERT INTO clients (
			id, company_id, name, rif, address, email, phone, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.db.ExecWithTimeout(query,
		client.ID, client.CompanyID, client.Name, client.Rif,
		client.Address, client.Email, client.Phone,
		client.CreatedAt, client.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("error creating client: %w", err)
	}

	return nil
}

// GetByID obtiene un cliente por ID
func (r *ClientRepository) GetByID(id uuid.UUID) (*models.Client, error) {
	query := `
		SELECT id, company_id, name, rif, address, email, phone, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client models.Client
	err := r.db.QueryRowWithTimeout(query, id).Scan(
		&client.ID, &client.CompanyID, &client.Name, &client.Rif,
		&client.Address, &client.Email, &client.Phone,
		&client.CreatedAt, &client.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client not found: %s", id)
		}
		return nil, fmt.Errorf("error querying client: %w", err)
	}

	return &client, nil
}

// List obtiene todos los clientes del roster
func (r *ClientRepository) List() ([]models.Client, error) {
	query := `
		SELECT id, company_id, name, rif, address, email, phone, created_at, updated_at
		FROM clients
		ORDER BY name
	`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var client models.Client
		err := rows.Scan(
			&client.ID, &client.CompanyID, &client.Name, &client.Rif,
			&client.Address, &client.Email, &client.Phone,
			&client.CreatedAt, &client.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning client: %w", err)
		}
		clients = append(clients, client)
	}

	return clients, nil
}

// Update actualiza un cliente existente
func (r *ClientRepository) Update(client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1, rif = $2, address = $3, email = $4, phone = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.ExecWithTimeout(query,
		client.Name, client.Rif, client.Address, client.Email, client.Phone,
		time.Now(), client.ID,
	)

	if err != nil {
		return fmt.Errorf("error updating client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("client not found: %s", client.ID)
	}

	return nil
}

// Delete elimina un cliente del roster. Los presupuestos guardados que
// lo referencian conservan su snapshot y siguen siendo renderizables.
func (r *ClientRepository) Delete(id uuid.UUID) error {
	query := `
		DELETE FROM clients
		WHERE id = $1
	`

	result, err := r.db.ExecWithTimeout(query, id)
	if err != nil {
		return fmt.Errorf("error deleting client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("client not found: %s", id)
	}

	return nil
}
