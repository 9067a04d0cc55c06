package models

import (
	"time"

	"github.com/google/uuid"
)

// Client representa un cliente del roster de la empresa
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Rif       string    `json:"rif" db:"rif"`
	Address   string    `json:"address" db:"address"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ClientRequest representa el request para crear o actualizar un cliente
type ClientRequest struct {
	Name    string  `json:"name" binding:"required"`
	Rif     string  `json:"rif" binding:"required"`
	Address string  `json:"address" binding:"required"`
	Email   *string `json:"email,omitempty" binding:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
}

// ClientListResponse representa la respuesta al listar clientes
type ClientListResponse struct {
	Items []Client `json:"items"`
	Total int      `json:"total"`
}
