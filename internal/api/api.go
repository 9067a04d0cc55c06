package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hypernova-labs/quote-service/internal/email"
	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/hypernova-labs/quote-service/internal/services"
	"github.com/sirupsen/logrus"
)

// maxLogoUploadBytes limita el tamaño del archivo de logo aceptado
const maxLogoUploadBytes = 2 << 20

// API maneja todos los endpoints de la API
type API struct {
	store        *services.Store
	artifacts    *services.ArtifactService
	logoService  *services.LogoService
	emailService *email.ResendService
	logger       *logrus.Logger
}

// NewAPI crea una nueva instancia de la API. emailService puede ser nil
// cuando el despliegue no tiene credenciales de envío.
func NewAPI(
	store *services.Store,
	artifacts *services.ArtifactService,
	logoService *services.LogoService,
	emailService *email.ResendService,
	logger *logrus.Logger,
) *API {
	return &API{
		store:        store,
		artifacts:    artifacts,
		logoService:  logoService,
		emailService: emailService,
		logger:       logger,
	}
}

// RegisterRoutes registra los endpoints en el router
func (api *API) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.GET("/company", api.GetCompany)
		v1.PUT("/company", api.UpdateCompany)
		v1.POST("/company/logo", api.UploadLogo)

		v1.GET("/clients", api.ListClients)
		v1.POST("/clients", api.CreateClient)
		v1.PUT("/clients/:id", api.UpdateClient)
		v1.DELETE("/clients/:id", api.DeleteClient)

		v1.GET("/quotes/draft", api.GetDraft)
		v1.PUT("/quotes/draft", api.SetDraft)
		v1.GET("/quotes/draft/pdf", api.GetDraftPDF)

		v1.POST("/quotes", api.SaveQuote)
		v1.GET("/quotes", api.ListQuotes)
		v1.GET("/quotes/:id", api.GetQuote)
		v1.GET("/quotes/:id/pdf", api.GetQuotePDF)
		v1.POST("/quotes/:id/email", api.EmailQuote)
	}
}

// GetCompany retorna la empresa actual
func (api *API) GetCompany(c *gin.Context) {
	c.JSON(http.StatusOK, api.store.Company())
}

// UpdateCompany actualiza los datos de la empresa
func (api *API) UpdateCompany(c *gin.Context) {
	var req models.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding update company request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	company := api.store.UpdateCompany(&req)
	c.JSON(http.StatusOK, company)
}

// UploadLogo recibe la imagen del logo por multipart y la almacena
// como parte de los datos de la empresa
func (api *API) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Logo file required", []models.ErrorDetail{
			{Field: "logo", Issue: "Must be a multipart file field named 'logo'"},
		}))
		return
	}

	if fileHeader.Size > maxLogoUploadBytes {
		c.JSON(http.StatusBadRequest, models.NewDecodeError("logo", fmt.Sprintf("File exceeds %d bytes", maxLogoUploadBytes)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		api.logger.WithError(err).Error("Error opening uploaded logo")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error reading uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoUploadBytes+1))
	if err != nil {
		api.logger.WithError(err).Error("Error reading uploaded logo")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error reading uploaded file"))
		return
	}

	dataURL, width, height, err := api.logoService.ProcessLogo(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewDecodeError("logo", err.Error()))
		return
	}

	api.store.SetLogo(dataURL)
	c.JSON(http.StatusOK, models.LogoUploadResponse{
		LogoURL: dataURL,
		Width:   width,
		Height:  height,
	})
}

// ListClients retorna el roster de clientes
func (api *API) ListClients(c *gin.Context) {
	clients := api.store.Clients()
	c.JSON(http.StatusOK, models.ClientListResponse{
		Items: clients,
		Total: len(clients),
	})
}

// CreateClient agrega un cliente al roster
func (api *API) CreateClient(c *gin.Context) {
	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding create client request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	client, err := api.store.AddClient(&req)
	if err != nil {
		api.logger.WithError(err).Error("Error creating client")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error creating client"))
		return
	}

	c.JSON(http.StatusCreated, client)
}

// UpdateClient actualiza un cliente del roster
func (api *API) UpdateClient(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	var req models.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding update client request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	client, err := api.store.UpdateClient(id, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Client not found"))
			return
		}
		api.logger.WithError(err).Error("Error updating client")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error updating client"))
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient elimina un cliente del roster
func (api *API) DeleteClient(c *gin.Context) {
	id, ok := api.parseID(c)
	if !ok {
		return
	}

	if err := api.store.RemoveClient(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Client not found"))
			return
		}
		api.logger.WithError(err).Error("Error deleting client")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error deleting client"))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetDraft retorna el borrador actual
func (api *API) GetDraft(c *gin.Context) {
	c.JSON(http.StatusOK, api.store.Draft())
}

// SetDraft reemplaza el borrador en memoria
func (api *API) SetDraft(c *gin.Context) {
	var req models.SetDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding set draft request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	quote, items := quoteFromRequest(&req.Quote, req.Items)
	if err := api.store.SetFromForm(quote, items); err != nil {
		api.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.store.Draft())
}

// GetDraftPDF renderiza el borrador actual como PDF para vista previa
func (api *API) GetDraftPDF(c *gin.Context) {
	data, err := api.artifacts.RenderDraftPDF()
	if err != nil {
		api.logger.WithError(err).Error("Error rendering draft PDF")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error rendering document"))
		return
	}

	api.servePDF(c, data, "presupuesto-borrador.pdf")
}

// SaveQuote materializa un presupuesto como registro persistido
func (api *API) SaveQuote(c *gin.Context) {
	var req models.SaveQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding save quote request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	quote, err := api.store.SaveQuote(&req)
	if err != nil {
		api.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quoteToResponse(quote))
}

// ListQuotes retorna los presupuestos guardados con paginación
func (api *API) ListQuotes(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	quotes, total, err := api.store.ListQuotes(page, pageSize)
	if err != nil {
		api.logger.WithError(err).Error("Error listing quotes")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error listing quotes"))
		return
	}

	items := make([]models.QuoteResponse, len(quotes))
	for i := range quotes {
		items[i] = quoteToResponse(&quotes[i])
	}

	c.JSON(http.StatusOK, models.QuoteListResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetQuote obtiene un presupuesto guardado por ID
func (api *API) GetQuote(c *gin.Context) {
	quote, ok := api.loadQuote(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, quoteToResponse(quote))
}

// GetQuotePDF sirve el PDF de un presupuesto guardado. Con
// ?disposition=attachment el mismo documento se entrega como descarga.
func (api *API) GetQuotePDF(c *gin.Context) {
	quote, ok := api.loadQuote(c)
	if !ok {
		return
	}

	data, err := api.artifacts.GetQuotePDF(quote)
	if err != nil {
		api.logger.WithError(err).Error("Error generating quote PDF")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error rendering document"))
		return
	}

	fileName := fmt.Sprintf("presupuesto-%s.pdf", quote.ID)
	if c.Query("disposition") == "attachment" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
		c.Data(http.StatusOK, "application/pdf", data)
		return
	}

	api.servePDF(c, data, fileName)
}

// EmailQuote envía el presupuesto por email al cliente referenciado o
// al destinatario indicado en el request
func (api *API) EmailQuote(c *gin.Context) {
	quote, ok := api.loadQuote(c)
	if !ok {
		return
	}

	if api.emailService == nil {
		c.JSON(http.StatusPreconditionFailed, models.NewPreconditionError("Email delivery is not configured"))
		return
	}

	// El cuerpo es opcional: sin override se usa el email del cliente
	var req models.EmailQuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
				{Field: "body", Issue: err.Error()},
			}))
			return
		}
	}

	to, err := api.resolveRecipient(quote, req.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("No recipient available", []models.ErrorDetail{
			{Field: "to", Issue: err.Error()},
		}))
		return
	}

	company := api.store.Company()
	if err := api.emailService.SendQuoteEmail(quote, &company, to); err != nil {
		api.logger.WithError(err).Error("Error sending quote email")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error sending email"))
		return
	}

	c.JSON(http.StatusOK, models.EmailQuoteResponse{Status: "sent"})
}

// resolveRecipient determina el destinatario: el override del request,
// o el email del cliente del roster referenciado por el presupuesto
func (api *API) resolveRecipient(quote *models.Quote, override *string) (string, error) {
	if override != nil && *override != "" {
		return *override, nil
	}

	if quote.ClientID == nil {
		return "", fmt.Errorf("quote has no linked client; provide an explicit recipient")
	}

	client, err := api.store.GetClient(*quote.ClientID)
	if err != nil {
		return "", fmt.Errorf("linked client no longer exists; provide an explicit recipient")
	}
	if client.Email == nil || *client.Email == "" {
		return "", fmt.Errorf("linked client has no email; provide an explicit recipient")
	}
	return *client.Email, nil
}

// loadQuote parsea el ID de la ruta y carga el presupuesto,
// respondiendo el error apropiado si algo falla
func (api *API) loadQuote(c *gin.Context) (*models.Quote, bool) {
	id, ok := api.parseID(c)
	if !ok {
		return nil, false
	}

	quote, err := api.store.GetQuote(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Quote not found"))
			return nil, false
		}
		api.logger.WithError(err).Error("Error getting quote")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error retrieving quote"))
		return nil, false
	}

	return quote, true
}

// parseID parsea el parámetro :id de la ruta como UUID
func (api *API) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid ID", []models.ErrorDetail{
			{Field: "id", Issue: "Must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// respondStoreError mapea los errores del Store a respuestas HTTP
func (api *API) respondStoreError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrCompanyNotResolved):
		c.JSON(http.StatusPreconditionFailed, models.NewPreconditionError("Company identity is not resolved yet; retry once company data is persisted"))
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid quote data", []models.ErrorDetail{
			{Field: validationErr.Field, Issue: validationErr.Issue},
		}))
	default:
		api.logger.WithError(err).Error("Error saving quote")
		c.JSON(http.StatusInternalServerError, models.NewBackendError("Error persisting quote"))
	}
}

// servePDF entrega el documento inline (vista previa en el navegador)
func (api *API) servePDF(c *gin.Context, data []byte, fileName string) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s", fileName))
	c.Data(http.StatusOK, "application/pdf", data)
}

// quoteFromRequest convierte el request de borrador al modelo
func quoteFromRequest(req *models.QuoteRequest, reqItems []models.QuoteItemRequest) (models.Quote, []models.QuoteItem) {
	quote := models.Quote{
		Work:          req.Work,
		ClientName:    req.ClientName,
		ClientRif:     req.ClientRif,
		ClientAddress: req.ClientAddress,
		IssueDate:     req.IssueDate,
		Currency:      req.Currency,
	}
	if req.ClientID != nil {
		if id, err := uuid.Parse(*req.ClientID); err == nil {
			quote.ClientID = &id
		}
	}

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
	return quote, items
}

// quoteToResponse arma la respuesta de un presupuesto con sus enlaces
func quoteToResponse(quote *models.Quote) models.QuoteResponse {
	return models.QuoteResponse{
		ID:            quote.ID,
		Work:          quote.Work,
		ClientName:    quote.ClientName,
		ClientRif:     quote.ClientRif,
		ClientAddress: quote.ClientAddress,
		IssueDate:     quote.IssueDate,
		Currency:      quote.Currency,
		Totals: models.Totals{
			Subtotal: quote.Subtotal,
			Tax:      quote.Tax,
			Total:    quote.Total,
		},
		Items:     quote.Items,
		CreatedAt: quote.CreatedAt,
		Links: models.Links{
			Self: fmt.Sprintf("/v1/quotes/%s", quote.ID),
			PDF:  fmt.Sprintf("/v1/quotes/%s/pdf", quote.ID),
		},
	}
}
