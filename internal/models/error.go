package models

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrorCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrorCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrorCodeDecodeError        ErrorCode = "DECODE_ERROR"
	ErrorCodeBackendError       ErrorCode = "BACKEND_ERROR"
	ErrorCodeInternal           ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorResponse representa la respuesta de error estandarizada
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeNotFound, message)
}

// NewPreconditionError crea un error de precondición no cumplida
func NewPreconditionError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodePreconditionFailed, message)
}

// NewDecodeError crea un error de decodificación de archivo subido
func NewDecodeError(field, issue string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorInfo{
			Code:    string(ErrorCodeDecodeError),
			Message: "Uploaded file could not be accepted",
			Details: []ErrorDetail{{Field: field, Issue: issue}},
		},
	}
}

// NewBackendError crea un error del backend de persistencia
func NewBackendError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeBackendError, message)
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeInternal, message)
}
