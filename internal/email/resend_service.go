package email

import (
	"fmt"

	"github.com/hypernova-labs/quote-service/internal/models"
	"github.com/hypernova-labs/quote-service/internal/money"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// ResendService maneja el envío de correos electrónicos usando Resend API
type ResendService struct {
	client    *resend.Client
	fromEmail string
	baseURL   string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey string, baseURL string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		client:    resend.NewClient(apiKey),
		fromEmail: "onboarding@resend.dev", // Usar dominio verificado de Resend
		baseURL:   baseURL,
		logger:    logger,
	}
}

// SendQuoteEmail envía el presupuesto por email con un enlace al PDF.
// El destinatario sale del cliente del roster, o del override recibido.
func (s *ResendService) SendQuoteEmail(quote *models.Quote, company *models.Company, to string) error {
	subject := fmt.Sprintf("Presupuesto - %s", company.Name)

	htmlContent := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Presupuesto</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        .content { padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; margin: 10px 5px; }
        .button:hover { background-color: #0056b3; }
        .footer { margin-top: 30px; padding: 20px; background-color: #f8f9fa; border-radius: 8px; font-size: 14px; color: #666; }
        .total { font-size: 18px; font-weight: bold; color: #007bff; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Presupuesto</h1>
            <p>Fecha de emisión: %s</p>
        </div>

        <div class="content">
            <h2>Hola %s,</h2>

            <p>Adjunto encontrarás el presupuesto con los siguientes detalles:</p>

            <ul>
                <li><strong>Empresa:</strong> %s</li>
                <li><strong>RIF:</strong> %s</li>
                <li><strong>Obra:</strong> %s</li>
                <li><strong>Total:</strong> <span class="total">%s</span></li>
            </ul>

            <div style="text-align: center; margin: 20px 0;">
                <a href="%s/v1/quotes/%s/pdf?disposition=attachment" class="button">Descargar PDF</a>
            </div>
        </div>

        <div class="footer">
            <p>Este es un email automático del sistema de presupuestos.</p>
            <p>Si tienes alguna pregunta, por favor responde a este correo.</p>
        </div>
    </div>
</body>
</html>`,
		quote.IssueDate,
		quote.ClientName,
		company.Name,
		company.Rif,
		quote.Work,
		money.Format(quote.Total, quote.Currency),
		s.baseURL,
		quote.ID)

	request := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    htmlContent,
	}

	result, err := s.client.Emails.Send(request)
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email_id": result.Id,
		"to":       to,
		"quote_id": quote.ID,
	}).Info("Email sent successfully via Resend")

	return nil
}
