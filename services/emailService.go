package services

import (
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	sender emailSender
	from   string
}

// InitEmailService returns nil when no API key is configured; callers treat a
// nil service as "email disabled".
func InitEmailService(apiKey, from string) *EmailService {
	if apiKey == "" {
		log.Warn().Msg("RESEND_API_KEY not set. Email service will not be available.")
		return nil
	}

	client := resend.NewClient(apiKey)
	log.Info().Msg("Email service initialized successfully with Resend")
	return &EmailService{sender: client.Emails, from: from}
}

const emailStyle = `
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #c9a45c;
        }
        .header h1 {
            color: #c9a45c;
            margin: 0;
        }
        .content {
            padding: 30px 0;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }`

func renderEmail(title, body string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>%s
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>

    <div class="content">
%s
    </div>

    <div class="footer">
        <p>&copy; OraComigo. Todos os direitos reservados.</p>
    </div>
</body>
</html>
`, emailStyle, title, body)
}

// SendWelcomeEmail greets a new account.
func (s *EmailService) SendWelcomeEmail(toEmail string, name string) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := renderEmail("Bem-vindo ao OraComigo", fmt.Sprintf(`
        <h2>Olá, %s!</h2>

        <p>Que alegria ter você conosco. No OraComigo você pode:</p>
        <ul>
            <li>Montar sua rotina de oração da manhã, da tarde e da noite</li>
            <li>Participar de círculos de oração com sua comunidade</li>
            <li>Acumular graças e crescer de Peregrino a Apóstolo</li>
        </ul>

        <p>Comece escolhendo sua primeira oração do dia.</p>

        <p>Paz e bem,<br>Equipe OraComigo</p>`, name))

	textBody := fmt.Sprintf(`
Olá, %s!

Que alegria ter você conosco. Comece escolhendo sua primeira oração do dia.

Paz e bem,
Equipe OraComigo
`, name)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Bem-vindo ao OraComigo!",
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.sender.Send(params)
	if err != nil {
		log.Error().Err(err).Str("to", toEmail).Msg("Failed to send welcome email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("to", toEmail).Str("email_id", sent.Id).Msg("Sent welcome email")
	return nil
}

// SendRemovedFromCirculoEmail tells a member a moderator removed them.
func (s *EmailService) SendRemovedFromCirculoEmail(toEmail string, name string, circuloName string) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := renderEmail("OraComigo", fmt.Sprintf(`
        <h2>Você saiu de um círculo</h2>

        <p>Olá, %s,</p>

        <p>Você foi removido do círculo <strong>"%s"</strong> por um moderador.</p>

        <p>Paz e bem,<br>Equipe OraComigo</p>`, name, circuloName))

	textBody := fmt.Sprintf(`
Olá, %s,

Você foi removido do círculo "%s" por um moderador.

Paz e bem,
Equipe OraComigo
`, name, circuloName)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Você foi removido de \"%s\"", circuloName),
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.sender.Send(params)
	if err != nil {
		log.Error().Err(err).Str("to", toEmail).Msg("Failed to send removed from circulo email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("to", toEmail).Str("email_id", sent.Id).Msg("Sent removed from circulo email")
	return nil
}

// SendPasswordResetEmail sends the 6-digit reset code.
func (s *EmailService) SendPasswordResetEmail(toEmail string, code string, name string) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("email service not initialized")
	}

	minutes := int(ResetCodeTTL.Minutes())

	htmlBody := renderEmail("OraComigo", fmt.Sprintf(`
        <h2>Redefinição de senha</h2>

        <p>Olá, %s,</p>

        <p>Recebemos um pedido para redefinir a senha da sua conta. Use o código abaixo no aplicativo:</p>

        <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; font-family: monospace;">%s</p>

        <p>O código expira em %d minutos e pode ser usado uma única vez.</p>

        <p>Se você não pediu a redefinição, ignore este email. Sua senha continua a mesma.</p>

        <p>Paz e bem,<br>Equipe OraComigo</p>`, name, code, minutes))

	textBody := fmt.Sprintf(`
Olá, %s,

Seu código para redefinir a senha é: %s

O código expira em %d minutos. Se você não pediu a redefinição, ignore este email.

Paz e bem,
Equipe OraComigo
`, name, code, minutes)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: "Seu código para redefinir a senha",
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.sender.Send(params)
	if err != nil {
		log.Error().Err(err).Str("to", toEmail).Msg("Failed to send password reset email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("to", toEmail).Str("email_id", sent.Id).Msg("Sent password reset email")
	return nil
}
