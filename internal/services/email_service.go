package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, fullName string) error
	SendPasswordResetEmail(email, token string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Alta en el sistema de tareas municipales")

	body := fmt.Sprintf(`
		<h2>Bienvenido/a, %s</h2>
		<p>Se ha creado tu cuenta en el sistema de gestión de tareas del ayuntamiento.</p>
		<p>Ya puedes acceder con tu correo y la contraseña que te ha facilitado administración.</p>
	`, fullName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (s *emailService) SendPasswordResetEmail(email, token string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Restablecimiento de contraseña")

	body := fmt.Sprintf(`
		<h3>Solicitud de restablecimiento de contraseña</h3>
		<p>Hemos recibido una petición para restablecer la contraseña de tu cuenta.</p>
		<p>Usa el siguiente código para completar el cambio: <strong>%s</strong></p>
		<p>Si no has pedido este cambio, ignora este correo.</p>
	`, token)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}
