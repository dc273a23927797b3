package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/maximzayviy-pixel/tgwallet/config"
	"github.com/maximzayviy-pixel/tgwallet/utils"
)

// Sender delivers transactional mail over SMTP.
type Sender struct {
	cfg    *config.Config
	logger *utils.Logger
}

func NewSender(cfg *config.Config, logger *utils.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendVerification sends the email-confirmation token issued at
// registration.
func (s *Sender) SendVerification(to, token string) error {
	e := email.NewEmail()
	e.From = s.cfg.EmailFrom
	e.To = []string{to}
	e.Subject = "Подтверждение электронной почты"

	body := fmt.Sprintf(
		"Здравствуйте!\n\n"+
			"Вы зарегистрировались в виртуальном банке. Подтвердите адрес, отправив этот код в приложении:\n\n"+
			"%s\n\n"+
			"Если вы не регистрировались, просто проигнорируйте это письмо.\n",
		token,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send verification email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Verification email sent to %s", to)
	return nil
}
