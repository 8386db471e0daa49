package email

import (
	"context"
	"fmt"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/pkg/config"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
	"gopkg.in/gomail.v2"
)

var _ allocation.Notifier = (*Notifier)(nil)

// Notifier envía avisos por SMTP (gomail).
type Notifier struct {
	dialer *gomail.Dialer
	from   string
}

// NewNotifier construye el notificador con la configuración SMTP.
func NewNotifier(cfg config.SMTPConfig) *Notifier {
	return &Notifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send envía el correo. El contexto no participa: gomail no lo soporta y el
// bus ya aísla los fallos de este handler.
func (n *Notifier) Send(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar correo a %s: %w", to, err)
	}
	return nil
}

var _ allocation.Notifier = (*LogNotifier)(nil)

// LogNotifier deja el aviso en el log; se usa cuando no hay SMTP configurado
// (desarrollo).
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de log.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Send registra el aviso en el log.
func (n *LogNotifier) Send(_ context.Context, to, subject, body string) error {
	n.log.Warn().Str("to", to).Str("subject", subject).Msg(body)
	return nil
}
