package notify

import "github.com/rs/zerolog"

// LogSender writes outgoing mail to the log instead of a mail server. It is
// the default sender until an SMTP relay is configured.
type LogSender struct {
	From   string
	Logger zerolog.Logger
}

// Send implements common.EmailSender.
func (s LogSender) Send(to, subject, body string) error {
	s.Logger.Info().
		Str("from", s.From).
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("email_outbound")
	return nil
}
