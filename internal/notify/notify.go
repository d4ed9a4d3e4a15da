// Package notify sends voicemail alerts to the service desk via SMTP.
package notify

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendVoicemailAlert notifies the service desk that a caller left a
// voicemail, with a link to the carrier-hosted recording.
func (s *Sender) SendVoicemailAlert(callID, from, recordingURL, duration string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.ServiceDeskEmail}
	e.Subject = fmt.Sprintf("New voicemail from %s", from)

	body := fmt.Sprintf(
		"A caller left a voicemail.\n\n"+
			"Caller: %s\n"+
			"Call ID: %s\n"+
			"Received: %s\n"+
			"Duration: %s seconds\n"+
			"Recording: %s\n"+
			"\nBest regards,\nIVR Service",
		from, callID, time.Now().Format("2006-01-02 15:04:05"), duration, recordingURL,
	)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send voicemail alert for call %s: %v", callID, err)
		return fmt.Errorf("failed to send voicemail alert: %w", err)
	}

	s.logger.Infof("Voicemail alert sent for call %s", callID)
	return nil
}
