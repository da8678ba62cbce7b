package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-triage-dashboard/internal/allowlist"
	"github.com/mikey/email-triage-dashboard/internal/config"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"go.uber.org/zap"
)

// Submitter accepts one email for classification
type Submitter interface {
	Submit(ctx context.Context, subject, body string) (*core.EmailRecord, int, error)
}

var (
	errSenderRejected = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 7, 1},
		Message:      "Sender domain is not allowed",
	}
	errIncomplete = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Please enter both subject and body",
	}
	errClassifyFailed = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Classification failed, try again later",
	}
)

// SMTPIntake accepts mail over SMTP and classifies each message into the
// session as if it had been submitted through the dashboard form
type SMTPIntake struct {
	submitter      Submitter
	allow          *allowlist.Checker
	logger         *zap.Logger
	cfg            config.SMTPIntakeConfig
	requestTimeout time.Duration
	server         *smtp.Server
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(
	submitter Submitter,
	allow *allowlist.Checker,
	cfg config.SMTPIntakeConfig,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *SMTPIntake {
	return &SMTPIntake{
		submitter:      submitter,
		allow:          allow,
		logger:         logger,
		cfg:            cfg,
		requestTimeout: requestTimeout,
	}
}

// Start binds the listen address and serves SMTP in the background. A bind
// failure is returned to the caller.
func (i *SMTPIntake) Start() error {
	ln, err := net.Listen("tcp", i.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("smtp intake listen on %s: %w", i.cfg.ListenAddress, err)
	}

	i.server = smtp.NewServer(&smtpBackend{intake: i})

	i.server.Addr = i.cfg.ListenAddress
	i.server.Domain = i.cfg.Domain
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = i.cfg.MaxMessageBytes
	i.server.MaxRecipients = i.cfg.MaxRecipients
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP intake starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := i.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			i.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (i *SMTPIntake) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address after checking it against the allowlist
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	if s.intake.allow != nil && !s.intake.allow.IsAllowed(from) {
		s.intake.logger.Info("Rejecting sender outside allowlist",
			zap.String("from", from),
			zap.String("sender_domain", allowlist.Domain(from)))
		return errSenderRejected
	}
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message and appends it to the session
func (s *smtpSession) Data(r io.Reader) error {
	logger := s.intake.logger

	rawData, err := io.ReadAll(r)
	if err != nil {
		logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	subject, body, err := ParseMessage(bytes.NewReader(rawData))
	if err != nil {
		logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.intake.requestTimeout)
	defer cancel()

	record, position, err := s.intake.submitter.Submit(ctx, subject, body)
	if err != nil {
		if errors.Is(err, core.ErrMissingSubjectOrBody) {
			logger.Info("Rejecting incomplete email", zap.String("from", s.sender))
			return errIncomplete
		}
		logger.Error("Failed to classify email",
			zap.Error(err),
			zap.String("from", s.sender))
		return errClassifyFailed
	}

	logger.Info("Accepted email over SMTP",
		zap.String("from", s.sender),
		zap.Strings("to", s.recipients),
		zap.String("id", record.ID),
		zap.Int("position", position),
		zap.String("spam", string(record.Spam)))

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
