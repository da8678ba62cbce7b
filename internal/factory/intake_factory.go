package factory

import (
	"github.com/mikey/email-triage-dashboard/internal/adapters/intake"
	"github.com/mikey/email-triage-dashboard/internal/allowlist"
	"github.com/mikey/email-triage-dashboard/internal/config"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/dashboard"
	"github.com/mikey/email-triage-dashboard/internal/ports"
	"go.uber.org/zap"
)

// IntakeFactory creates the surfaces that feed the classification service
type IntakeFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ClassificationService
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger, service *core.ClassificationService) *IntakeFactory {
	return &IntakeFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateIntakes returns the HTTP dashboard and, when enabled, the SMTP listener
func (f *IntakeFactory) CreateIntakes() ([]ports.Intake, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}

	handler, err := dashboard.NewHandler(f.service, f.logger, serverCfg.MaxBodyBytes, serverCfg.RequestTimeout)
	if err != nil {
		return nil, err
	}
	intakes := []ports.Intake{dashboard.NewServer(handler, serverCfg, f.logger)}

	smtpCfg := f.cfg.GetSMTPIntake()
	if smtpCfg.Enabled {
		checker := allowlist.NewChecker(smtpCfg.AllowedDomains, f.logger)
		intakes = append(intakes, intake.NewSMTPIntake(f.service, checker, smtpCfg, serverCfg.RequestTimeout, f.logger))
	}

	return intakes, nil
}
