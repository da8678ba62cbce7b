package di

import (
	"path/filepath"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage-dashboard/internal/config"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/logging"
)

// CLIFlags contains the command line flags of the classify command
type CLIFlags struct {
	// Input flags
	Subject   string
	Body      string
	InputFile string

	// Output flags
	Output  string
	Verbose bool
	JSONLog bool

	// Classifier flags
	Provider   string
	ModelsDir  string
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var cfg *config.Config
		if flags.ConfigFile != "" {
			var err error
			cfg, err = config.NewWithFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		} else {
			cfg = config.NewFromViper(config.NewEmptyViper())
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// One-shot classification never benefits from the prediction cache
	if err := container.Provide(func(
		classifiers core.ClassifierSet,
		store core.RecordStore,
		logger *zap.Logger,
	) *core.ClassificationService {
		return core.NewClassificationService(classifiers, nil, store, logger, false, 0)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration with explicitly set flags
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	if flags.Provider != "" {
		v.Set("classifier.provider", flags.Provider)
	}
	if flags.ModelsDir != "" {
		v.Set("models.spam_model", filepath.Join(flags.ModelsDir, "spam_model.json"))
		v.Set("models.spam_vectorizer", filepath.Join(flags.ModelsDir, "spam_vectorizer.json"))
		v.Set("models.category_model", filepath.Join(flags.ModelsDir, "category_model.json"))
		v.Set("models.urgency_model", filepath.Join(flags.ModelsDir, "urgency_model.json"))
	}
}
