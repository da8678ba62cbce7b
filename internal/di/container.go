package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage-dashboard/internal/adapters/session"
	"github.com/mikey/email-triage-dashboard/internal/config"
	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/mikey/email-triage-dashboard/internal/factory"
	"github.com/mikey/email-triage-dashboard/internal/logging"
	"github.com/mikey/email-triage-dashboard/internal/ports"
	"github.com/mikey/email-triage-dashboard/internal/utils"
)

// BuildContainer creates and configures a dependency injection container.
// An empty configPath searches the default locations.
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewWithFile(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register classification service
	if err := container.Provide(func(
		classifiers core.ClassifierSet,
		cacheRepo core.CacheRepository,
		store core.RecordStore,
		logger *zap.Logger,
		f *factory.CacheFactory,
	) (*core.ClassificationService, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewClassificationService(classifiers, cacheRepo, store, logger, f.IsCacheEnabled(), ttl), nil
	}); err != nil {
		return nil, err
	}

	// Register intakes
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IntakeFactory) ([]ports.Intake, error) {
		return f.CreateIntakes()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers the text processor, classifiers and session store
// shared by the server and the CLI
func provideCommon(container *dig.Container) error {
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.ClassifierSet, error) {
		return f.CreateClassifierSet()
	}); err != nil {
		return err
	}

	return container.Provide(func(logger *zap.Logger) core.RecordStore {
		return session.NewMemoryStore(logger)
	})
}
