package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/gorm"

	root "github.com/santhoseks/openmrs-core"
	"github.com/santhoseks/openmrs-core/internal/config"
	"github.com/santhoseks/openmrs-core/internal/interceptor"
	"github.com/santhoseks/openmrs-core/internal/model"
	"github.com/santhoseks/openmrs-core/internal/repository/sql"
	"github.com/santhoseks/openmrs-core/internal/service"
	"github.com/santhoseks/openmrs-core/internal/validation"
)

var ErrNotInitialized = errors.New("application is not initialized")

// App holds the dependencies shared by all commands.
type App struct {
	configPaths []string
	cfg         *config.Config
	db          *gorm.DB
	ownsDB      bool

	fieldTypes   *service.FieldType
	messages     *validation.Messages
	interceptors []interceptor.Interceptor
}

// Option configures an App.
type Option func(*App)

// WithConfig uses cfg instead of loading the configuration from disk.
// Logger and telemetry are left untouched.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithDB uses an already opened database. The caller stays responsible for closing it.
func WithDB(db *gorm.DB) Option {
	return func(a *App) {
		a.db = db
	}
}

// WithConfigPaths sets the directories searched for config.yaml.
func WithConfigPaths(paths ...string) Option {
	return func(a *App) {
		a.configPaths = paths
	}
}

func newApp(opts ...Option) *App {
	a := &App{
		configPaths: []string{"/etc/formregistry", "."},
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// init wires the application. It runs once before any command.
func (a *App) init(ctx context.Context) error {
	if a.cfg == nil {
		cfg, err := loadConfig(a.configPaths)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = cfg

		if err := a.cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		if err := logger.InitAsDefault(a.cfg.Logger, a.cfg.Application); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		err = otlp.Init(ctx, &a.cfg.Application, &a.cfg.Telemetry, &a.cfg.Logger, otlp.WithLogger(slog.Default()))
		if err != nil {
			return fmt.Errorf("starting OpenTelemetry: %w", err)
		}
	}

	constraints, err := validation.New(a.cfg.FieldValidation...)
	if err != nil {
		return fmt.Errorf("field validation config error: %w", err)
	}
	constraints.AddModels(&model.FieldType{})

	ids, err := validation.GetIDs(&model.FieldType{})
	if err != nil {
		return err
	}
	if err := constraints.CheckIDs(ids); err != nil {
		return fmt.Errorf("field validation config error: %w", err)
	}

	if a.db == nil {
		db, err := sql.StartDB(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("starting database: %w", err)
		}
		a.db = db
		a.ownsDB = true
	}

	meters, err := service.InitMeters(ctx, &a.cfg.Application, a.db)
	if err != nil {
		return fmt.Errorf("initializing meters: %w", err)
	}

	commandMeters, err := interceptor.InitMeters(ctx, &a.cfg.Application, newMeter(&a.cfg.Application))
	if err != nil {
		return fmt.Errorf("initializing command meters: %w", err)
	}

	a.messages, err = validation.NewMessages()
	if err != nil {
		return fmt.Errorf("initializing messages: %w", err)
	}

	a.fieldTypes = service.NewFieldType(sql.NewRepository(a.db), validation.NewFieldLengths(), constraints, meters)
	a.interceptors = []interceptor.Interceptor{
		commandMeters.Intercept,
		interceptor.NewRecover().Intercept,
	}

	return nil
}

// run executes handler for the named operation through the interceptors.
func (a *App) run(ctx context.Context, operation string, handler interceptor.Handler) error {
	if a.fieldTypes == nil {
		return ErrNotInitialized
	}

	return interceptor.Chain(operation, handler, a.interceptors...)(ctx)
}

// close releases the database if the App opened it.
func (a *App) close() error {
	if !a.ownsDB || a.db == nil {
		return nil
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func loadConfig(paths []string) (*config.Config, error) {
	cfg := &config.Config{}
	loader := commoncfg.NewLoader(cfg,
		commoncfg.WithPaths(paths...),
		commoncfg.WithEnvOverride(""))

	if err := loader.LoadConfig(); err != nil {
		return nil, err
	}

	if err := commoncfg.UpdateConfigVersion(&cfg.BaseConfig, root.BuildVersion); err != nil {
		return nil, fmt.Errorf("loading build version into config: %w", err)
	}

	return cfg, nil
}

func newMeter(cfgApp *commoncfg.Application) metric.Meter {
	return otel.Meter(
		cfgApp.Name,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(otlp.CreateAttributesFrom(*cfgApp)...),
	)
}
