package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/santhoseks/openmrs-core/internal/validation"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	ErrUnsupportedDriver = errors.New("database driver is not supported")
	ErrEmptySQLitePath   = errors.New("sqlite path must not be empty")
	ErrEmptyHost         = errors.New("database host must not be empty")
)

// Config holds all application configuration parameters.
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	// Database configuration
	Database DB `yaml:"database" json:"database"`
	// Deployment specific constraints on model fields, keyed by validation ID.
	FieldValidation []validation.ConfigField `yaml:"fieldValidation" json:"fieldValidation"`
}

// DB holds DB config.
type DB struct {
	Driver   string              `yaml:"driver" json:"driver" validate:"omitempty,oneof=postgres sqlite"`
	Host     string              `yaml:"host" json:"host"`
	User     commoncfg.SourceRef `yaml:"user" json:"user"`
	Password commoncfg.SourceRef `yaml:"password" json:"password"`
	Name     string              `yaml:"name" json:"name"` // database name
	Port     string              `yaml:"port" json:"port" validate:"omitempty,numeric"`
	// Path is the sqlite database file, ":memory:" for a transient store.
	Path string `yaml:"path" json:"path"`
}

var structValidator = validator.New()

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database config error: %w", err)
	}

	if _, err := validation.New(c.FieldValidation...); err != nil {
		return fmt.Errorf("field validation config error: %w", err)
	}

	return nil
}

func (d *DB) validate() error {
	if err := structValidator.StructPartial(d, "Driver", "Port"); err != nil {
		return err
	}

	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return ErrEmptySQLitePath
		}
	case DriverPostgres, "":
		if d.Host == "" {
			return ErrEmptyHost
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDriver, d.Driver)
	}

	return nil
}
