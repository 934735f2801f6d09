// Package config loads calcpaper's settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds settings for the calcpaper command.
type Config struct {
	// Precision is the precision of calculations in bits.
	Precision uint `yaml:"precision" env:"CALCPAPER_PRECISION" validate:"gt=0"`
	// Digits is the number of significant digits in formatted results.
	Digits int `yaml:"digits" env:"CALCPAPER_DIGITS" validate:"gt=0"`
	// DefinitionsDir is a directory of prefix, unit, and conversion
	// definitions loaded over the built-in ones.
	DefinitionsDir string `yaml:"definitions_dir" env:"CALCPAPER_DEFINITIONS_DIR"`
	// Paper is the paper file to use.
	Paper string `yaml:"paper" env:"CALCPAPER_PAPER" validate:"required"`
	// Output is the name of the renderer for showing papers.
	Output string `yaml:"output" env:"CALCPAPER_OUTPUT" validate:"required"`
	Log    Log    `yaml:"log"`
}

// Log holds logging settings.
type Log struct {
	Level       string `yaml:"level" env:"CALCPAPER_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development" env:"CALCPAPER_LOG_DEVELOPMENT"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Precision: 256,
		Digits:    34,
		Paper:     "calc.paper",
		Output:    "text",
		Log:       Log{Level: "warn"},
	}
}

// Load returns the default configuration overlaid by the YAML file at path,
// if path is not empty, and then by environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	return v
}()

// Validate reports settings that can't be used.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var errs error
	for _, e := range verrs {
		errs = multierr.Append(errs, fieldError(e))
	}
	return fmt.Errorf("invalid config: %w", errs)
}

func fieldError(e validator.FieldError) error {
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s must be set", e.Field())
	case "gt":
		if e.Param() == "0" {
			return fmt.Errorf("%s must be positive", e.Field())
		}
		return fmt.Errorf("%s must be greater than %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of %s, not %v", e.Field(), e.Param(), e.Value())
	default:
		return fmt.Errorf("%s is invalid", e.Field())
	}
}
