// Package definitions provides the built-in prefixes, units, and conversions
// and loads further definitions from a directory.
//
// A definition directory holds up to three files, prefixes.txt, units.txt,
// and conversions.txt, in the line formats read by units.Converter's
// LoadPrefixes, LoadUnits, and LoadConversions. They are loaded in that order
// so that units and conversions can refer to what came before.
package definitions

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/calcpaper/units"
)

//go:embed defaults/*.txt
var defaults embed.FS

// Names of the definition files in a definitions directory. They are loaded
// in this order, since conversions can name prefixed units.
const (
	// PrefixesFile holds one prefix per line: name, symbol, base, power.
	PrefixesFile = "prefixes.txt"
	// UnitsFile holds one unit per line: name, optional exponent, aliases.
	UnitsFile = "units.txt"
	// ConversionsFile holds one conversion per line: a unit, a factor or a
	// formula in x, and another unit.
	ConversionsFile = "conversions.txt"
)

// Defaults returns the built-in definition files.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaults, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load registers the built-in definitions with c.
func Load(c *units.Converter) error {
	return LoadFS(c, Defaults())
}

// LoadDir registers the definitions in dir with c. Files that don't exist are
// skipped.
func LoadDir(c *units.Converter, dir string) error {
	return LoadFS(c, os.DirFS(dir))
}

// LoadFS registers the definitions in fsys with c. Loading is best effort:
// every line that can be registered is, and the returned error combines the
// errors from all lines that couldn't.
func LoadFS(c *units.Converter, fsys fs.FS) error {
	steps := []struct {
		name string
		load func(io.Reader) error
	}{
		{PrefixesFile, c.LoadPrefixes},
		{UnitsFile, c.LoadUnits},
		{ConversionsFile, c.LoadConversions},
	}
	var errs error
	for _, s := range steps {
		f, err := fsys.Open(s.name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = multierr.Append(errs, err)
			}
			continue
		}
		if err := s.load(f); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
		errs = multierr.Append(errs, f.Close())
	}
	return errs
}

// NewConverter creates a converter with the built-in definitions, then those
// in dir if it isn't empty.
func NewConverter(dir string, opts ...units.Option) (*units.Converter, error) {
	c := units.NewConverter(opts...)
	err := Load(c)
	if dir != "" {
		err = multierr.Append(err, LoadDir(c, dir))
	}
	return c, err
}
