// Package config loads optional generator configuration from an llgen.toml
// file, for settings a command-line flag would be clunky for.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/llgen/internal/lgerrors"
)

// Config holds settings that can be supplied via an llgen.toml file instead
// of (or in addition to) command-line flags.
type Config struct {
	// Package is the package name written into generated ast.go/parser.go.
	Package string `toml:"package"`
	// ImportPath is used by a freshly generated main.go to import the
	// package containing ast.go/parser.go.
	ImportPath string `toml:"import_path"`
}

// Default returns the configuration used when no llgen.toml is present.
func Default() Config {
	return Config{
		Package: "generated",
	}
}

// Load reads and parses the TOML file at path. A missing file is not an
// error: it is treated as an empty Config to be merged onto Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, lgerrors.IO("reading config file", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, lgerrors.MalformedInput(path, err.Error())
	}
	return cfg, nil
}

// Merge overlays non-zero fields of override onto base and returns the
// result.
func Merge(base, override Config) Config {
	result := base
	if override.Package != "" {
		result.Package = override.Package
	}
	if override.ImportPath != "" {
		result.ImportPath = override.ImportPath
	}
	return result
}
