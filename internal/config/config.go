// Package config resolves input paths and settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/yumyai/genemerge/internal/util"
)

const (
	EnvTDMDir        = "GENEMERGE_3DM_DIR"
	EnvTDMAnnotation = "GENEMERGE_3DM_ANNOTATION"
	EnvPDBIDMap      = "GENEMERGE_PDB_IDMAP"
	EnvPDBAnnotation = "GENEMERGE_PDB_ANNOTATION"
	EnvLedger        = "GENEMERGE_LEDGER"
	EnvLogLevel      = "GENEMERGE_LOG_LEVEL"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	DatasetFile string
	OutFile     string

	TDMDir        string
	TDMAnnotation string
	PDBIDMap      string
	PDBAnnotation string

	// Ledger is the SQLite run ledger path; empty disables it.
	Ledger   string
	LogLevel string
}

// LoadDotEnv loads the given .env files (".env" when none are named) into
// the process environment. Existing variables win. It reports whether a
// file was loaded.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		TDMDir:        os.Getenv(EnvTDMDir),
		TDMAnnotation: os.Getenv(EnvTDMAnnotation),
		PDBIDMap:      os.Getenv(EnvPDBIDMap),
		PDBAnnotation: os.Getenv(EnvPDBAnnotation),
		Ledger:        os.Getenv(EnvLedger),
		LogLevel:      os.Getenv(EnvLogLevel),
	}
}

// Validate checks that every input exists. The output file is created by
// the merge and is not checked.
func (c Config) Validate() error {
	var errs []error

	files := []struct {
		name, path string
	}{
		{"dataset file", c.DatasetFile},
		{"3DM annotation", c.TDMAnnotation},
		{"PDB ID map", c.PDBIDMap},
		{"PDB annotation", c.PDBAnnotation},
	}
	for _, f := range files {
		if f.path == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalidConfig, f.name))
		} else if !util.FileExists(f.path) {
			errs = append(errs, fmt.Errorf("%w: %s %s: %w", ErrInvalidConfig, f.name, f.path, os.ErrNotExist))
		}
	}

	if c.TDMDir == "" {
		errs = append(errs, fmt.Errorf("%w: 3DM directory is required", ErrInvalidConfig))
	} else if !util.DirExists(c.TDMDir) {
		errs = append(errs, fmt.Errorf("%w: 3DM directory %s: %w", ErrInvalidConfig, c.TDMDir, os.ErrNotExist))
	}

	if c.OutFile == "" {
		errs = append(errs, fmt.Errorf("%w: output file is required", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
