// Package dotenv merges KEY=VALUE override files into an ambient variable
// store. Keys already present in the store are never overwritten, so the first
// writer wins: real process variables beat every file, and a file loaded
// earlier beats one loaded later.
package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envs/probe"
)

// Loader loads override files into an ambient variable store.
type Loader struct {
	env    probe.Env
	logger *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report loaded keys.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns a Loader writing into env.
func New(env probe.Env, opts ...Option) *Loader {
	l := &Loader{
		env:    env,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the file at path and sets every key that is not already present.
// A missing file is not an error.
//
// Unquoted and double-quoted values expand ${NAME} and $NAME against keys
// defined earlier in the same file only. The ambient store is not consulted,
// so a reference to an ambient variable expands to "". Single-quoted values
// are kept as written.
func (l *Loader) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("override file not found", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("open override file: %w", err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("parse override file %s: %w", path, err)
	}

	applied := 0
	for key, value := range vars {
		if _, exists := l.env.LookupEnv(key); exists {
			continue
		}
		if err := l.env.Setenv(key, value); err != nil {
			return fmt.Errorf("set %s from %s: %w", key, path, err)
		}
		applied++
	}

	l.logger.Debug("override file loaded",
		zap.String("path", path),
		zap.Int("keys", len(vars)),
		zap.Int("applied", applied),
	)
	return nil
}
