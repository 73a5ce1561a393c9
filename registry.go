package envs

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envs/dotenv"
	"github.com/eugenenazirov/envs/internal/storage"
	"github.com/eugenenazirov/envs/probe"
)

// Loader merges an override file into the ambient variable store.
type Loader interface {
	Load(path string) error
}

// Registry holds the current environment name and every registered variable.
type Registry struct {
	runtime    probe.Capability
	loader     Loader
	logger     *zap.Logger
	envNameVar string
	getwd      func() (string, error)

	store  storage.Storage
	nowEnv string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRuntime selects the host runtime. Defaults to probe.Process.
func WithRuntime(runtime probe.Capability) RegistryOption {
	return func(r *Registry) {
		r.runtime = runtime
	}
}

// WithLoader replaces the override file loader. By default files are loaded
// into the runtime's ambient variables.
func WithLoader(loader Loader) RegistryOption {
	return func(r *Registry) {
		r.loader = loader
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEnvNameVar changes the ambient variable holding the environment name
// in a general runtime. Defaults to APP_ENV.
func WithEnvNameVar(name string) RegistryOption {
	return func(r *Registry) {
		r.envNameVar = name
	}
}

// New returns an empty Registry.
func New(opts ...RegistryOption) *Registry {
	r := &Registry{
		runtime:    probe.Process{},
		logger:     zap.NewNop(),
		envNameVar: DefaultEnvNameVar,
		getwd:      os.Getwd,
		store:      storage.NewMemoryStorage(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runtime == nil {
		r.runtime = probe.None{}
	}
	if r.loader == nil {
		r.loader = dotenv.New(r.runtime, dotenv.WithLogger(r.logger))
	}
	return r
}

// InitOptions controls Init.
type InitOptions struct {
	// Env forces the environment name. Any value is accepted as-is.
	Env string
	// LoadDotEnv enables override files. Defaults to true in a general runtime.
	LoadDotEnv *bool
	// Folder holds the override files. Defaults to the working directory.
	Folder string
	// EnvPath loads exactly this file and ignores Folder.
	EnvPath string
	// Vars are registered in order once the environment is set up.
	Vars Vars
}

// Init resolves the environment, loads override files and registers Vars.
// Previously registered variables are kept.
func (r *Registry) Init(opts InitOptions) error {
	r.nowEnv = opts.Env
	env := r.GetNowEnv()
	r.logger.Debug("environment resolved", zap.String("env", env))

	if flagOr(opts.LoadDotEnv, r.runtime.IsGeneral()) {
		if err := r.loadOverrideFiles(env, opts.EnvPath, opts.Folder); err != nil {
			return err
		}
	}

	for _, v := range opts.Vars {
		if err := r.Register(v.Key, v.Spec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadOverrideFiles(env, envPath, folder string) error {
	if envPath != "" {
		if err := r.loader.Load(envPath); err != nil {
			return fmt.Errorf("load override file: %w", err)
		}
		return nil
	}

	if folder == "" {
		wd, err := r.getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
		folder = wd
	}

	for _, name := range []string{"." + env + ".env", ".env"} {
		if err := r.loader.Load(filepath.Join(folder, name)); err != nil {
			return fmt.Errorf("load override file: %w", err)
		}
	}
	return nil
}
