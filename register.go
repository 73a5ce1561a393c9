package envs

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envs/internal/coerce"
	"github.com/eugenenazirov/envs/internal/storage"
)

// Register declares key and stores its resolved value.
//
// It returns a *MissingError when the variable is required and nothing
// resolves. Registering a key twice replaces the earlier value.
func (r *Registry) Register(key string, spec Spec) error {
	opts := normalize(spec)
	required := flagOr(opts.Required, true)
	override := flagOr(opts.Override, true)
	checkDuplicate := flagOr(opts.CheckDuplicate, true)
	kind := opts.Type
	if kind == "" {
		kind = TypeString
	}

	env := r.GetNowEnv()
	if checkDuplicate {
		if _, exists := r.store.Get(key); exists {
			r.logger.Warn("duplicate environment variable register", zap.String("key", key))
		}
	}

	value, found := r.resolve(key, opts, override, env)
	if !found {
		if required {
			return &MissingError{Key: key}
		}
		r.store.Put(key, storage.Entry{Type: kind})
		return nil
	}

	str, err := coerce.Stringify(value, kind)
	if err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}
	r.store.Put(key, storage.Entry{Value: str, Type: kind})
	return nil
}

// Set is an alias for Register.
func (r *Registry) Set(key string, spec Spec) error {
	return r.Register(key, spec)
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(key string, spec Spec) {
	if err := r.Register(key, spec); err != nil {
		panic(err)
	}
}

// resolve picks the ambient variable, the value for env, or the default.
// An empty ambient variable counts as unset.
func (r *Registry) resolve(key string, opts Options, override bool, env string) (any, bool) {
	if override {
		if v, ok := r.runtime.LookupEnv(key); ok && v != "" {
			return v, true
		}
	}
	if v, ok := opts.Env[env]; ok && v != nil {
		return v, true
	}
	if opts.Default != nil {
		return opts.Default, true
	}
	return nil, false
}
