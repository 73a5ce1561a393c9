package envs

// defaultRegistry backs the package-level functions. It is not guarded:
// replace or reset it only during startup or in tests.
var defaultRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// SetDefault replaces the process-wide registry.
func SetDefault(r *Registry) {
	if r == nil {
		r = New()
	}
	defaultRegistry = r
}

// Reset discards the process-wide registry state. Intended for tests.
func Reset() {
	defaultRegistry = New()
}

// Init calls Init on the default registry.
func Init(opts InitOptions) error {
	return defaultRegistry.Init(opts)
}

// MustInit is like Init but panics on error. Use it in main.
func MustInit(opts InitOptions) {
	if err := Init(opts); err != nil {
		panic(err)
	}
}

// Register calls Register on the default registry.
func Register(key string, spec Spec) error {
	return defaultRegistry.Register(key, spec)
}

// MustRegister calls MustRegister on the default registry.
func MustRegister(key string, spec Spec) {
	defaultRegistry.MustRegister(key, spec)
}

// Set is an alias for Register.
func Set(key string, spec Spec) error {
	return defaultRegistry.Set(key, spec)
}

// GetNowEnv returns the default registry's environment name.
func GetNowEnv() string {
	return defaultRegistry.GetNowEnv()
}

// Get calls Get on the default registry.
func Get(key string, defaultVal ...any) (any, error) {
	return defaultRegistry.Get(key, defaultVal...)
}

// GetByString calls GetByString on the default registry.
func GetByString(key string, defaultVal ...string) string {
	return defaultRegistry.GetByString(key, defaultVal...)
}

// GetByStringList calls GetByStringList on the default registry.
func GetByStringList(key string, opts ...ListOption) []string {
	return defaultRegistry.GetByStringList(key, opts...)
}

// GetByNumber calls GetByNumber on the default registry.
func GetByNumber(key string, defaultVal ...float64) float64 {
	return defaultRegistry.GetByNumber(key, defaultVal...)
}

// GetByBoolean calls GetByBoolean on the default registry.
func GetByBoolean(key string, defaultVal ...bool) bool {
	return defaultRegistry.GetByBoolean(key, defaultVal...)
}

// GetByJSON calls GetByJSON on the default registry.
func GetByJSON(key string, defaultVal any) (any, error) {
	return defaultRegistry.GetByJSON(key, defaultVal)
}

// GetAllByString calls GetAllByString on the default registry.
func GetAllByString() map[string]string {
	return defaultRegistry.GetAllByString()
}

// GetAll calls GetAll on the default registry.
func GetAll() (map[string]any, error) {
	return defaultRegistry.GetAll()
}
