package envs

import (
	"strings"

	"go.uber.org/zap"
)

// Canonical environment names.
const (
	Develop = "develop"
	Staging = "staging"
	Release = "release"

	// DefaultEnv is used when nothing else identifies the environment.
	DefaultEnv = Release

	// DefaultEnvNameVar is the ambient variable read in a general runtime.
	DefaultEnvNameVar = "APP_ENV"
)

var (
	constrainedEnvNames = map[string]string{
		"develop": Develop,
		"trial":   Staging,
		"release": Release,
	}
	generalEnvNames = map[string]string{
		"development": Develop,
		"staging":     Staging,
		"production":  Release,
	}
)

// mapEnvName lowercases raw and maps it through table. Unknown names are
// returned lowercased; an empty name becomes DefaultEnv.
func mapEnvName(raw string, table map[string]string) string {
	name := strings.ToLower(raw)
	if mapped, ok := table[name]; ok {
		return mapped
	}
	if name == "" {
		return DefaultEnv
	}
	return name
}

// GetNowEnv returns the current environment name, detecting it on first use.
func (r *Registry) GetNowEnv() string {
	if r.nowEnv != "" {
		return r.nowEnv
	}
	r.nowEnv = r.detectEnv()
	return r.nowEnv
}

func (r *Registry) detectEnv() string {
	switch {
	case r.runtime.IsConstrained():
		return mapEnvName(r.runtime.VersionTag(), constrainedEnvNames)
	case r.runtime.IsGeneral():
		raw, _ := r.runtime.LookupEnv(r.envNameVar)
		return mapEnvName(raw, generalEnvNames)
	}
	r.logger.Warn("runtime is neither constrained nor general, using default environment",
		zap.String("env", DefaultEnv),
	)
	return DefaultEnv
}
