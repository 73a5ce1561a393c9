// Package config loads the envs tool configuration from multiple sources (YAML
// file, environment variables, CLI flags) with precedence: CLI flags >
// Environment variables > YAML config > Defaults. The YAML file may also carry
// the variable declarations handed to the registry.
package config
