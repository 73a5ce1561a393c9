// Package application wires the inspection HTTP server. It builds the
// handler, router and server over an initialised registry and runs them
// until the caller's context ends, keeping the main package focused on CLI
// parsing and orchestration.
package application
