// Package probe describes the host runtimes a registry can run in. Each
// Capability reports which kind of runtime it is and gives access to that
// runtime's ambient variable store. The embedding application picks the
// implementation at startup instead of the registry detecting it.
package probe
