// Package driven defines the outbound ports: interfaces the core
// services depend on, implemented by adapters (platform API clients,
// registrars, mailers, stores). Services never import adapters.
package driven
