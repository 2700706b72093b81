// Package driving defines the interfaces through which the CLI and TUI
// invoke core services: orchestrating deployments, verifying live sites,
// scaffolding platform configs, watching for changes, and generating
// launch announcements.
//
// The services package provides the implementations.
package driving
