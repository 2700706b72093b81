// Package services contains the core business logic, orchestrating
// driven ports without knowing about concrete providers.
//
// Services implement the driving port interfaces consumed by the CLI:
// DeployService runs the deployment pipeline, VerifyService smoke-tests
// a live deployment, ScaffoldService generates platform config files,
// and WatchService mirrors local edits to the source repository.
package services
