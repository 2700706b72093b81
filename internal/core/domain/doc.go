// Package domain contains the core business entities for shipforge.
//
// The central entity is the [Deployment]: the record of one run of the
// autonomous deployment pipeline, from local file validation through
// repository creation, platform deploy, and post-deploy verification.
// Each pipeline stage appends a [StepResult] so the full history of a
// run is inspectable afterwards.
//
// Domain types have no dependencies on adapters or external services.
package domain
