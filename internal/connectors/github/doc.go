// Package github implements the repository host used by the deployment
// pipeline.
//
// The pipeline creates one repository per deployed application, pushes
// the project file set through the Contents API, stores provider tokens
// as encrypted Actions secrets, and commits a platform-specific deploy
// workflow.
//
// # Authentication
//
// A Personal Access Token (classic or fine-grained) with 'repo' and
// 'workflow' scopes is required. Tokens are resolved from the
// credential store, falling back to the GITHUB_TOKEN environment
// variable. Authenticated requests are limited to 5,000 per hour.
//
// # Rate Limiting
//
// The client uses a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket limits requests to roughly
//     1.2 requests per second, staying well under the hourly limit.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset
//     headers are monitored; when the quota is nearly exhausted the
//     client waits for the reset before continuing.
//
// # Repository naming
//
// Created repositories get a Unix-timestamp suffix so repeated deploys
// of the same application never collide with earlier runs.
//
// # Secrets
//
// Actions secrets are sealed with the repository public key using a
// NaCl anonymous sealed box, as the Actions secrets API requires.
package github
