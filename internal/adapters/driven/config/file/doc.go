// Package file persists CLI state under the user's shipforge directory.
//
// ConfigStore keeps general configuration in config.toml. CredentialsStore
// keeps provider API keys in credentials.toml, written with 0600
// permissions since the values grant account access.
package file
