package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/crypto/nacl/box"
)

// CreateSecret stores an encrypted Actions secret on the repository.
// The value is sealed with the repository public key using a NaCl
// anonymous sealed box, which is what the Actions secrets API expects.
func (c *Client) CreateSecret(ctx context.Context, repoFullName, name, value string) error {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	key, resp, err := c.gh.Actions.GetRepoPublicKey(ctx, owner, repo)
	if err != nil {
		return c.wrapError(err, "get repo public key")
	}
	c.updateRateLimitFromResponse(resp)

	encrypted, err := sealSecret(key.GetKey(), value)
	if err != nil {
		return err
	}

	secret := &gh.EncryptedSecret{
		Name:           name,
		KeyID:          key.GetKeyID(),
		EncryptedValue: encrypted,
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err = c.gh.Actions.CreateOrUpdateRepoSecret(ctx, owner, repo, secret)
	if err != nil {
		return c.wrapError(err, "create secret")
	}
	c.updateRateLimitFromResponse(resp)
	return nil
}

// sealSecret encrypts a secret value with a base64-encoded 32-byte
// public key and returns the base64-encoded sealed box.
func sealSecret(publicKeyB64, value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublicKeyUnavailable, err)
	}
	if len(decoded) != 32 {
		return "", fmt.Errorf("%w: key is %d bytes, want 32", ErrPublicKeyUnavailable, len(decoded))
	}

	var key [32]byte
	copy(key[:], decoded)

	sealed, err := box.SealAnonymous(nil, []byte(value), &key, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}
