package domain

// Credential keys recognised by the credential store and the
// environment fallback. Each key gates one provider integration.
const (
	CredGitHubToken       = "GITHUB_TOKEN"
	CredRenderAPIKey      = "RENDER_API_KEY"
	CredRailwayToken      = "RAILWAY_TOKEN"
	CredVercelToken       = "VERCEL_TOKEN"
	CredCloudflareToken   = "CLOUDFLARE_API_TOKEN"
	CredGoDaddyKey        = "GODADDY_API_KEY"
	CredGoDaddySecret     = "GODADDY_SECRET"
	CredSendGridKey       = "SENDGRID_API_KEY"
	CredMailgunKey        = "MAILGUN_API_KEY"
	CredMailgunDomain     = "MAILGUN_DOMAIN"
	CredPagerDutyKey      = "PAGERDUTY_API_KEY"
	CredOpenAIKey         = "OPENAI_API_KEY"
	CredStripeSecretKey   = "STRIPE_SECRET_KEY"
	CredSessionSecret     = "SESSION_SECRET"
	CredSentryDSN         = "SENTRY_DSN"
	CredGoogleAnalyticsID = "GA_TRACKING_ID"
)

// KnownCredentialKeys lists every credential key in display order.
var KnownCredentialKeys = []string{
	CredGitHubToken,
	CredRenderAPIKey,
	CredRailwayToken,
	CredVercelToken,
	CredCloudflareToken,
	CredGoDaddyKey,
	CredGoDaddySecret,
	CredSendGridKey,
	CredMailgunKey,
	CredMailgunDomain,
	CredPagerDutyKey,
	CredOpenAIKey,
	CredStripeSecretKey,
	CredSessionSecret,
	CredSentryDSN,
	CredGoogleAnalyticsID,
}

// Credentials maps credential keys to secret values. A missing or empty
// value means the corresponding integration is unavailable and the
// pipeline skips the stages that need it.
type Credentials map[string]string

// Get returns the value for a key, or "" when unset.
func (c Credentials) Get(key string) string {
	if c == nil {
		return ""
	}
	return c[key]
}

// Has reports whether a non-empty value exists for the key.
func (c Credentials) Has(key string) bool {
	return c.Get(key) != ""
}

// HasAll reports whether every key has a non-empty value.
func (c Credentials) HasAll(keys ...string) bool {
	for _, k := range keys {
		if !c.Has(k) {
			return false
		}
	}
	return true
}

// RequiredCredentials maps each integration group to the credential
// keys it needs. Used by `shipforge credentials list` to show what is
// configured and what each missing key would unlock.
func RequiredCredentials() map[string][]string {
	return map[string][]string{
		"github":     {CredGitHubToken},
		"render":     {CredRenderAPIKey},
		"railway":    {CredRailwayToken},
		"vercel":     {CredVercelToken},
		"domain":     {CredCloudflareToken, CredGoDaddyKey, CredGoDaddySecret},
		"email":      {CredSendGridKey, CredMailgunKey, CredMailgunDomain},
		"monitoring": {CredPagerDutyKey, CredSentryDSN, CredGoogleAnalyticsID},
		"app":        {CredOpenAIKey, CredStripeSecretKey, CredSessionSecret},
	}
}
