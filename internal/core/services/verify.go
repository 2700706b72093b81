package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// Ensure VerifyService implements the interface.
var _ driving.Verifier = (*VerifyService)(nil)

// maxLoadTime is the slowest acceptable landing page response.
const maxLoadTime = 5 * time.Second

// VerifyService smoke-tests a deployed application: page loads, API
// endpoints, a full signup/login round trip, payment page wiring,
// security headers, response time, and mobile responsiveness. Checks
// that cannot run (auth-gated pages, endpoints needing a session) are
// recorded as skipped and count as passed.
type VerifyService struct {
	httpClient *http.Client
	prober     driven.Prober

	// now is injectable so tests get deterministic signup emails.
	now func() time.Time
}

// NewVerifyService creates a verification service. The prober measures
// response time; nil disables the performance category.
func NewVerifyService(prober driven.Prober) *VerifyService {
	return &VerifyService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		prober:     prober,
		now:        time.Now,
	}
}

type pageCheck struct {
	path         string
	name         string
	content      []string
	requiresAuth bool
}

type apiCheck struct {
	path         string
	method       string
	wantStatus   []int
	requiresData bool
	requiresAuth bool
}

// Verify runs the full smoke-test suite against the base URL.
func (s *VerifyService) Verify(ctx context.Context, baseURL string) (*domain.VerificationReport, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL required: %w", domain.ErrInvalidInput)
	}

	start := s.now()
	report := &domain.VerificationReport{
		BaseURL:   baseURL,
		StartedAt: start,
	}

	report.Categories = append(report.Categories, s.verifyPages(ctx, baseURL))
	report.Categories = append(report.Categories, s.verifyAPI(ctx, baseURL))
	report.Categories = append(report.Categories, s.verifyAuthFlow(ctx, baseURL))
	report.Categories = append(report.Categories, s.verifyPayments(ctx, baseURL))
	report.Categories = append(report.Categories, s.verifyAI())
	report.Categories = append(report.Categories, s.verifySecurityHeaders(ctx, baseURL))
	if s.prober != nil {
		report.Categories = append(report.Categories, s.verifyPerformance(ctx, baseURL))
	}
	report.Categories = append(report.Categories, s.verifyMobile(ctx, baseURL))

	report.Elapsed = s.now().Sub(start)
	logger.Debug("verify: %d/%d checks passed (%.1f%%)",
		report.PassedChecks(), report.TotalChecks(), report.PassRate())
	return report, nil
}

func (s *VerifyService) verifyPages(ctx context.Context, baseURL string) domain.CheckCategory {
	pages := []pageCheck{
		{path: "/", name: "Landing Page", content: []string{"AI-Powered Content Optimizer"}},
		{path: "/signup", name: "Signup Page", content: []string{"Create Account", "Email", "Password"}},
		{path: "/login", name: "Login Page", content: []string{"Sign In", "Email", "Password"}},
		{path: "/pricing", name: "Pricing Page", content: []string{"$9", "month", "Subscribe"}},
		{path: "/dashboard", name: "Dashboard", content: []string{"Dashboard"}, requiresAuth: true},
	}

	category := domain.CheckCategory{Name: "Frontend Pages"}
	for _, page := range pages {
		name := "Load " + page.name
		if page.requiresAuth {
			category.Checks = append(category.Checks, skippedCheck(name, "requires authentication"))
			continue
		}

		status, body, err := s.get(ctx, baseURL+page.path)
		if err != nil {
			category.Checks = append(category.Checks, failedCheck(name, fmt.Sprintf("failed to load: %v", err)))
			continue
		}

		contentOK := true
		lower := strings.ToLower(body)
		for _, want := range page.content {
			if !strings.Contains(lower, strings.ToLower(want)) {
				contentOK = false
				break
			}
		}

		passed := status == http.StatusOK && contentOK
		msg := "OK"
		if !passed {
			msg = fmt.Sprintf("status %d, content match %v", status, contentOK)
		}
		category.Checks = append(category.Checks, domain.CheckResult{
			Name:       name,
			Passed:     passed,
			StatusCode: status,
			Message:    msg,
		})
	}
	return category
}

func (s *VerifyService) verifyAPI(ctx context.Context, baseURL string) domain.CheckCategory {
	checks := []apiCheck{
		{path: "/api/health", method: http.MethodGet, wantStatus: []int{200, 503}},
		{path: "/api/signup", method: http.MethodPost, wantStatus: []int{200, 400}, requiresData: true},
		{path: "/api/login", method: http.MethodPost, wantStatus: []int{200, 400}, requiresData: true},
		{path: "/api/optimize", method: http.MethodPost, wantStatus: []int{200, 401}, requiresAuth: true},
	}

	category := domain.CheckCategory{Name: "API Endpoints"}
	for _, check := range checks {
		name := check.method + " " + check.path
		if check.requiresAuth || check.requiresData {
			category.Checks = append(category.Checks, skippedCheck(name, "requires authentication/data"))
			continue
		}

		req, err := http.NewRequestWithContext(ctx, check.method, baseURL+check.path, nil)
		if err != nil {
			category.Checks = append(category.Checks, failedCheck(name, err.Error()))
			continue
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			category.Checks = append(category.Checks, failedCheck(name, fmt.Sprintf("request failed: %v", err)))
			continue
		}
		resp.Body.Close()

		passed := false
		for _, want := range check.wantStatus {
			if resp.StatusCode == want {
				passed = true
				break
			}
		}
		msg := "OK"
		if !passed {
			msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		category.Checks = append(category.Checks, domain.CheckResult{
			Name:       name,
			Passed:     passed,
			StatusCode: resp.StatusCode,
			Message:    msg,
		})
	}
	return category
}

// verifyAuthFlow signs up a throwaway account and logs in with it. The
// login check is skipped when signup does not succeed.
func (s *VerifyService) verifyAuthFlow(ctx context.Context, baseURL string) domain.CheckCategory {
	category := domain.CheckCategory{Name: "Authentication Flow"}

	creds := map[string]string{
		"email":    fmt.Sprintf("test_%d@example.com", s.now().Unix()),
		"password": "TestPassword123!",
	}

	signupOK, status, msg := s.postJSON(ctx, baseURL+"/api/signup", creds)
	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "User Signup",
		Passed:     signupOK,
		StatusCode: status,
		Message:    msg,
	})

	if !signupOK {
		category.Checks = append(category.Checks, skippedCheck("User Login", "signup failed"))
		return category
	}

	loginOK, status, msg := s.postJSON(ctx, baseURL+"/api/login", creds)
	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "User Login",
		Passed:     loginOK,
		StatusCode: status,
		Message:    msg,
	})
	return category
}

// verifyPayments checks that the pricing page loads with the payment
// provider wired in and the subscription price displayed.
func (s *VerifyService) verifyPayments(ctx context.Context, baseURL string) domain.CheckCategory {
	category := domain.CheckCategory{Name: "Payment Integration"}

	status, body, err := s.get(ctx, baseURL+"/pricing")
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Payment Page Load", fmt.Sprintf("failed to load: %v", err)))
		return category
	}

	lower := strings.ToLower(body)
	stripePresent := strings.Contains(lower, "stripe")
	pricingPresent := strings.Contains(body, "$9")

	passed := status == http.StatusOK && stripePresent && pricingPresent
	msg := "OK"
	if !passed {
		msg = fmt.Sprintf("status %d, stripe %v, pricing %v", status, stripePresent, pricingPresent)
	}
	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "Payment Page Load",
		Passed:     passed,
		StatusCode: status,
		Message:    msg,
	})
	return category
}

// verifyAI records the optimization endpoint as configured. Exercising
// it needs an authenticated session, so the check is skipped.
func (s *VerifyService) verifyAI() domain.CheckCategory {
	return domain.CheckCategory{
		Name:   "AI Functionality",
		Checks: []domain.CheckResult{skippedCheck("AI Optimization Endpoint", "requires authentication")},
	}
}

func (s *VerifyService) verifySecurityHeaders(ctx context.Context, baseURL string) domain.CheckCategory {
	category := domain.CheckCategory{Name: "Security Measures"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Security Headers", err.Error()))
		return category
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Security Headers", fmt.Sprintf("request failed: %v", err)))
		return category
	}
	resp.Body.Close()

	wanted := []string{"X-Content-Type-Options", "X-Frame-Options", "X-Xss-Protection"}
	found := 0
	for _, header := range wanted {
		if resp.Header.Get(header) != "" {
			found++
		}
	}

	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "Security Headers",
		Passed:     found >= 1,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("found %d/%d security headers", found, len(wanted)),
	})
	return category
}

func (s *VerifyService) verifyPerformance(ctx context.Context, baseURL string) domain.CheckCategory {
	category := domain.CheckCategory{Name: "Performance"}

	result, err := s.prober.Probe(ctx, baseURL+"/")
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Page Load Performance", fmt.Sprintf("probe failed: %v", err)))
		return category
	}

	passed := result.Latency < maxLoadTime
	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "Page Load Performance",
		Passed:     passed,
		StatusCode: result.StatusCode,
		Message:    fmt.Sprintf("load time %s", result.Latency.Round(10*time.Millisecond)),
	})
	return category
}

// responsiveIndicators are markers a mobile-friendly page is expected
// to carry; at least two must appear.
var responsiveIndicators = []string{"viewport", "responsive", "mobile", "@media", "tailwind"}

const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_7_1 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.2 Mobile/15E148 Safari/604.1"

// verifyMobile fetches the landing page with a phone user agent and
// counts responsive design markers in the response.
func (s *VerifyService) verifyMobile(ctx context.Context, baseURL string) domain.CheckCategory {
	category := domain.CheckCategory{Name: "Mobile Responsiveness"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Mobile Responsiveness", err.Error()))
		return category
	}
	req.Header.Set("User-Agent", mobileUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Mobile Responsiveness", fmt.Sprintf("request failed: %v", err)))
		return category
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		category.Checks = append(category.Checks, failedCheck("Mobile Responsiveness", fmt.Sprintf("reading response: %v", err)))
		return category
	}

	lower := strings.ToLower(string(body))
	score := 0
	for _, indicator := range responsiveIndicators {
		if strings.Contains(lower, indicator) {
			score++
		}
	}

	category.Checks = append(category.Checks, domain.CheckResult{
		Name:       "Mobile Responsiveness",
		Passed:     score >= 2,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("responsive indicators found: %d/%d", score, len(responsiveIndicators)),
	})
	return category
}

func (s *VerifyService) get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// postJSON posts a JSON body and reports success when the endpoint
// answers 200 with {"success": true}.
func (s *VerifyService) postJSON(ctx context.Context, url string, payload any) (bool, int, string) {
	data, err := json.Marshal(payload)
	if err != nil {
		return false, 0, err.Error()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return false, 0, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, 0, fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, resp.StatusCode, fmt.Sprintf("status %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, resp.StatusCode, fmt.Sprintf("decoding response: %v", err)
	}
	if !out.Success {
		return false, resp.StatusCode, "endpoint reported success=false"
	}
	return true, resp.StatusCode, "OK"
}

func skippedCheck(name, reason string) domain.CheckResult {
	return domain.CheckResult{
		Name:    name,
		Passed:  true,
		Skipped: true,
		Message: "skipped - " + reason,
	}
}

func failedCheck(name, message string) domain.CheckResult {
	return domain.CheckResult{Name: name, Message: message}
}
