package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driving"
	"github.com/shipforge-labs/shipforge-cli/internal/core/services"
)

func TestVersionCmd(t *testing.T) {
	original := version
	version = "1.2.3"
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shipforge version 1.2.3")
}

func TestVerifyCmd_Passes(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	verifier = &fakeCLIVerifier{report: &domain.VerificationReport{
		BaseURL: "https://app.example.com",
		Categories: []domain.CheckCategory{{
			Name:   "Frontend Pages",
			Checks: []domain.CheckResult{{Name: "Load Landing Page", Passed: true, Message: "OK"}},
		}},
	}}

	out, err := execute(t, "verify", "https://app.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Frontend Pages (1/1)")
	assert.Contains(t, out, "+ Load Landing Page")
	assert.Contains(t, out, "1/1 checks passed (100.0%)")
}

func TestVerifyCmd_FailureIsAnError(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	verifier = &fakeCLIVerifier{report: &domain.VerificationReport{
		Categories: []domain.CheckCategory{{
			Name:   "Frontend Pages",
			Checks: []domain.CheckResult{{Name: "Load Landing Page", Message: "status 500"}},
		}},
	}}

	out, err := execute(t, "verify", "https://app.example.com")
	require.Error(t, err)
	assert.Contains(t, out, "x Load Landing Page (status 500)")
}

func TestScaffoldCmd(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	dir := t.TempDir()

	out, err := execute(t, "scaffold", dir, "--name", "my-app")
	require.NoError(t, err)
	assert.Contains(t, out, "render.yaml")

	_, err = os.Stat(filepath.Join(dir, "Procfile"))
	assert.NoError(t, err)
	scaffoldName = ""
}

func TestHistoryCmds(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()

	d := *goodDeployment()
	d.CreatedAt = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, historyStore.Save(context.Background(), d))

	out, err := execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dep-1")
	assert.Contains(t, out, "succeeded")

	out, err = execute(t, "history", "show", "dep-1")
	require.NoError(t, err)
	assert.Contains(t, out, "app (dep-1 on render)")
	assert.Contains(t, out, "+ deploy")

	out, err = execute(t, "history", "delete", "dep-1")
	require.NoError(t, err)
	assert.Contains(t, out, "dep-1 removed")

	_, err = execute(t, "history", "show", "dep-1")
	require.Error(t, err)
}

func TestHistoryListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()

	out, err := execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No deployments recorded.")
}

func TestCredentialsCmds(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()

	out, err := execute(t, "credentials", "set", "github_token", "ghp_x")
	require.NoError(t, err)
	assert.Contains(t, out, "GITHUB_TOKEN stored")

	out, err = execute(t, "credentials", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "GITHUB_TOKEN")
	assert.Contains(t, out, "configured")
	// The value itself never appears.
	assert.NotContains(t, out, "ghp_x")

	out, err = execute(t, "credentials", "delete", "github_token")
	require.NoError(t, err)
	assert.Contains(t, out, "GITHUB_TOKEN removed")
}

func TestCredentialsSetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()

	_, err := execute(t, "credentials", "set", "NOT_A_KEY", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type fakeAnnouncer struct {
	content *driving.Announcement
	err     error
}

func (f *fakeAnnouncer) Announce(context.Context, string, string) (*driving.Announcement, error) {
	return f.content, f.err
}

func TestAnnounceCmd(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	announcer = &fakeAnnouncer{content: &driving.Announcement{
		Subject:    "We launched!",
		EmailHTML:  "<p>Try it today.</p>",
		SocialPost: "Just shipped.",
	}}

	out, err := execute(t, "announce", "My App", "https://my-app.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Subject: We launched!")
	assert.Contains(t, out, "Just shipped.")
}

type recordingMailer struct {
	sent []driven.Message
}

func (m *recordingMailer) Name() string                    { return "sendgrid" }
func (m *recordingMailer) VerifyKey(context.Context) error { return nil }
func (m *recordingMailer) SetupSender(_ context.Context, _, fromEmail string) (*driven.SenderSetup, error) {
	return &driven.SenderSetup{Service: "sendgrid", FromEmail: fromEmail, Verified: true}, nil
}
func (m *recordingMailer) Send(_ context.Context, msg driven.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestAnnounceCmd_Send(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer func() {
		announceSend = false
		announceTo = nil
	}()
	announcer = &fakeAnnouncer{content: &driving.Announcement{
		Subject:   "We launched!",
		EmailHTML: "<p>Try it today.</p>",
	}}
	mailer := &recordingMailer{}
	emailService = services.NewEmailService(mailer)

	out, err := execute(t, "announce", "My App", "https://my-app.com",
		"--send", "--to", "early@adopters.dev")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent to 1 recipient(s)")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "noreply@my-app.com", mailer.sent[0].From)
	assert.Equal(t, []string{"early@adopters.dev"}, mailer.sent[0].To)
	assert.Equal(t, "We launched!", mailer.sent[0].Subject)
}

func TestAnnounceCmd_SendWithoutMailer(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer func() {
		announceSend = false
		announceTo = nil
	}()
	announcer = &fakeAnnouncer{content: &driving.Announcement{Subject: "Hi"}}
	emailService = nil

	_, err := execute(t, "announce", "My App", "https://my-app.com",
		"--send", "--to", "early@adopters.dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail provider")
}

type fakeIncidentManager struct {
	created  []driven.Incident
	resolved []string
	listErr  error
	list     []driven.Incident
}

func (f *fakeIncidentManager) CreateIncident(_ context.Context, serviceID, title, urgency string) (*driven.Incident, error) {
	in := driven.Incident{ID: "Q" + serviceID, Title: title, Status: "triggered", Urgency: urgency}
	f.created = append(f.created, in)
	return &in, nil
}

func (f *fakeIncidentManager) ListIncidents(context.Context, string) ([]driven.Incident, error) {
	return f.list, f.listErr
}

func (f *fakeIncidentManager) ResolveIncident(_ context.Context, incidentID string) (*driven.Incident, error) {
	f.resolved = append(f.resolved, incidentID)
	return &driven.Incident{ID: incidentID, Status: "resolved"}, nil
}

func resetIncidentFlags() {
	incidentsJSON = false
	incidentsUrgency = "high"
	incidentsStatus = "triggered"
}

func TestIncidentsCreateCmd(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer resetIncidentFlags()
	mgr := &fakeIncidentManager{}
	incidentManager = mgr

	out, err := execute(t, "incidents", "create", "SVC1", "Site is down", "--urgency", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "Incident QSVC1 created")

	require.Len(t, mgr.created, 1)
	assert.Equal(t, "Site is down", mgr.created[0].Title)
	assert.Equal(t, "low", mgr.created[0].Urgency)
}

func TestIncidentsListCmd(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer resetIncidentFlags()
	incidentManager = &fakeIncidentManager{list: []driven.Incident{
		{ID: "Q1", Title: "High latency", Status: "triggered", Urgency: "high"},
		{ID: "Q2", Title: "Probe failing", Status: "triggered", Urgency: "low"},
	}}

	out, err := execute(t, "incidents", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Q1")
	assert.Contains(t, out, "High latency")
	assert.Contains(t, out, "Probe failing")
}

func TestIncidentsListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer resetIncidentFlags()
	incidentManager = &fakeIncidentManager{}

	out, err := execute(t, "incidents", "list", "--status", "resolved")
	require.NoError(t, err)
	assert.Contains(t, out, "No resolved incidents.")
}

func TestIncidentsResolveCmd(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	defer resetIncidentFlags()
	mgr := &fakeIncidentManager{}
	incidentManager = mgr

	out, err := execute(t, "incidents", "resolve", "Q1")
	require.NoError(t, err)
	assert.Contains(t, out, "Incident Q1 is resolved")
	assert.Equal(t, []string{"Q1"}, mgr.resolved)
}

func TestIncidentsCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	incidentManager = nil

	_, err := execute(t, "incidents", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGERDUTY_API_KEY")
}

func TestAnnounceCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices(&fakeOrchestrator{})
	defer cleanup()
	announcer = nil

	_, err := execute(t, "announce", "My App", "https://my-app.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
