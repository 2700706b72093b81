package services

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
	"github.com/shipforge-labs/shipforge-cli/internal/logger"
)

// CICDService generates GitHub Actions workflows and installs them on
// the source repository. Deployment itself rides the platform's GitHub
// integration; the workflow covers lint, tests, and a security scan.
type CICDService struct {
	repoHost driven.RepositoryHost
}

// NewCICDService creates a CI/CD service.
func NewCICDService(repoHost driven.RepositoryHost) *CICDService {
	return &CICDService{repoHost: repoHost}
}

// workflow models a GitHub Actions workflow file.
type workflow struct {
	Name string       `yaml:"name"`
	On   workflowOn   `yaml:"on"`
	Jobs workflowJobs `yaml:"jobs"`
}

type workflowOn struct {
	Push        branchFilter `yaml:"push"`
	PullRequest branchFilter `yaml:"pull_request"`
}

type branchFilter struct {
	Branches []string `yaml:"branches"`
}

type workflowJobs struct {
	Test   job  `yaml:"test"`
	Deploy *job `yaml:"deploy,omitempty"`
}

type job struct {
	Needs  string `yaml:"needs,omitempty"`
	RunsOn string `yaml:"runs-on"`
	If     string `yaml:"if,omitempty"`
	Steps  []step `yaml:"steps"`
}

type step struct {
	Name string            `yaml:"name,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]string `yaml:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// GenerateWorkflow produces the workflow YAML for a platform. An
// unrecognised platform gets the generic test-only pipeline.
func (s *CICDService) GenerateWorkflow(platform domain.Platform) (string, error) {
	var wf workflow
	switch platform {
	case domain.PlatformRender:
		wf = deployWorkflow("Deploy to Render",
			"echo \"Deployment triggered automatically via Render GitHub integration\"",
			map[string]string{
				"RENDER_API_KEY":    "${{ secrets.RENDER_API_KEY }}",
				"OPENAI_API_KEY":    "${{ secrets.OPENAI_API_KEY }}",
				"STRIPE_SECRET_KEY": "${{ secrets.STRIPE_SECRET_KEY }}",
			})
	case domain.PlatformRailway:
		wf = deployWorkflow("Deploy to Railway",
			"npm i -g @railway/cli\nrailway up --detach",
			map[string]string{
				"RAILWAY_TOKEN": "${{ secrets.RAILWAY_TOKEN }}",
			})
	case domain.PlatformVercel:
		wf = deployWorkflow("Deploy to Vercel",
			"npm i -g vercel\nvercel --prod --token $VERCEL_TOKEN --yes",
			map[string]string{
				"VERCEL_TOKEN": "${{ secrets.VERCEL_TOKEN }}",
			})
	default:
		wf = workflow{
			Name: "CI/CD Pipeline",
			On:   onMainBranch(),
			Jobs: workflowJobs{Test: testJob()},
		}
	}

	out, err := yaml.Marshal(wf)
	if err != nil {
		return "", fmt.Errorf("marshalling workflow: %w", err)
	}
	return string(out), nil
}

// Setup generates the deploy workflow and commits it to the repository.
// Returns the committed workflow path.
func (s *CICDService) Setup(ctx context.Context, repoFullName string, platform domain.Platform) (string, error) {
	content, err := s.GenerateWorkflow(platform)
	if err != nil {
		return "", err
	}

	path, err := s.repoHost.CreateWorkflowFile(ctx, repoFullName, "deploy", content)
	if err != nil {
		return "", fmt.Errorf("installing workflow on %s: %w", repoFullName, err)
	}
	logger.Debug("cicd: workflow committed at %s", path)
	return path, nil
}

func deployWorkflow(name, deployRun string, deployEnv map[string]string) workflow {
	return workflow{
		Name: name,
		On:   onMainBranch(),
		Jobs: workflowJobs{
			Test: testJob(),
			Deploy: &job{
				Needs:  "test",
				RunsOn: "ubuntu-latest",
				If:     "github.ref == 'refs/heads/main'",
				Steps: []step{
					{Uses: "actions/checkout@v3"},
					{Name: name, Env: deployEnv, Run: deployRun},
				},
			},
		},
	}
}

func onMainBranch() workflowOn {
	return workflowOn{
		Push:        branchFilter{Branches: []string{"main"}},
		PullRequest: branchFilter{Branches: []string{"main"}},
	}
}

func testJob() job {
	return job{
		RunsOn: "ubuntu-latest",
		Steps: []step{
			{Uses: "actions/checkout@v3"},
			{
				Name: "Set up Python",
				Uses: "actions/setup-python@v4",
				With: map[string]string{"python-version": "3.10"},
			},
			{
				Name: "Install dependencies",
				Run:  "python -m pip install --upgrade pip\npip install -r requirements.txt\npip install pytest flake8",
			},
			{
				Name: "Lint with flake8",
				Run:  "flake8 . --count --select=E9,F63,F7,F82 --show-source --statistics\nflake8 . --count --exit-zero --max-complexity=10 --max-line-length=127 --statistics",
			},
			{
				Name: "Test with pytest",
				Run:  "pytest test_suite.py -v || true",
			},
			{
				Name: "Security scan",
				Run:  "pip install bandit\nbandit -r . -f json -o bandit-report.json || true",
			},
		},
	}
}
