package usecase_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
	"github.com/trebuchet-org/treb-sequencer/internal/usecase"
)

func planIssues(t *testing.T, err error) []domain.PlanIssue {
	t.Helper()
	var verr domain.PlanValidationErr
	require.True(t, errors.As(err, &verr), "expected PlanValidationErr, got %v", err)
	return verr.Issues
}

func TestValidatePlan(t *testing.T) {
	deploy := func(name string, args ...models.Argument) models.Step {
		return models.Step{Name: name, Kind: models.StepDeploy, Contract: name, Args: args}
	}

	tests := []struct {
		name       string
		steps      []models.Step
		wantErr    string
		suggestion string
	}{
		{
			name:  "valid plan",
			steps: dexPlan(),
		},
		{
			name:    "empty plan",
			wantErr: "plan has no steps",
		},
		{
			name:    "duplicate names",
			steps:   []models.Step{deploy("Token"), deploy("Token")},
			wantErr: "duplicate step name",
		},
		{
			name:    "missing name",
			steps:   []models.Step{{Kind: models.StepDeploy, Contract: "Token"}},
			wantErr: "step #1: step name is required",
		},
		{
			name:    "unknown kind",
			steps:   []models.Step{{Name: "x", Kind: "upgrade"}},
			wantErr: `unknown step kind "upgrade"`,
		},
		{
			name:    "deploy without contract",
			steps:   []models.Step{{Name: "Token", Kind: models.StepDeploy}},
			wantErr: "must name a contract",
		},
		{
			name: "call without method",
			steps: []models.Step{
				deploy("Token"),
				{Name: "fund", Kind: models.StepCall, Target: "Token"},
			},
			wantErr: "must name a method",
		},
		{
			name:    "call without target",
			steps:   []models.Step{{Name: "fund", Kind: models.StepCall, Method: "transfer"}},
			wantErr: "must name a target",
		},
		{
			name:    "self reference",
			steps:   []models.Step{deploy("Token", models.Ref("Token"))},
			wantErr: "step references itself",
		},
		{
			name:    "forward reference",
			steps:   []models.Step{deploy("Pool", models.Ref("Token")), deploy("Token")},
			wantErr: `references "Token" which runs later`,
		},
		{
			name: "forward call target",
			steps: []models.Step{
				{Name: "fund", Kind: models.StepCall, Target: "Token", Method: "transfer"},
				deploy("Token"),
			},
			wantErr: "runs later",
		},
		{
			name:       "unknown reference with suggestion",
			steps:      []models.Step{deploy("Balloons"), deploy("DEX", models.Ref("Baloons"))},
			wantErr:    `references unknown step "Baloons"`,
			suggestion: "Balloons",
		},
		{
			name:    "reference without name",
			steps:   []models.Step{deploy("Token", models.Argument{Kind: models.ArgReference})},
			wantErr: "ref argument without a name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := usecase.ValidatePlan(tt.steps)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.suggestion != "" {
				issues := planIssues(t, err)
				assert.Equal(t, tt.suggestion, issues[0].Suggestion)
				assert.Contains(t, err.Error(), `did you mean "Balloons"?`)
			}
		})
	}

	t.Run("collects every issue", func(t *testing.T) {
		err := usecase.ValidatePlan([]models.Step{
			{Name: "a", Kind: models.StepDeploy},
			{Name: "a", Kind: models.StepCall},
		})
		issues := planIssues(t, err)
		assert.Len(t, issues, 4)
		assert.Contains(t, err.Error(), "4 problems found")
	})
}
