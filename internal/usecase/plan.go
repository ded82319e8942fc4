package usecase

import (
	"fmt"

	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/treb-sequencer/internal/domain"
	"github.com/trebuchet-org/treb-sequencer/internal/domain/models"
)

// ValidatePlan checks that steps form a runnable plan: non-empty, unique names,
// well-formed steps, and every reference pointing at a step that runs earlier.
// It returns a domain.PlanValidationErr listing every problem found.
func ValidatePlan(steps []models.Step) error {
	if len(steps) == 0 {
		return domain.PlanValidationErr{Issues: []domain.PlanIssue{{Step: "plan", Message: "plan has no steps"}}}
	}

	all := make([]string, 0, len(steps))
	position := make(map[string]int, len(steps))
	for i, step := range steps {
		all = append(all, step.Name)
		if _, dup := position[step.Name]; !dup {
			position[step.Name] = i
		}
	}

	var issues []domain.PlanIssue
	seen := make(map[string]bool, len(steps))

	for i, step := range steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step #%d", i+1)
			issues = append(issues, domain.PlanIssue{Step: name, Message: "step name is required"})
		} else if seen[name] {
			issues = append(issues, domain.PlanIssue{Step: name, Message: "duplicate step name"})
		}

		switch step.Kind {
		case models.StepDeploy:
			if step.Contract == "" {
				issues = append(issues, domain.PlanIssue{Step: name, Message: "deploy step must name a contract"})
			}
		case models.StepCall:
			if step.Target == "" {
				issues = append(issues, domain.PlanIssue{Step: name, Message: "call step must name a target step"})
			}
			if step.Method == "" {
				issues = append(issues, domain.PlanIssue{Step: name, Message: "call step must name a method"})
			}
		default:
			issues = append(issues, domain.PlanIssue{Step: name, Message: fmt.Sprintf("unknown step kind %q", step.Kind)})
		}

		for _, arg := range step.Args {
			if (arg.Kind == models.ArgReference || arg.Kind == models.ArgAccount) && arg.Name == "" {
				issues = append(issues, domain.PlanIssue{Step: name, Message: fmt.Sprintf("%s argument without a name", arg.Kind)})
			}
		}

		for _, ref := range step.References() {
			if ref == "" {
				continue
			}
			switch {
			case ref == step.Name:
				issues = append(issues, domain.PlanIssue{Step: name, Message: "step references itself"})
			case seen[ref]:
				// runs earlier, fine
			default:
				if _, later := position[ref]; later {
					issues = append(issues, domain.PlanIssue{
						Step:    name,
						Message: fmt.Sprintf("references %q which runs later in the plan", ref),
					})
				} else {
					issues = append(issues, domain.PlanIssue{
						Step:       name,
						Message:    fmt.Sprintf("references unknown step %q", ref),
						Suggestion: suggestStep(ref, all[:i]),
					})
				}
			}
		}

		if step.Name != "" {
			seen[step.Name] = true
		}
	}

	if len(issues) > 0 {
		return domain.PlanValidationErr{Issues: issues}
	}
	return nil
}

// suggestStep returns the closest earlier step name to an unknown reference
func suggestStep(ref string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	matches := fuzzy.Find(ref, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
