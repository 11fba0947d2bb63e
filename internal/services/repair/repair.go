// -----------------------------------------------------------------------
// Repair loop - single-pass model-output correction with fallback
// -----------------------------------------------------------------------

package repair

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/schema"
	"github.com/ternarybob/quaestio/internal/services/llm"
)

// Spec describes how to parse, validate, and repair one kind of model output.
type Spec[T any] struct {
	// Name identifies the output kind in logs and warnings
	Name string

	// Parse converts raw model output into the target type
	Parse func(raw string) (T, error)

	// Validate returns schema issues for a parsed value; empty means valid
	Validate func(value T) []schema.Issue

	// BuildPrompt constructs the repair request from the faulty output and
	// its issues
	BuildPrompt func(raw string, issues []schema.Issue) []interfaces.Part

	// Options are the generation options for the repair call
	Options interfaces.GenerateOptions
}

// Run parses and validates raw model output, issuing at most one repair call
// when validation fails. The repaired output is accepted only if it parses
// and carries strictly fewer issues than the original; otherwise the original
// value is kept and its issues surface as warnings. Valid input passes
// through untouched with no model call.
func Run[T any](ctx context.Context, service interfaces.LLMService, logger arbor.ILogger, raw string, spec Spec[T]) (T, []string, error) {
	var zero T

	value, parseErr := spec.Parse(raw)
	var issues []schema.Issue
	if parseErr == nil {
		issues = spec.Validate(value)
		if len(issues) == 0 {
			return value, nil, nil
		}
	} else {
		issues = []schema.Issue{{Field: spec.Name, Message: parseErr.Error()}}
	}

	logger.Debug().
		Str("output", spec.Name).
		Int("issue_count", len(issues)).
		Msg("Model output failed validation, attempting repair")

	repairedRaw, err := service.Generate(ctx, spec.BuildPrompt(raw, issues), spec.Options)
	if err != nil {
		if parseErr != nil {
			return zero, nil, fmt.Errorf("repair call for %s failed: %w", spec.Name, err)
		}
		logger.Warn().
			Str("output", spec.Name).
			Err(err).
			Msg("Repair call failed, keeping original output")
		return value, warningsFrom(spec.Name, issues), nil
	}

	repaired, repairedParseErr := spec.Parse(repairedRaw)
	if repairedParseErr != nil {
		if parseErr != nil {
			return zero, nil, llm.NewError(llm.KindParse,
				fmt.Errorf("%s unparseable before and after repair: %w", spec.Name, repairedParseErr))
		}
		logger.Warn().
			Str("output", spec.Name).
			Err(repairedParseErr).
			Msg("Repaired output unparseable, keeping original")
		return value, warningsFrom(spec.Name, issues), nil
	}

	repairedIssues := spec.Validate(repaired)

	// Accept the repair only on strict improvement; equal-or-worse repairs
	// are discarded so a bad repair can never replace a better original.
	if parseErr == nil && len(repairedIssues) >= len(issues) {
		logger.Warn().
			Str("output", spec.Name).
			Int("original_issues", len(issues)).
			Int("repaired_issues", len(repairedIssues)).
			Msg("Repair did not improve output, keeping original")
		return value, warningsFrom(spec.Name, issues), nil
	}

	if len(repairedIssues) > 0 {
		logger.Debug().
			Str("output", spec.Name).
			Int("remaining_issues", len(repairedIssues)).
			Msg("Repair improved output with residual issues")
		return repaired, warningsFrom(spec.Name, repairedIssues), nil
	}

	return repaired, nil, nil
}

func warningsFrom(name string, issues []schema.Issue) []string {
	warnings := make([]string, 0, len(issues))
	for _, issue := range issues {
		warnings = append(warnings, fmt.Sprintf("%s: %s", name, issue.String()))
	}
	return warnings
}
