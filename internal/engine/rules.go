package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"notion-forms/internal/instrument"
	"notion-forms/internal/metadata"
)

// FieldRule checks the free-text answer of every field of one property type.
// Expression is evaluated with `value` bound to the answer and reports a
// violation when it is true.
type FieldRule struct {
	Type       metadata.PropertyType
	Rule       string
	Expression string
	Message    string

	program *vm.Program
}

var ruleEnv = map[string]any{"value": ""}

var submissionRules = mustCompileRules([]*FieldRule{
	{
		Type:       metadata.PropertyTypeNumber,
		Rule:       "number",
		Expression: `not (value matches "^[0-9]+$")`,
		Message:    "This property must be a number",
	},
	{
		Type:       metadata.PropertyTypeURL,
		Rule:       "url",
		Expression: `not (value startsWith "http")`,
		Message:    "This property must be a URL",
	},
	{
		Type:       metadata.PropertyTypeEmail,
		Rule:       "email",
		Expression: `not (value contains "@")`,
		Message:    "This property must be an email address",
	},
})

// CompileRule compiles the rule's expression into a boolean program.
func CompileRule(r *FieldRule) error {
	prog, err := expr.Compile(r.Expression, expr.Env(ruleEnv), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile rule %s: %w", r.Rule, err)
	}
	r.program = prog
	return nil
}

func mustCompileRules(rules []*FieldRule) []*FieldRule {
	for _, r := range rules {
		if err := CompileRule(r); err != nil {
			panic(err)
		}
	}
	return rules
}

// EvaluateFieldRule runs a single rule against an answer. Absent or empty
// free text never fails. Returns nil if the rule passes.
func EvaluateFieldRule(rule *FieldRule, fieldID string, v metadata.RawFieldValue) *ErrorDetail {
	if v.Type != rule.Type {
		return nil
	}
	text, ok := v.Text()
	if !ok {
		return nil
	}

	result, err := expr.Run(rule.program, map[string]any{"value": text})
	if err != nil {
		log.Printf("ERROR: rule %s on field %s: %v", rule.Rule, fieldID, err)
		return &ErrorDetail{Field: fieldID, Rule: rule.Rule, Message: rule.Message}
	}
	if violated, _ := result.(bool); violated {
		return &ErrorDetail{Field: fieldID, Rule: rule.Rule, Message: rule.Message}
	}
	return nil
}

// Validate checks every answer against the submission rules and returns the
// failing fields. It has no side effects and may be called repeatedly with the
// same input.
func Validate(values metadata.Submission) metadata.ValidationErrors {
	errs := metadata.ValidationErrors{}
	for fieldID, v := range values {
		for _, r := range submissionRules {
			if detail := EvaluateFieldRule(r, fieldID, v); detail != nil {
				errs[fieldID] = detail.Message
			}
		}
	}
	return errs
}

// ValidateTraced wraps Validate in an instrumentation span.
func ValidateTraced(ctx context.Context, values metadata.Submission) metadata.ValidationErrors {
	_, span := instrument.GetInstrumenter(ctx).StartSpan(ctx, "engine", "rules", "rules.evaluate")
	defer span.End()

	errs := Validate(values)
	if len(errs) > 0 {
		span.SetStatus("error")
		span.SetMetadata("failed_fields", errs.FieldIDs())
	} else {
		span.SetStatus("ok")
	}
	return errs
}

// ValidationDetails converts validation errors into error details ordered by
// field id.
func ValidationDetails(errs metadata.ValidationErrors) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(errs))
	for _, id := range errs.FieldIDs() {
		details = append(details, ErrorDetail{Field: id, Rule: "format", Message: errs[id]})
	}
	return details
}
