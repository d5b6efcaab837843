package validation

import (
	"fmt"

	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/parser"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// Validator runs a ruleset against documents read by one parser
type Validator struct {
	parser parser.Parser
	rules  []Rule
}

// New creates a validator. Extra rules run after the built in ones.
func New(p parser.Parser, rules []Rule, extra ...Rule) *Validator {
	all := append(append([]Rule(nil), rules...), extra...)
	return &Validator{parser: p, rules: all}
}

// NewAlteryx creates a validator for visual workflows
func NewAlteryx(cache *parser.Cache, extra ...Rule) *Validator {
	return New(parser.NewAlteryxParser(cache), AlteryxRules(), extra...)
}

// NewOdi creates a validator for packages
func NewOdi(cache *parser.Cache, extra ...Rule) *Validator {
	return New(parser.NewOdiParser(cache), OdiRules(), extra...)
}

// Rules returns the rule names in execution order
func (v *Validator) Rules() []string {
	names := make([]string, 0, len(v.rules))
	for _, r := range v.rules {
		names = append(names, r.Name())
	}
	return names
}

// Validate parses path and applies every rule. A parse failure yields a
// single PARSE_ERROR issue and no rule runs.
func (v *Validator) Validate(path string) *Result {
	doc, err := v.parser.Parse(path)
	if err != nil {
		logger.LogWarn("Validation could not parse document", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return &Result{
			Path: path,
			Issues: []Issue{{
				Severity: Error,
				Code:     CodeParseError,
				Message:  fmt.Sprintf("failed to parse %s document: %v", v.parser.Schema(), err),
			}},
		}
	}
	return v.ValidateDocument(doc)
}

// ValidateDocument applies every rule to an already parsed document
func (v *Validator) ValidateDocument(doc *workflow.Document) *Result {
	result := &Result{Path: doc.Path, Issues: []Issue{}}
	if result.Path == "" {
		result.Path = doc.Name
	}

	for _, rule := range v.rules {
		result.Issues = append(result.Issues, rule.Apply(doc)...)
	}

	logger.LogInfo("Validation complete", map[string]interface{}{
		"path":     result.Path,
		"errors":   result.ErrorCount(),
		"warnings": result.WarningCount(),
		"info":     result.InfoCount(),
	})
	return result
}
