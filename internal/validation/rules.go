package validation

import (
	"fmt"
	"regexp"

	"github.com/deploymenttheory/go-etl-bridge/internal/mapping"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

var (
	hardcodedDate   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	hardcodedServer = regexp.MustCompile(`\b\w+(?:\.\w+)+:\d+\b`)
)

const (
	missingAnnotationThreshold = 0.5
	detailsLimit               = 80
)

// sinkTools are tool short names that only consume data
var sinkTools = map[string]bool{
	"DbFileOutput": true,
	"Output":       true,
}

// Rule is a single independent check
type Rule interface {
	Name() string
	Apply(doc *workflow.Document) []Issue
}

// AlteryxRules returns the visual workflow ruleset
func AlteryxRules() []Rule {
	return []Rule{
		orphanNodeRule{},
		disconnectedOutputRule{},
		hardcodedTextRule{code: CodeHardcodedDate, what: "date", pattern: hardcodedDate},
		hardcodedTextRule{code: CodeHardcodedServer, what: "server", pattern: hardcodedServer},
		missingAnnotationsRule{},
		duplicateToolIDRule{},
		emptyConfigRule{},
	}
}

// OdiRules returns the package ruleset
func OdiRules() []Rule {
	return []Rule{
		emptyStepRule{},
		brokenFlowRule{},
		missingScenarioRule{},
	}
}

type orphanNodeRule struct{}

func (orphanNodeRule) Name() string { return "orphan_node" }

func (orphanNodeRule) Apply(doc *workflow.Document) []Issue {
	connected := map[string]bool{}
	for _, e := range doc.Graph.Edges {
		connected[e.From] = true
		connected[e.To] = true
	}

	var issues []Issue
	for _, n := range doc.Graph.Nodes {
		if n.ID != "" && !connected[n.ID] {
			issues = append(issues, Issue{
				Severity: Warning,
				Code:     CodeOrphanNode,
				Message:  "node has no connections",
				NodeID:   n.ID,
			})
		}
	}
	return issues
}

type disconnectedOutputRule struct{}

func (disconnectedOutputRule) Name() string { return "disconnected_output" }

func (disconnectedOutputRule) Apply(doc *workflow.Document) []Issue {
	destinations := map[string]bool{}
	for _, e := range doc.Graph.Edges {
		destinations[e.To] = true
	}

	var issues []Issue
	for _, n := range doc.Graph.Nodes {
		if sinkTools[mapping.ShortName(n.TypeTag)] && !destinations[n.ID] {
			issues = append(issues, Issue{
				Severity: Error,
				Code:     CodeDisconnectedOutput,
				Message:  "output node has no incoming connection",
				NodeID:   n.ID,
			})
		}
	}
	return issues
}

// hardcodedTextRule reports the first text fragment per node matching pattern
type hardcodedTextRule struct {
	code    string
	what    string
	pattern *regexp.Regexp
}

func (r hardcodedTextRule) Name() string { return "hardcoded_" + r.what }

func (r hardcodedTextRule) Apply(doc *workflow.Document) []Issue {
	var issues []Issue
	for _, n := range doc.Graph.Nodes {
		for _, t := range n.Texts {
			if !r.pattern.MatchString(t.Value) {
				continue
			}
			issues = append(issues, Issue{
				Severity: Info,
				Code:     r.code,
				Message:  fmt.Sprintf("hardcoded %s found in <%s>", r.what, t.Source),
				NodeID:   n.ID,
				Details:  truncate(t.Value, detailsLimit),
			})
			break
		}
	}
	return issues
}

type missingAnnotationsRule struct{}

func (missingAnnotationsRule) Name() string { return "missing_annotations" }

func (missingAnnotationsRule) Apply(doc *workflow.Document) []Issue {
	total := doc.Graph.NodeCount()
	if total == 0 {
		return nil
	}

	missing := 0
	for _, n := range doc.Graph.Nodes {
		if n.Annotation == "" {
			missing++
		}
	}

	ratio := float64(missing) / float64(total)
	if ratio <= missingAnnotationThreshold {
		return nil
	}
	return []Issue{{
		Severity: Warning,
		Code:     CodeMissingAnnotations,
		Message:  fmt.Sprintf("%d/%d nodes have no annotation (%.0f%%)", missing, total, ratio*100),
	}}
}

type duplicateToolIDRule struct{}

func (duplicateToolIDRule) Name() string { return "duplicate_tool_id" }

func (duplicateToolIDRule) Apply(doc *workflow.Document) []Issue {
	counts := map[string]int{}
	var order []string
	for _, n := range doc.Graph.Nodes {
		if counts[n.ID] == 0 {
			order = append(order, n.ID)
		}
		counts[n.ID]++
	}

	var issues []Issue
	for _, id := range order {
		if c := counts[id]; c > 1 {
			issues = append(issues, Issue{
				Severity: Error,
				Code:     CodeDuplicateToolID,
				Message:  fmt.Sprintf("ToolID used by %d nodes", c),
				NodeID:   id,
			})
		}
	}
	return issues
}

type emptyConfigRule struct{}

func (emptyConfigRule) Name() string { return "empty_config" }

func (emptyConfigRule) Apply(doc *workflow.Document) []Issue {
	var issues []Issue
	for _, n := range doc.Graph.Nodes {
		if n.TypeTag != "" && !n.HasConfig() {
			issues = append(issues, Issue{
				Severity: Warning,
				Code:     CodeEmptyConfig,
				Message:  "empty configuration for " + n.TypeTag,
				NodeID:   n.ID,
			})
		}
	}
	return issues
}

type emptyStepRule struct{}

func (emptyStepRule) Name() string { return "empty_step" }

func (emptyStepRule) Apply(doc *workflow.Document) []Issue {
	if doc.Odi == nil {
		return nil
	}
	var issues []Issue
	for _, s := range doc.Odi.Steps {
		if s.Command == "" && s.ScenarioRef == "" {
			issues = append(issues, Issue{
				Severity: Warning,
				Code:     CodeEmptyStep,
				Message:  fmt.Sprintf("step %q has neither a command nor a scenario", s.Name),
				NodeID:   s.Name,
			})
		}
	}
	return issues
}

// brokenFlowRule checks both success and failure targets
type brokenFlowRule struct{}

func (brokenFlowRule) Name() string { return "broken_flow" }

func (brokenFlowRule) Apply(doc *workflow.Document) []Issue {
	if doc.Odi == nil {
		return nil
	}
	names := doc.Odi.StepNames()

	var issues []Issue
	for _, s := range doc.Odi.Steps {
		if _, ok := names[s.OnSuccess]; s.OnSuccess != "" && !ok {
			issues = append(issues, Issue{
				Severity: Error,
				Code:     CodeBrokenFlow,
				Message:  fmt.Sprintf("step %q continues to missing step %q", s.Name, s.OnSuccess),
				NodeID:   s.Name,
			})
		}
		if _, ok := names[s.OnFailure]; s.OnFailure != "" && !ok {
			issues = append(issues, Issue{
				Severity: Error,
				Code:     CodeBrokenFailureFlow,
				Message:  fmt.Sprintf("step %q falls back to missing step %q", s.Name, s.OnFailure),
				NodeID:   s.Name,
			})
		}
	}
	return issues
}

type missingScenarioRule struct{}

func (missingScenarioRule) Name() string { return "missing_scenario" }

func (missingScenarioRule) Apply(doc *workflow.Document) []Issue {
	if doc.Odi == nil {
		return nil
	}
	scenarios := doc.Odi.ScenarioNames()

	var issues []Issue
	for _, s := range doc.Odi.Steps {
		if _, ok := scenarios[s.ScenarioRef]; s.ScenarioRef != "" && !ok {
			issues = append(issues, Issue{
				Severity: Warning,
				Code:     CodeMissingScenario,
				Message:  fmt.Sprintf("step %q references undeclared scenario %q", s.Name, s.ScenarioRef),
				NodeID:   s.Name,
			})
		}
	}
	return issues
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
