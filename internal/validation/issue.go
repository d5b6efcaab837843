// Package validation checks parsed workflow documents for structural
// problems. Each schema has its own ruleset; rules run independently and
// report zero or more issues.
package validation

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
)

// Severity orders issues: Info < Warning < Error
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts "info", "warning" or "error" into a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return Info, nil
	case "warning", "warn":
		return Warning, nil
	case "error":
		return Error, nil
	}
	return Info, fmt.Errorf("%w: unknown severity %q", errors.ErrInvalidArgument, s)
}

// MarshalText encodes the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Issue codes
const (
	CodeParseError         = "PARSE_ERROR"
	CodeOrphanNode         = "ORPHAN_NODE"
	CodeDisconnectedOutput = "DISCONNECTED_OUTPUT"
	CodeHardcodedDate      = "HARDCODED_DATE"
	CodeHardcodedServer    = "HARDCODED_SERVER"
	CodeMissingAnnotations = "MISSING_ANNOTATIONS"
	CodeDuplicateToolID    = "DUPLICATE_TOOL_ID"
	CodeEmptyConfig        = "EMPTY_CONFIG"
	CodeEmptyStep          = "EMPTY_STEP"
	CodeBrokenFlow         = "BROKEN_FLOW"
	CodeBrokenFailureFlow  = "BROKEN_FAILURE_FLOW"
	CodeMissingScenario    = "MISSING_SCENARIO"
)

// Issue is a single finding
type Issue struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
	NodeID   string   `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`
	Details  string   `json:"details,omitempty" yaml:"details,omitempty"`
}

func (i Issue) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", strings.ToUpper(i.Severity.String()), i.Code)
	if i.NodeID != "" {
		fmt.Fprintf(&b, " (node %s)", i.NodeID)
	}
	fmt.Fprintf(&b, ": %s", i.Message)
	return b.String()
}

// Result holds the issues found in one document, in detection order
type Result struct {
	Path   string  `json:"path" yaml:"path"`
	Issues []Issue `json:"issues" yaml:"issues"`
}

// Passed reports whether no issue has error severity
func (r *Result) Passed() bool {
	return r.ErrorCount() == 0
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of error issues
func (r *Result) ErrorCount() int { return r.count(Error) }

// WarningCount returns the number of warning issues
func (r *Result) WarningCount() int { return r.count(Warning) }

// InfoCount returns the number of info issues
func (r *Result) InfoCount() int { return r.count(Info) }

// Filter returns the issues at or above min, keeping detection order
func (r *Result) Filter(min Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity >= min {
			out = append(out, i)
		}
	}
	return out
}

// Err returns an error wrapping ErrValidationFailed when the result did not pass
func (r *Result) Err() error {
	if r.Passed() {
		return nil
	}
	return fmt.Errorf("%w: %s: %d error(s), %d warning(s)", errors.ErrValidationFailed, r.Path, r.ErrorCount(), r.WarningCount())
}
