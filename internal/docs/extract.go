package docs

import (
	"path/filepath"
	"slices"

	"github.com/deploymenttheory/go-etl-bridge/internal/mapping"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

var (
	inputTools  = map[string]bool{"DbFileInput": true, "TextInput": true, "BrowseV2": true}
	outputTools = map[string]bool{"DbFileOutput": true, "Output": true}
	macroTools  = map[string]bool{"ToolContainer": true, "MacroInput": true, "MacroOutput": true}
)

// Tool summarises one workflow node
type Tool struct {
	ID         string
	Plugin     string
	Annotation string
}

// Short returns the plugin's short name
func (t Tool) Short() string {
	return mapping.ShortName(t.Plugin)
}

// Label is the annotation, or the plugin name when there is none
func (t Tool) Label() string {
	if t.Annotation != "" {
		return t.Annotation
	}
	return t.Plugin
}

// Constant is a workflow level constant
type Constant struct {
	Name  string
	Value string
}

// WorkflowMetadata is the documentation view of a visual workflow
type WorkflowMetadata struct {
	Name        string
	File        string
	Version     string
	Macro       string
	Description string
	Author      string
	Connections int
	Tools       []Tool
	Inputs      []Tool
	Outputs     []Tool
	Macros      []Tool
	Constants   []Constant
}

// ExtractWorkflow builds workflow metadata from a parsed document
func ExtractWorkflow(doc *workflow.Document) WorkflowMetadata {
	meta := WorkflowMetadata{
		Name:        doc.Name,
		File:        filepath.Base(doc.Path),
		Connections: doc.Graph.EdgeCount(),
	}
	if doc.Path == "" {
		meta.File = doc.Name
	}

	if info := doc.Alteryx; info != nil {
		meta.Version = info.Version
		meta.Macro = info.Macro
		meta.Description = info.Description
		meta.Author = info.Author
		if info.Constants != nil {
			for p := info.Constants.Oldest(); p != nil; p = p.Next() {
				meta.Constants = append(meta.Constants, Constant{Name: p.Key, Value: p.Value})
			}
		}
	}

	for _, n := range doc.Graph.Nodes {
		t := Tool{ID: n.ID, Plugin: n.TypeTag, Annotation: n.Annotation}
		meta.Tools = append(meta.Tools, t)

		short := t.Short()
		switch {
		case inputTools[short]:
			meta.Inputs = append(meta.Inputs, t)
		case outputTools[short]:
			meta.Outputs = append(meta.Outputs, t)
		case macroTools[short]:
			meta.Macros = append(meta.Macros, t)
		}
	}
	return meta
}

// Transition is a conditional move between two steps
type Transition struct {
	From string
	To   string
}

// ExecutionFlow describes how a package runs its steps
type ExecutionFlow struct {
	FirstStep string
	Order     []string
	Success   []Transition
	Failure   []Transition
}

// PackageMetadata is the documentation view of a package
type PackageMetadata struct {
	Name        string
	File        string
	Version     string
	Description string
	Project     string
	Folder      string
	Steps       int
	Scenarios   int
	Interfaces  int
	Variables   []workflow.Variable
	Flow        ExecutionFlow
	Sources     []string
	Targets     []string
}

// ExtractPackage builds package metadata from a parsed document
func ExtractPackage(doc *workflow.Document) PackageMetadata {
	meta := PackageMetadata{
		Name: doc.Name,
		File: filepath.Base(doc.Path),
	}
	if doc.Path == "" {
		meta.File = doc.Name
	}

	info := doc.Odi
	if info == nil {
		return meta
	}

	meta.Version = info.Version
	meta.Description = info.Description
	meta.Project = info.Project
	meta.Folder = info.Folder
	meta.Steps = len(info.Steps)
	meta.Scenarios = len(info.Scenarios)
	meta.Interfaces = len(info.Interfaces)
	meta.Variables = info.Variables
	meta.Flow = executionFlow(info.Steps)

	for _, iface := range info.Interfaces {
		if iface.SourceTable != "" {
			meta.Sources = appendUnique(meta.Sources, iface.SourceSchema+"."+iface.SourceTable)
		}
		if iface.TargetTable != "" {
			meta.Targets = appendUnique(meta.Targets, iface.TargetSchema+"."+iface.TargetTable)
		}
	}
	return meta
}

// Branch pairs a step with its success and failure targets
type Branch struct {
	From    string
	Success string
	Failure string
}

// Branches lists, in step order, every step that has a conditional target
func (f ExecutionFlow) Branches() []Branch {
	success := map[string]string{}
	for _, t := range f.Success {
		success[t.From] = t.To
	}
	failure := map[string]string{}
	for _, t := range f.Failure {
		failure[t.From] = t.To
	}

	var out []Branch
	for _, name := range f.Order {
		ok, failed := success[name], failure[name]
		if ok != "" || failed != "" {
			out = append(out, Branch{From: name, Success: ok, Failure: failed})
		}
	}
	return out
}

func executionFlow(steps []workflow.Step) ExecutionFlow {
	var flow ExecutionFlow
	if len(steps) == 0 {
		return flow
	}

	flow.FirstStep = steps[0].Name
	for _, s := range steps {
		flow.Order = append(flow.Order, s.Name)
		if s.OnSuccess != "" {
			flow.Success = append(flow.Success, Transition{From: s.Name, To: s.OnSuccess})
		}
		if s.OnFailure != "" {
			flow.Failure = append(flow.Failure, Transition{From: s.Name, To: s.OnFailure})
		}
	}
	return flow
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
