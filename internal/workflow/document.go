package workflow

import (
	"fmt"
	"strings"
)

// Schema identifies one of the two supported document schemas
type Schema string

const (
	// SchemaAlteryx is the visual ETL tool's workflow schema (AlteryxDocument)
	SchemaAlteryx Schema = "alteryx"

	// SchemaOdi is the data-integration engine's package schema (OdiPackage)
	SchemaOdi Schema = "odi"
)

// ParseSchema resolves a schema name, accepting a few common aliases
func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alteryx", "yxmd", "workflow":
		return SchemaAlteryx, nil
	case "odi", "package":
		return SchemaOdi, nil
	}
	return "", fmt.Errorf("unknown schema %q", name)
}

// Other returns the opposite schema
func (s Schema) Other() Schema {
	if s == SchemaAlteryx {
		return SchemaOdi
	}
	return SchemaAlteryx
}

// Document is a parsed workflow file. Exactly one of Alteryx or Odi is set,
// matching Schema.
type Document struct {
	Schema  Schema       `json:"schema" yaml:"schema"`
	Path    string       `json:"path,omitempty" yaml:"path,omitempty"`
	Name    string       `json:"name" yaml:"name"`
	Graph   Graph        `json:"graph" yaml:"graph"`
	Alteryx *AlteryxInfo `json:"alteryx,omitempty" yaml:"alteryx,omitempty"`
	Odi     *OdiInfo     `json:"odi,omitempty" yaml:"odi,omitempty"`
}

// AlteryxInfo is the workflow level metadata of an AlteryxDocument
type AlteryxInfo struct {
	Version     string  `json:"version" yaml:"version"`
	MetaName    string  `json:"metaName,omitempty" yaml:"metaName,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string  `json:"author,omitempty" yaml:"author,omitempty"`
	Macro       string  `json:"macro,omitempty" yaml:"macro,omitempty"`
	Constants   *Config `json:"constants" yaml:"-"`
}

// OdiInfo is the package level content of an OdiPackage
type OdiInfo struct {
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Project     string      `json:"project,omitempty" yaml:"project,omitempty"`
	Folder      string      `json:"folder,omitempty" yaml:"folder,omitempty"`
	Steps       []Step      `json:"steps" yaml:"steps"`
	Scenarios   []Scenario  `json:"scenarios" yaml:"scenarios"`
	Interfaces  []Interface `json:"interfaces" yaml:"interfaces"`
	Variables   []Variable  `json:"variables" yaml:"variables"`
}

// Step is a single package step
type Step struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Command     string `json:"command,omitempty" yaml:"command,omitempty"`
	ScenarioRef string `json:"scenarioRef,omitempty" yaml:"scenarioRef,omitempty"`
	OnSuccess   string `json:"onSuccess,omitempty" yaml:"onSuccess,omitempty"`
	OnFailure   string `json:"onFailure,omitempty" yaml:"onFailure,omitempty"`
	Annotation  string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

// Scenario is a scenario declared in a package
type Scenario struct {
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Folder      string   `json:"folder,omitempty" yaml:"folder,omitempty"`
	Variables   []string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// ColumnMapping maps one source column into a target column
type ColumnMapping struct {
	SourceColumn string `json:"sourceColumn" yaml:"sourceColumn"`
	TargetColumn string `json:"targetColumn" yaml:"targetColumn"`
	Expression   string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Interface is a source to target data movement declared in a package
type Interface struct {
	Name            string          `json:"name" yaml:"name"`
	SourceSchema    string          `json:"sourceSchema,omitempty" yaml:"sourceSchema,omitempty"`
	SourceTable     string          `json:"sourceTable,omitempty" yaml:"sourceTable,omitempty"`
	TargetSchema    string          `json:"targetSchema,omitempty" yaml:"targetSchema,omitempty"`
	TargetTable     string          `json:"targetTable,omitempty" yaml:"targetTable,omitempty"`
	IntegrationType string          `json:"integrationType,omitempty" yaml:"integrationType,omitempty"`
	Mappings        []ColumnMapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
}

// Variable is a package variable
type Variable struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// StepNames returns the set of step names in the package
func (o *OdiInfo) StepNames() map[string]struct{} {
	names := make(map[string]struct{}, len(o.Steps))
	for _, s := range o.Steps {
		names[s.Name] = struct{}{}
	}
	return names
}

// ScenarioNames returns the set of declared scenario names
func (o *OdiInfo) ScenarioNames() map[string]struct{} {
	names := make(map[string]struct{}, len(o.Scenarios))
	for _, s := range o.Scenarios {
		names[s.Name] = struct{}{}
	}
	return names
}
