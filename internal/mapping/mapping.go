// Package mapping holds the fixed type lookup tables used to translate node
// plugins into package step types and back.
package mapping

import (
	"maps"
	"slices"
	"strings"
)

const (
	// StepDataStore is the package step type for data store reads and writes
	StepDataStore = "DataStoreCommand"
	// StepProcedure is the package step type for transformation procedures
	StepProcedure = "ProcedureCommand"
	// StepOdiCommand is the package step type for engine commands
	StepOdiCommand = "OdiCommand"
	// StepVariable is the package step type for variable evaluation
	StepVariable = "VariableStep"

	pluginPrefix = "AlteryxBasePluginsGui"
)

// PluginName builds the fully qualified plugin name for a short tool name,
// e.g. "Filter" becomes "AlteryxBasePluginsGui.Filter.Filter".
func PluginName(tool string) string {
	return pluginPrefix + "." + tool + "." + tool
}

// ShortName reduces a plugin name to its last dotted segment
func ShortName(plugin string) string {
	plugin = strings.TrimSpace(plugin)
	if i := strings.LastIndex(plugin, "."); i >= 0 {
		return plugin[i+1:]
	}
	return plugin
}

var defaultForward = map[string]string{
	"DbFileInput":  StepDataStore,
	"DbFileOutput": StepDataStore,
	"Filter":       StepProcedure,
	"Formula":      StepProcedure,
	"Join":         StepProcedure,
	"Sort":         StepProcedure,
	"Summarize":    StepProcedure,
	"Union":        StepProcedure,
}

var defaultReverse = map[string]string{
	StepDataStore:  PluginName("DbFileInput"),
	StepProcedure:  PluginName("Formula"),
	StepOdiCommand: PluginName("RunCommand"),
	StepVariable:   PluginName("Formula"),
}

// Table is an immutable pair of lookup tables. The forward table is keyed by
// short tool name; the reverse table maps step types to full plugin names.
type Table struct {
	forward map[string]string
	reverse map[string]string
}

// NewTable builds a table from copies of the given maps
func NewTable(forward, reverse map[string]string) Table {
	return Table{forward: maps.Clone(forward), reverse: maps.Clone(reverse)}
}

// Default returns the built in table
func Default() Table {
	return NewTable(defaultForward, defaultReverse)
}

// StepType returns the package step type for a plugin name or short tool name
func (t Table) StepType(plugin string) (string, bool) {
	v, ok := t.forward[ShortName(plugin)]
	return v, ok && v != ""
}

// Plugin returns the full plugin name for a package step type
func (t Table) Plugin(stepType string) (string, bool) {
	v, ok := t.reverse[strings.TrimSpace(stepType)]
	return v, ok && v != ""
}

// WithoutReverse returns a copy of the table whose reverse side omits the given step types
func (t Table) WithoutReverse(stepTypes ...string) Table {
	reverse := maps.Clone(t.reverse)
	for _, s := range stepTypes {
		delete(reverse, s)
	}
	return Table{forward: t.forward, reverse: reverse}
}

// Tools returns the mapped short tool names in sorted order
func (t Table) Tools() []string {
	return slices.Sorted(maps.Keys(t.forward))
}

// StepTypes returns the mapped step types in sorted order
func (t Table) StepTypes() []string {
	return slices.Sorted(maps.Keys(t.reverse))
}
