package converter

import (
	"fmt"
	"strconv"

	"github.com/deploymenttheory/go-etl-bridge/internal/serializer"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

const (
	// StepIDPrefix is prepended to a tool id to form its step name
	StepIDPrefix = "Step_"

	flowPort   = "Flow"
	outputPort = "Output"
	inputPort  = "Input"

	// Canvas layout for generated workflows
	originX  = 150
	spacingX = 200
	originY  = 200
)

// StepID derives the package step name for a tool id
func StepID(toolID string) string {
	return StepIDPrefix + toolID
}

// forward maps every node through the table and re-targets every source
// edge, including edges whose endpoints were not emitted.
func (c *Converter) forward(src *workflow.Document) (*workflow.Document, Stats, []string) {
	info := &workflow.OdiInfo{
		Version:     serializer.DefaultOdiVersion,
		Description: "Converted from Alteryx workflow: " + src.Name,
		Steps:       []workflow.Step{},
		Scenarios:   []workflow.Scenario{},
		Interfaces:  []workflow.Interface{},
		Variables:   []workflow.Variable{},
	}
	dst := &workflow.Document{Schema: workflow.SchemaOdi, Name: src.Name, Odi: info}

	var stats Stats
	var warnings []string

	for _, n := range src.Graph.Nodes {
		stepType, ok := c.table.StepType(n.TypeTag)
		if !ok {
			stats.Skipped++
			if n.TypeTag != "" {
				warnings = append(warnings, fmt.Sprintf("tool has no package mapping: %s (ToolID: %s)", n.TypeTag, n.ID))
			}
			continue
		}

		step := workflow.NewNode(StepID(n.ID), stepType)
		step.Annotation = n.Annotation
		step.Config = workflow.CloneConfig(n.Config)
		dst.Graph.AddNode(step)
		info.Steps = append(info.Steps, workflow.Step{Name: step.ID, Type: stepType, Annotation: n.Annotation})
		stats.Converted++
	}

	for _, e := range src.Graph.Edges {
		dst.Graph.AddEdge(workflow.Edge{
			From:     StepID(e.From),
			FromPort: flowPort,
			To:       StepID(e.To),
			ToPort:   flowPort,
		})
	}
	stats.Edges = len(src.Graph.Edges)

	return dst, stats, warnings
}

// reverse assigns dense ids to mapped steps in source order and links them in
// a single chain. Branches in the source flow are not reproduced.
func (c *Converter) reverse(src *workflow.Document) (*workflow.Document, Stats, []string) {
	info := &workflow.AlteryxInfo{
		Version:     serializer.DefaultAlteryxVersion,
		MetaName:    src.Name,
		Description: "Converted from ODI package: " + src.Name,
		Constants:   workflow.NewConfig(),
	}
	dst := &workflow.Document{Schema: workflow.SchemaAlteryx, Name: src.Name, Alteryx: info}

	var stats Stats
	var warnings []string

	for _, n := range src.Graph.Nodes {
		plugin, ok := c.table.Plugin(n.TypeTag)
		if !ok {
			stats.Skipped++
			if n.TypeTag != "" {
				warnings = append(warnings, fmt.Sprintf("step has no workflow mapping: %s (%s)", n.TypeTag, n.ID))
			}
			continue
		}

		stats.Converted++
		seq := stats.Converted
		node := workflow.NewNode(strconv.Itoa(seq), plugin)
		node.Position = workflow.Position{X: float64(originX + spacingX*(seq-1)), Y: originY}
		node.Annotation = n.Annotation
		if node.Annotation == "" {
			node.Annotation = n.ID
		}
		dst.Graph.AddNode(node)
	}

	for i := 1; i < stats.Converted; i++ {
		dst.Graph.AddEdge(workflow.Edge{
			From:     strconv.Itoa(i),
			FromPort: outputPort,
			To:       strconv.Itoa(i + 1),
			ToPort:   inputPort,
		})
	}
	stats.Edges = max(0, stats.Converted-1)

	return dst, stats, warnings
}
