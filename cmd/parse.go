package cmd

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/jsonutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	parseFormat string
	parseDump   bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a workflow or package and print its graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := registry.Parse(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if parseDump {
			dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
			dumper.Fdump(out, doc)
			return nil
		}

		switch parseFormat {
		case "text":
			printDocument(out, doc)
			return nil
		case "json":
			data, err := jsonutil.Marshal(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		case "yaml":
			data, err := yaml.Marshal(newYAMLDocument(doc))
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
		return fmt.Errorf("%w: output format %q", errors.ErrInvalidArgument, parseFormat)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "text", "Output format: text, json or yaml")
	parseCmd.Flags().BoolVar(&parseDump, "dump", false, "Dump the parsed document structure")
	rootCmd.AddCommand(parseCmd)
}

func printDocument(w io.Writer, doc *workflow.Document) {
	fmt.Fprintf(w, "Document: %s (%s)\n", doc.Name, doc.Schema)
	if doc.Alteryx != nil {
		fmt.Fprintf(w, "Version:  %s\n", doc.Alteryx.Version)
	}
	if doc.Odi != nil {
		fmt.Fprintf(w, "Version:  %s\n", doc.Odi.Version)
		fmt.Fprintf(w, "Steps: %d  Scenarios: %d  Interfaces: %d  Variables: %d\n",
			len(doc.Odi.Steps), len(doc.Odi.Scenarios), len(doc.Odi.Interfaces), len(doc.Odi.Variables))
	}
	fmt.Fprintf(w, "Nodes: %d  Edges: %d\n", doc.Graph.NodeCount(), doc.Graph.EdgeCount())

	for _, n := range doc.Graph.Nodes {
		fmt.Fprintf(w, "  %-6s %s", n.ID, n.TypeTag)
		if n.Annotation != "" {
			fmt.Fprintf(w, "  %q", n.Annotation)
		}
		fmt.Fprintln(w)
	}
	for _, e := range doc.Graph.Edges {
		fmt.Fprintf(w, "  %s -> %s\n", e.From, e.To)
	}
}

// yamlNode mirrors workflow.Node with the configuration as an ordered mapping
type yamlNode struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Annotation string            `yaml:"annotation,omitempty"`
	Position   workflow.Position `yaml:"position"`
	Config     *yaml.Node        `yaml:"config,omitempty"`
}

type yamlDocument struct {
	Schema    workflow.Schema       `yaml:"schema"`
	Path      string                `yaml:"path,omitempty"`
	Name      string                `yaml:"name"`
	Nodes     []yamlNode            `yaml:"nodes"`
	Edges     []workflow.Edge       `yaml:"edges"`
	Alteryx   *workflow.AlteryxInfo `yaml:"alteryx,omitempty"`
	Constants *yaml.Node            `yaml:"constants,omitempty"`
	Odi       *workflow.OdiInfo     `yaml:"odi,omitempty"`
}

func newYAMLDocument(doc *workflow.Document) yamlDocument {
	out := yamlDocument{
		Schema:  doc.Schema,
		Path:    doc.Path,
		Name:    doc.Name,
		Nodes:   make([]yamlNode, 0, len(doc.Graph.Nodes)),
		Edges:   doc.Graph.Edges,
		Alteryx: doc.Alteryx,
		Odi:     doc.Odi,
	}
	if out.Edges == nil {
		out.Edges = []workflow.Edge{}
	}
	for _, n := range doc.Graph.Nodes {
		out.Nodes = append(out.Nodes, yamlNode{
			ID:         n.ID,
			Type:       n.TypeTag,
			Annotation: n.Annotation,
			Position:   n.Position,
			Config:     configMapping(n.Config),
		})
	}
	if doc.Alteryx != nil {
		out.Constants = configMapping(doc.Alteryx.Constants)
	}
	return out
}

// configMapping returns nil for an empty configuration so omitempty drops it
func configMapping(c *workflow.Config) *yaml.Node {
	if c == nil || c.Len() == 0 {
		return nil
	}
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for pair := c.Oldest(); pair != nil; pair = pair.Next() {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Value},
		)
	}
	return m
}
