// Package workflow holds the schema independent graph model shared by the
// parsers, converter, validator and documentation exporter.
package workflow

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Config is an ordered key/value configuration map
type Config = orderedmap.OrderedMap[string, string]

// NewConfig creates an empty configuration map
func NewConfig() *Config {
	return orderedmap.New[string, string]()
}

// CloneConfig returns a copy of c that preserves key order
func CloneConfig(c *Config) *Config {
	out := NewConfig()
	if c == nil {
		return out
	}
	for pair := c.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// Position is a 2D canvas location; zero when the schema has none
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TextFragment is one piece of text or attribute content found inside a node's
// element subtree. Source is the element name, or "Element@attr" for attribute values.
type TextFragment struct {
	Source string `json:"source" yaml:"source"`
	Value  string `json:"value" yaml:"value"`
}

// Node is a typed vertex of a workflow graph
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	TypeTag    string         `json:"type" yaml:"type"`
	Config     *Config        `json:"config" yaml:"-"`
	Annotation string         `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Position   Position       `json:"position" yaml:"position"`
	Texts      []TextFragment `json:"-" yaml:"-"`
}

// NewNode creates a node with an empty configuration
func NewNode(id, typeTag string) *Node {
	return &Node{ID: id, TypeTag: typeTag, Config: NewConfig()}
}

// HasConfig reports whether the node carries at least one configuration entry
func (n *Node) HasConfig() bool {
	return n.Config != nil && n.Config.Len() > 0
}

// Edge is a directed connection between two node identifiers. Ports are opaque.
type Edge struct {
	From     string `json:"from" yaml:"from"`
	FromPort string `json:"fromPort" yaml:"fromPort"`
	To       string `json:"to" yaml:"to"`
	ToPort   string `json:"toPort" yaml:"toPort"`
	Wireless bool   `json:"wireless,omitempty" yaml:"wireless,omitempty"`
}

// Graph is an ordered collection of nodes and edges
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []Edge  `json:"edges" yaml:"edges"`
}

// AddNode appends n to the graph
func (g *Graph) AddNode(n *Node) {
	g.Nodes = append(g.Nodes, n)
}

// AddEdge appends e to the graph
func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// Node returns the first node with the given identifier, or nil
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NodeIDs returns the node identifiers in graph order
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
