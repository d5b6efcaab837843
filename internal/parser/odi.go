package parser

import (
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

const (
	// OdiRoot is the root element of a package document
	OdiRoot = "OdiPackage"

	// Ports used for package graph edges
	PortOnSuccess = "OnSuccess"
	PortOnFailure = "OnFailure"
	PortFlow      = "Flow"
)

var odiExtensions = []string{".xml"}

// OdiParser reads OdiPackage documents
type OdiParser struct {
	cache *Cache
}

// NewOdiParser creates a parser backed by cache, which may be nil
func NewOdiParser(cache *Cache) *OdiParser {
	return &OdiParser{cache: cache}
}

func (p *OdiParser) Schema() workflow.Schema { return workflow.SchemaOdi }

func (p *OdiParser) Extensions() []string {
	return append([]string(nil), odiExtensions...)
}

func (p *OdiParser) Parse(path string) (*workflow.Document, error) {
	return load(path, p.Schema(), odiExtensions, p.cache, decodeOdi)
}

func (p *OdiParser) ParseText(content string) (*workflow.Document, error) {
	return loadText(content, decodeOdi)
}

func (p *OdiParser) ClearCache() {
	p.cache.Clear()
	logger.LogInfo("Parser cache cleared", map[string]interface{}{"schema": string(p.Schema())})
}

func decodeOdi(root *xmlutil.Element, name string) *workflow.Document {
	if root.Name != OdiRoot {
		logger.LogWarn("Unexpected root element", map[string]interface{}{
			"expected": OdiRoot,
			"found":    root.Name,
		})
	}

	// The package's own name wins over the file name
	if n := root.Attr("Name"); n != "" {
		name = n
	}

	info := &workflow.OdiInfo{
		Version:     root.Attr("Version"),
		Description: root.ChildText("Description"),
		Project:     root.ChildText("Project"),
		Folder:      root.ChildText("Folder"),
		Steps:       []workflow.Step{},
		Scenarios:   []workflow.Scenario{},
		Interfaces:  []workflow.Interface{},
		Variables:   []workflow.Variable{},
	}
	doc := &workflow.Document{Schema: workflow.SchemaOdi, Name: name, Odi: info}

	var branches []workflow.Edge
	for _, el := range root.Iter("Step") {
		step := workflow.Step{
			Name:        el.Attr("Name"),
			Type:        el.Attr("Type"),
			Command:     el.ChildText("Command"),
			ScenarioRef: el.Child("ScenarioRef").Attr("Name"),
			OnSuccess:   el.Child("OnSuccess").Attr("NextStep"),
			OnFailure:   el.Child("OnFailure").Attr("NextStep"),
			Annotation:  el.ChildText("Annotation"),
		}
		info.Steps = append(info.Steps, step)

		node := workflow.NewNode(step.Name, step.Type)
		if step.Command != "" {
			node.Config.Set("Command", step.Command)
		}
		configChildren(el.Child("Configuration"), node.Config)
		node.Annotation = step.Annotation
		doc.Graph.AddNode(node)

		if step.OnSuccess != "" {
			branches = append(branches, workflow.Edge{From: step.Name, FromPort: PortOnSuccess, To: step.OnSuccess, ToPort: PortFlow})
		}
		if step.OnFailure != "" {
			branches = append(branches, workflow.Edge{From: step.Name, FromPort: PortOnFailure, To: step.OnFailure, ToPort: PortFlow})
		}
	}

	for _, e := range branches {
		doc.Graph.AddEdge(e)
	}
	for _, el := range root.Iter("Flow") {
		doc.Graph.AddEdge(workflow.Edge{
			From:     el.Attr("From"),
			FromPort: PortFlow,
			To:       el.Attr("To"),
			ToPort:   PortFlow,
		})
	}

	for _, el := range root.Iter("Scenario") {
		scenario := workflow.Scenario{
			Name:        el.Attr("Name"),
			Version:     el.Attr("Version"),
			Description: el.ChildText("Description"),
			Folder:      el.ChildText("Folder"),
		}
		for _, v := range el.Iter("Variable") {
			if n := v.Attr("Name"); n != "" {
				scenario.Variables = append(scenario.Variables, n)
			}
		}
		info.Scenarios = append(info.Scenarios, scenario)
	}

	for _, el := range root.Iter("Interface") {
		iface := workflow.Interface{
			Name:            el.Attr("Name"),
			SourceSchema:    el.Child("Source").Attr("Schema"),
			SourceTable:     el.Child("Source").Attr("Table"),
			TargetSchema:    el.Child("Target").Attr("Schema"),
			TargetTable:     el.Child("Target").Attr("Table"),
			IntegrationType: el.ChildText("IntegrationType"),
		}
		for _, m := range el.Iter("Mapping") {
			iface.Mappings = append(iface.Mappings, workflow.ColumnMapping{
				SourceColumn: m.Attr("SourceColumn"),
				TargetColumn: m.Attr("TargetColumn"),
				Expression:   m.Attr("Expression"),
			})
		}
		info.Interfaces = append(info.Interfaces, iface)
	}

	info.Variables = packageVariables(root)

	return doc
}

// packageVariables collects Variable elements outside Scenario subtrees.
// A repeated name keeps its first position and takes the later values.
func packageVariables(root *xmlutil.Element) []workflow.Variable {
	vars := []workflow.Variable{}
	index := map[string]int{}

	var walk func(el *xmlutil.Element)
	walk = func(el *xmlutil.Element) {
		if el.Name == "Scenario" {
			return
		}
		if el.Name == "Variable" {
			if n := el.Attr("Name"); n != "" {
				v := workflow.Variable{Name: n, Type: el.Attr("Type"), Default: el.Attr("Default")}
				if i, ok := index[n]; ok {
					vars[i] = v
				} else {
					index[n] = len(vars)
					vars = append(vars, v)
				}
			}
		}
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(root)

	return vars
}
