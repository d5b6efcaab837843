package serializer

import (
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// DefaultOdiVersion is written when a package carries no Version
const DefaultOdiVersion = "1.0"

// OdiSerializer writes OdiPackage documents without a BOM
type OdiSerializer struct{}

// NewOdiSerializer creates an OdiSerializer
func NewOdiSerializer() *OdiSerializer {
	return &OdiSerializer{}
}

func (s *OdiSerializer) Schema() workflow.Schema { return workflow.SchemaOdi }

func (s *OdiSerializer) BOM() bool { return false }

// Serialize writes one Step per graph node. Step level fields that have no
// graph equivalent (command, scenario reference, success and failure
// targets) are taken from the matching entry of doc.Odi.Steps. Edges whose
// origin port is OnSuccess or OnFailure are carried by those step fields;
// every other edge becomes a Connections/Flow element.
func (s *OdiSerializer) Serialize(doc *workflow.Document) ([]byte, error) {
	if err := checkSchema(doc, s.Schema()); err != nil {
		return nil, err
	}

	info := doc.Odi
	if info == nil {
		info = &workflow.OdiInfo{}
	}
	version := info.Version
	if version == "" {
		version = DefaultOdiVersion
	}

	root := xmlutil.NewElement("OdiPackage").SetAttr("Name", doc.Name).SetAttr("Version", version)
	root.AddChild("Description").SetText(info.Description)
	if info.Project != "" {
		root.AddChild("Project").SetText(info.Project)
	}
	if info.Folder != "" {
		root.AddChild("Folder").SetText(info.Folder)
	}

	byName := make(map[string]workflow.Step, len(info.Steps))
	for _, st := range info.Steps {
		if _, seen := byName[st.Name]; !seen {
			byName[st.Name] = st
		}
	}

	steps := root.AddChild("Steps")
	for _, n := range doc.Graph.Nodes {
		st := byName[n.ID]
		el := steps.AddChild("Step").SetAttr("Name", n.ID).SetAttr("Type", n.TypeTag)

		if n.Annotation != "" {
			el.AddChild("Annotation").SetText(n.Annotation)
		}
		if st.Command != "" {
			el.AddChild("Command").SetText(st.Command)
		}
		if st.ScenarioRef != "" {
			el.AddChild("ScenarioRef").SetAttr("Name", st.ScenarioRef)
		}

		cfg := el.AddChild("Configuration")
		if n.Config != nil {
			for pair := n.Config.Oldest(); pair != nil; pair = pair.Next() {
				if pair.Key == "Command" && pair.Value == st.Command {
					continue
				}
				cfg.AddChild(pair.Key).SetText(pair.Value)
			}
		}

		if st.OnSuccess != "" {
			el.AddChild("OnSuccess").SetAttr("NextStep", st.OnSuccess)
		}
		if st.OnFailure != "" {
			el.AddChild("OnFailure").SetAttr("NextStep", st.OnFailure)
		}
	}

	if len(info.Scenarios) > 0 {
		scenarios := root.AddChild("Scenarios")
		for _, sc := range info.Scenarios {
			el := scenarios.AddChild("Scenario").SetAttr("Name", sc.Name)
			if sc.Version != "" {
				el.SetAttr("Version", sc.Version)
			}
			if sc.Description != "" {
				el.AddChild("Description").SetText(sc.Description)
			}
			if sc.Folder != "" {
				el.AddChild("Folder").SetText(sc.Folder)
			}
			for _, v := range sc.Variables {
				el.AddChild("Variable").SetAttr("Name", v)
			}
		}
	}

	if len(info.Interfaces) > 0 {
		interfaces := root.AddChild("Interfaces")
		for _, in := range info.Interfaces {
			el := interfaces.AddChild("Interface").SetAttr("Name", in.Name)
			el.AddChild("Source").SetAttr("Schema", in.SourceSchema).SetAttr("Table", in.SourceTable)
			el.AddChild("Target").SetAttr("Schema", in.TargetSchema).SetAttr("Table", in.TargetTable)
			if in.IntegrationType != "" {
				el.AddChild("IntegrationType").SetText(in.IntegrationType)
			}
			for _, m := range in.Mappings {
				mapping := el.AddChild("Mapping").
					SetAttr("SourceColumn", m.SourceColumn).
					SetAttr("TargetColumn", m.TargetColumn)
				if m.Expression != "" {
					mapping.SetAttr("Expression", m.Expression)
				}
			}
		}
	}

	if len(info.Variables) > 0 {
		variables := root.AddChild("Variables")
		for _, v := range info.Variables {
			variables.AddChild("Variable").
				SetAttr("Name", v.Name).
				SetAttr("Type", v.Type).
				SetAttr("Default", v.Default)
		}
	}

	connections := root.AddChild("Connections")
	for _, e := range doc.Graph.Edges {
		if e.FromPort == "OnSuccess" || e.FromPort == "OnFailure" {
			continue
		}
		connections.AddChild("Flow").SetAttr("From", e.From).SetAttr("To", e.To)
	}

	return marshal(root, s.BOM())
}
