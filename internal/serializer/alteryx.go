package serializer

import (
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// DefaultAlteryxVersion is written when a document carries no yxmdVer
const DefaultAlteryxVersion = "2024.1"

// AlteryxSerializer writes AlteryxDocument workflows. Output carries a UTF-8 BOM.
type AlteryxSerializer struct{}

// NewAlteryxSerializer creates an AlteryxSerializer
func NewAlteryxSerializer() *AlteryxSerializer {
	return &AlteryxSerializer{}
}

func (s *AlteryxSerializer) Schema() workflow.Schema { return workflow.SchemaAlteryx }

func (s *AlteryxSerializer) BOM() bool { return true }

func (s *AlteryxSerializer) Serialize(doc *workflow.Document) ([]byte, error) {
	if err := checkSchema(doc, s.Schema()); err != nil {
		return nil, err
	}

	info := doc.Alteryx
	if info == nil {
		info = &workflow.AlteryxInfo{}
	}
	version := info.Version
	if version == "" {
		version = DefaultAlteryxVersion
	}

	root := xmlutil.NewElement("AlteryxDocument").SetAttr("yxmdVer", version)

	props := root.AddChild("Properties")
	meta := props.AddChild("MetaInfo")
	name := info.MetaName
	if name == "" {
		name = doc.Name
	}
	meta.AddChild("Name").SetText(name)
	meta.AddChild("Description").SetText(info.Description)
	if info.Author != "" {
		meta.AddChild("Author").SetText(info.Author)
	}
	if info.Macro != "" {
		props.AddChild("EngineSettings").SetAttr("Macro", info.Macro)
	}
	if info.Constants != nil && info.Constants.Len() > 0 {
		constants := props.AddChild("Constants")
		for pair := info.Constants.Oldest(); pair != nil; pair = pair.Next() {
			constants.AddChild("Constant").SetAttr("Name", pair.Key).SetAttr("Value", pair.Value)
		}
	}

	nodes := root.AddChild("Nodes")
	for _, n := range doc.Graph.Nodes {
		el := nodes.AddChild("Node").SetAttr("ToolID", n.ID)

		gui := el.AddChild("GuiSettings").SetAttr("Plugin", n.TypeTag)
		gui.AddChild("Position").
			SetAttr("x", formatCoord(n.Position.X)).
			SetAttr("y", formatCoord(n.Position.Y))

		if n.HasConfig() {
			cfg := el.AddChild("Configuration")
			for pair := n.Config.Oldest(); pair != nil; pair = pair.Next() {
				cfg.AddChild(pair.Key).SetText(pair.Value)
			}
		}

		if n.Annotation != "" {
			el.AddChild("Annotation").AddChild("DefaultAnnotationText").SetText(n.Annotation)
		}
	}

	connections := root.AddChild("Connections")
	for _, e := range doc.Graph.Edges {
		conn := connections.AddChild("Connection")
		if e.Wireless {
			conn.SetAttr("Wireless", "True")
		}
		conn.AddChild("Origin").SetAttr("ToolID", e.From).SetAttr("Connection", e.FromPort)
		conn.AddChild("Destination").SetAttr("ToolID", e.To).SetAttr("Connection", e.ToPort)
	}

	return marshal(root, s.BOM())
}
