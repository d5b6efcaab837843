package parser

import (
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// AlteryxRoot is the root element of a visual workflow document
const AlteryxRoot = "AlteryxDocument"

var alteryxExtensions = []string{".yxmd", ".yxmc", ".yxwz"}

// AlteryxParser reads AlteryxDocument workflows
type AlteryxParser struct {
	cache *Cache
}

// NewAlteryxParser creates a parser backed by cache, which may be nil
func NewAlteryxParser(cache *Cache) *AlteryxParser {
	return &AlteryxParser{cache: cache}
}

func (p *AlteryxParser) Schema() workflow.Schema { return workflow.SchemaAlteryx }

func (p *AlteryxParser) Extensions() []string {
	return append([]string(nil), alteryxExtensions...)
}

func (p *AlteryxParser) Parse(path string) (*workflow.Document, error) {
	return load(path, p.Schema(), alteryxExtensions, p.cache, decodeAlteryx)
}

func (p *AlteryxParser) ParseText(content string) (*workflow.Document, error) {
	return loadText(content, decodeAlteryx)
}

func (p *AlteryxParser) ClearCache() {
	p.cache.Clear()
	logger.LogInfo("Parser cache cleared", map[string]interface{}{"schema": string(p.Schema())})
}

func decodeAlteryx(root *xmlutil.Element, name string) *workflow.Document {
	if root.Name != AlteryxRoot {
		logger.LogWarn("Unexpected root element", map[string]interface{}{
			"expected": AlteryxRoot,
			"found":    root.Name,
		})
	}

	doc := &workflow.Document{
		Schema:  workflow.SchemaAlteryx,
		Name:    name,
		Alteryx: decodeAlteryxInfo(root),
	}

	for _, el := range root.Iter("Node") {
		doc.Graph.AddNode(decodeAlteryxNode(el))
	}

	for _, el := range root.Iter("Connection") {
		origin := el.Child("Origin")
		dest := el.Child("Destination")
		if origin == nil || dest == nil {
			continue
		}
		doc.Graph.AddEdge(workflow.Edge{
			From:     origin.Attr("ToolID"),
			FromPort: origin.Attr("Connection"),
			To:       dest.Attr("ToolID"),
			ToPort:   dest.Attr("Connection"),
			Wireless: strings.EqualFold(strings.TrimSpace(el.Attr("Wireless")), "true"),
		})
	}

	return doc
}

func decodeAlteryxInfo(root *xmlutil.Element) *workflow.AlteryxInfo {
	info := &workflow.AlteryxInfo{
		Version:   root.Attr("yxmdVer"),
		Constants: workflow.NewConfig(),
	}

	props := firstOf(root, "Properties")
	if props != nil {
		meta := props.Child("MetaInfo")
		info.MetaName = meta.ChildText("Name")
		info.Description = meta.ChildText("Description")
		info.Author = meta.ChildText("Author")
		info.Macro = props.Child("EngineSettings").Attr("Macro")
	}

	// Constants appear either as attributes or as child elements
	for _, c := range root.Iter("Constant") {
		name := c.Attr("Name")
		if name == "" {
			name = c.ChildText("Name")
		}
		if name == "" {
			continue
		}
		value, ok := c.LookupAttr("Value")
		if !ok {
			value = c.ChildText("Value")
		}
		info.Constants.Set(name, value)
	}

	return info
}

func decodeAlteryxNode(el *xmlutil.Element) *workflow.Node {
	gui := el.Child("GuiSettings")
	node := workflow.NewNode(el.Attr("ToolID"), gui.Attr("Plugin"))

	if pos := gui.Child("Position"); pos != nil {
		node.Position.X = parseCoord(pos.Attr("x"))
		node.Position.Y = parseCoord(pos.Attr("y"))
	}

	configChildren(el.Child("Configuration"), node.Config)

	if ann := el.Child("Annotation"); ann != nil {
		node.Annotation = ann.ChildText("DefaultAnnotationText")
	}

	el.Walk(func(e *xmlutil.Element) {
		if e.Text != "" {
			node.Texts = append(node.Texts, workflow.TextFragment{Source: e.Name, Value: e.Text})
		}
		for _, a := range e.Attrs {
			if a.Value != "" {
				node.Texts = append(node.Texts, workflow.TextFragment{Source: e.Name + "@" + a.Name, Value: a.Value})
			}
		}
	})

	return node
}

func parseCoord(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
