package parser

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `<?xml version="1.0"?>
<AlteryxDocument yxmdVer="2023.1">
  <Nodes>
    <Node ToolID="1">
      <GuiSettings Plugin="AlteryxBasePluginsGui.DbFileInput.DbFileInput">
        <Position x="54" y="78.5" />
      </GuiSettings>
      <Properties>
        <Configuration>
          <File>orders.csv</File>
          <Passwords />
        </Configuration>
        <Annotation DisplayMode="0">
          <DefaultAnnotationText>Read orders</DefaultAnnotationText>
        </Annotation>
      </Properties>
      <Configuration>
        <File>C:\data\orders.csv</File>
        <Header>True</Header>
        <Empty />
      </Configuration>
      <Annotation>
        <DefaultAnnotationText>Read orders</DefaultAnnotationText>
      </Annotation>
    </Node>
    <Node ToolID="10">
      <GuiSettings Plugin="AlteryxGuiToolkit.ToolContainer.ToolContainer" />
      <ChildNodes>
        <Node ToolID="2">
          <GuiSettings Plugin="AlteryxBasePluginsGui.Filter.Filter" />
          <Configuration>
            <Expression>[OrderDate] &gt; "2024-01-31"</Expression>
          </Configuration>
        </Node>
      </ChildNodes>
    </Node>
    <Node>
      <GuiSettings Plugin="AlteryxBasePluginsGui.DbFileOutput.DbFileOutput" />
    </Node>
  </Nodes>
  <Connections>
    <Connection>
      <Origin ToolID="1" Connection="Output" />
      <Destination ToolID="2" Connection="Input" />
    </Connection>
    <Connection Wireless="TRUE">
      <Origin ToolID="2" Connection="True" />
      <Destination ToolID="3" Connection="Input" />
    </Connection>
    <Connection>
      <Origin ToolID="9" Connection="Output" />
    </Connection>
  </Connections>
  <Properties>
    <Constants>
      <Constant Name="Engine.TempFilePath" Value="C:\temp" />
      <Constant>
        <Name>User.Region</Name>
        <Value>EMEA</Value>
      </Constant>
    </Constants>
    <MetaInfo>
      <Name>Orders</Name>
      <Description>Loads orders</Description>
      <Author>data-team</Author>
    </MetaInfo>
    <EngineSettings Macro="" />
  </Properties>
</AlteryxDocument>
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAlteryxParseFile(t *testing.T) {
	path := writeFile(t, "orders.yxmd", sampleWorkflow)

	doc, err := NewAlteryxParser(nil).Parse(path)
	require.NoError(t, err)

	assert.Equal(t, workflow.SchemaAlteryx, doc.Schema)
	assert.Equal(t, "orders", doc.Name)
	assert.Equal(t, path, doc.Path)
	require.NotNil(t, doc.Alteryx)
	assert.Nil(t, doc.Odi)

	// nested container child counted, blank id kept
	assert.Equal(t, []string{"1", "10", "2", ""}, doc.Graph.NodeIDs())
	// connection without destination is not a connection
	assert.Equal(t, 2, doc.Graph.EdgeCount())

	input := doc.Graph.Node("1")
	require.NotNil(t, input)
	assert.Equal(t, "AlteryxBasePluginsGui.DbFileInput.DbFileInput", input.TypeTag)
	assert.Equal(t, workflow.Position{X: 54, Y: 78.5}, input.Position)
	assert.Equal(t, "Read orders", input.Annotation)
	assert.Equal(t, 2, input.Config.Len())
	file, _ := input.Config.Get("File")
	assert.Equal(t, `C:\data\orders.csv`, file)

	container := doc.Graph.Node("10")
	assert.False(t, container.HasConfig())
	assert.Equal(t, workflow.Position{}, container.Position)

	want := []workflow.Edge{
		{From: "1", FromPort: "Output", To: "2", ToPort: "Input"},
		{From: "2", FromPort: "True", To: "3", ToPort: "Input", Wireless: true},
	}
	if diff := cmp.Diff(want, doc.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestAlteryxMetadata(t *testing.T) {
	doc, err := NewAlteryxParser(nil).ParseText(sampleWorkflow)
	require.NoError(t, err)

	info := doc.Alteryx
	assert.Equal(t, TextName, doc.Name)
	assert.Equal(t, "2023.1", info.Version)
	assert.Equal(t, "Orders", info.MetaName)
	assert.Equal(t, "Loads orders", info.Description)
	assert.Equal(t, "data-team", info.Author)
	assert.Equal(t, "", info.Macro)

	require.Equal(t, 2, info.Constants.Len())
	v, _ := info.Constants.Get("Engine.TempFilePath")
	assert.Equal(t, `C:\temp`, v)
	v, _ = info.Constants.Get("User.Region")
	assert.Equal(t, "EMEA", v)
}

func TestAlteryxNodeTexts(t *testing.T) {
	doc, err := NewAlteryxParser(nil).ParseText(sampleWorkflow)
	require.NoError(t, err)

	filter := doc.Graph.Node("2")
	require.NotNil(t, filter)
	assert.Contains(t, filter.Texts, workflow.TextFragment{Source: "Expression", Value: `[OrderDate] > "2024-01-31"`})
	assert.Contains(t, filter.Texts, workflow.TextFragment{Source: "GuiSettings@Plugin", Value: "AlteryxBasePluginsGui.Filter.Filter"})

	// container texts include its children
	container := doc.Graph.Node("10")
	assert.Contains(t, container.Texts, workflow.TextFragment{Source: "Expression", Value: `[OrderDate] > "2024-01-31"`})
}

func TestAlteryxCountsIndependentOfNesting(t *testing.T) {
	flat := `<AlteryxDocument><Nodes><Node ToolID="1"/><Node ToolID="2"/><Node ToolID="3"/></Nodes>
<Connections><Connection><Origin ToolID="1"/><Destination ToolID="2"/></Connection></Connections></AlteryxDocument>`
	nested := `<AlteryxDocument><Connections><Wrap><Connection><Origin ToolID="1"/><Destination ToolID="2"/></Connection></Wrap></Connections>
<Nodes><Node ToolID="3"><ChildNodes><Node ToolID="2"><ChildNodes><Node ToolID="1"/></ChildNodes></Node></ChildNodes></Node></Nodes></AlteryxDocument>`

	p := NewAlteryxParser(nil)
	a, err := p.ParseText(flat)
	require.NoError(t, err)
	b, err := p.ParseText(nested)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Graph.NodeCount())
	assert.Equal(t, a.Graph.NodeCount(), b.Graph.NodeCount())
	assert.Equal(t, a.Graph.EdgeCount(), b.Graph.EdgeCount())
	assert.Equal(t, []string{"3", "2", "1"}, b.Graph.NodeIDs())
}

func TestAlteryxCacheStability(t *testing.T) {
	path := writeFile(t, "flow.yxmc", sampleWorkflow)
	cache := NewCache()
	p := NewAlteryxParser(cache)

	first, err := p.Parse(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	second, err := p.Parse(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, first.Graph.NodeCount(), second.Graph.NodeCount())
	assert.Equal(t, first.Graph.EdgeCount(), second.Graph.EdgeCount())
	assert.Equal(t, 1, cache.Len())

	p.ClearCache()
	assert.Equal(t, 0, cache.Len())

	_, err = p.Parse(path)
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))
}

func TestAlteryxParseErrors(t *testing.T) {
	p := NewAlteryxParser(nil)

	_, err := p.Parse(filepath.Join(t.TempDir(), "missing.yxmd"))
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, err = p.Parse(writeFile(t, "flow.txt", sampleWorkflow))
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	_, err = p.Parse(writeFile(t, "broken.yxwz", "<AlteryxDocument><Nodes></AlteryxDocument>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
	var syntaxErr *xml.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	_, err = p.ParseText("not xml <")
	assert.True(t, errors.Is(err, errors.ErrParse))
}

func TestAlteryxCompressedAndBOMInput(t *testing.T) {
	dir := t.TempDir()
	withBOM := "\uFEFF" + sampleWorkflow

	for _, name := range []string{"a.yxmd.gz", "b.yxmd.bz2", "c.yxmd.xz", "d.yxmd.zst", "e.yxmd"} {
		path := filepath.Join(dir, name)
		require.NoError(t, compression.WriteFile(path, []byte(withBOM), 0644))

		doc, err := NewAlteryxParser(nil).Parse(path)
		require.NoError(t, err, name)
		assert.Equal(t, 4, doc.Graph.NodeCount(), name)
		assert.Equal(t, string([]byte{name[0]}), doc.Name)
	}
}
