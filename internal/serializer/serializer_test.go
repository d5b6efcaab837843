package serializer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/parser"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alteryxDoc() *workflow.Document {
	doc := &workflow.Document{
		Schema: workflow.SchemaAlteryx,
		Name:   "orders",
		Alteryx: &workflow.AlteryxInfo{
			Description: "Converted",
			Constants:   workflow.NewConfig(),
		},
	}
	doc.Alteryx.Constants.Set("User.Region", "EMEA")

	in := workflow.NewNode("1", "AlteryxBasePluginsGui.DbFileInput.DbFileInput")
	in.Position = workflow.Position{X: 150, Y: 200}
	in.Annotation = "Read"
	in.Config.Set("File", "orders.csv")
	doc.Graph.AddNode(in)

	out := workflow.NewNode("2", "AlteryxBasePluginsGui.Formula.Formula")
	out.Position = workflow.Position{X: 350.5, Y: 200}
	doc.Graph.AddNode(out)

	doc.Graph.AddEdge(workflow.Edge{From: "1", FromPort: "Output", To: "2", ToPort: "Input", Wireless: true})
	return doc
}

func odiDoc() *workflow.Document {
	doc := &workflow.Document{
		Schema: workflow.SchemaOdi,
		Name:   "PKG",
		Odi: &workflow.OdiInfo{
			Description: "Converted",
			Steps: []workflow.Step{
				{Name: "Step_1", Type: "DataStoreCommand", Command: "LOAD", OnSuccess: "Step_2", Annotation: "Read"},
				{Name: "Step_2", Type: "ProcedureCommand", ScenarioRef: "SCN"},
			},
			Scenarios:  []workflow.Scenario{{Name: "SCN", Variables: []string{"V1"}}},
			Interfaces: []workflow.Interface{{Name: "I", SourceTable: "A", TargetTable: "B", Mappings: []workflow.ColumnMapping{{SourceColumn: "x", TargetColumn: "y"}}}},
			Variables:  []workflow.Variable{{Name: "V2", Type: "Text", Default: "d"}},
		},
	}

	s1 := workflow.NewNode("Step_1", "DataStoreCommand")
	s1.Config.Set("Command", "LOAD")
	s1.Config.Set("File", "orders.csv")
	s1.Annotation = "Read"
	doc.Graph.AddNode(s1)
	doc.Graph.AddNode(workflow.NewNode("Step_2", "ProcedureCommand"))

	doc.Graph.AddEdge(workflow.Edge{From: "Step_1", FromPort: "OnSuccess", To: "Step_2", ToPort: "Flow"})
	doc.Graph.AddEdge(workflow.Edge{From: "Step_2", FromPort: "Flow", To: "Step_9", ToPort: "Flow"})
	return doc
}

func TestAlteryxOutputHasBOM(t *testing.T) {
	data, err := NewAlteryxSerializer().Serialize(alteryxDoc())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, xmlutil.BOM))
	assert.True(t, bytes.HasPrefix(data[len(xmlutil.BOM):], []byte(xmlutil.Header)))
	assert.Contains(t, string(data), `yxmdVer="2024.1"`)
	assert.Contains(t, string(data), `<Position x="350.5" y="200"></Position>`)
}

func TestOdiOutputHasNoBOM(t *testing.T) {
	data, err := NewOdiSerializer().Serialize(odiDoc())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte(xmlutil.Header)))
	assert.Contains(t, string(data), `<OdiPackage Name="PKG" Version="1.0">`)
}

func TestAlteryxRoundTrip(t *testing.T) {
	src := alteryxDoc()
	data, err := NewAlteryxSerializer().Serialize(src)
	require.NoError(t, err)

	back, err := parser.NewAlteryxParser(nil).ParseText(string(data))
	require.NoError(t, err)

	assert.Equal(t, src.Graph.NodeIDs(), back.Graph.NodeIDs())
	if diff := cmp.Diff(src.Graph.Edges, back.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	n := back.Graph.Node("1")
	assert.Equal(t, "Read", n.Annotation)
	assert.Equal(t, workflow.Position{X: 150, Y: 200}, n.Position)
	v, _ := n.Config.Get("File")
	assert.Equal(t, "orders.csv", v)
	assert.False(t, back.Graph.Node("2").HasConfig())

	assert.Equal(t, "orders", back.Alteryx.MetaName)
	assert.Equal(t, "Converted", back.Alteryx.Description)
	region, _ := back.Alteryx.Constants.Get("User.Region")
	assert.Equal(t, "EMEA", region)
}

func TestOdiRoundTrip(t *testing.T) {
	src := odiDoc()
	data, err := NewOdiSerializer().Serialize(src)
	require.NoError(t, err)

	back, err := parser.NewOdiParser(nil).ParseText(string(data))
	require.NoError(t, err)

	assert.Equal(t, "PKG", back.Name)
	if diff := cmp.Diff(src.Odi.Steps[0], back.Odi.Steps[0]); diff != "" {
		t.Errorf("step mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(src.Graph.Edges, back.Graph.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	s1 := back.Graph.Node("Step_1")
	require.NotNil(t, s1)
	assert.Equal(t, 2, s1.Config.Len())
	assert.Equal(t, "Read", s1.Annotation)

	assert.Equal(t, src.Odi.Scenarios, back.Odi.Scenarios)
	assert.Equal(t, src.Odi.Interfaces, back.Odi.Interfaces)
	assert.Equal(t, src.Odi.Variables, back.Odi.Variables)
}

func TestSchemaMismatch(t *testing.T) {
	_, err := NewOdiSerializer().Serialize(alteryxDoc())
	assert.True(t, errors.Is(err, errors.ErrSerializeFailed))
	assert.True(t, errors.Is(err, errors.ErrUnknownSchema))

	_, err = NewAlteryxSerializer().Serialize(nil)
	assert.True(t, errors.Is(err, errors.ErrSerializeFailed))
}

func TestWriteFileCompresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pkg.xml.xz")

	data, err := WriteFile(NewOdiSerializer(), odiDoc(), path)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, data, raw)

	plain, err := compression.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, plain)
}

func TestWriteFileFailureKeepsData(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	data, err := WriteFile(NewAlteryxSerializer(), alteryxDoc(), filepath.Join(blocker, "out.yxmd"))
	require.Error(t, err)
	assert.NotEmpty(t, data)
}
