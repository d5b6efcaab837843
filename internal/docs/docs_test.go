package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/formats"
	"github.com/deploymenttheory/go-etl-bridge/internal/parser"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesWorkflow = `<?xml version="1.0"?>
<AlteryxDocument yxmdVer="2023.1">
  <Nodes>
    <Node ToolID="1">
      <GuiSettings Plugin="AlteryxBasePluginsGui.DbFileInput.DbFileInput" />
      <Configuration><File>sales.csv</File></Configuration>
      <Annotation><DefaultAnnotationText>Read sales</DefaultAnnotationText></Annotation>
    </Node>
    <Node ToolID="2">
      <GuiSettings Plugin="AlteryxGuiToolkit.ToolContainer.ToolContainer" />
      <ChildNodes>
        <Node ToolID="3">
          <GuiSettings Plugin="AlteryxBasePluginsGui.Filter.Filter" />
          <Configuration><Expression>[Amount] &gt; 0</Expression></Configuration>
        </Node>
      </ChildNodes>
    </Node>
    <Node ToolID="4">
      <GuiSettings Plugin="AlteryxBasePluginsGui.DbFileOutput.DbFileOutput" />
      <Configuration><File>out.csv</File></Configuration>
    </Node>
  </Nodes>
  <Connections>
    <Connection>
      <Origin ToolID="1" Connection="Output" />
      <Destination ToolID="3" Connection="Input" />
    </Connection>
    <Connection>
      <Origin ToolID="3" Connection="True" />
      <Destination ToolID="4" Connection="Input" />
    </Connection>
  </Connections>
  <Properties>
    <Constants>
      <Constant Name="User.Region" Value="EMEA" />
    </Constants>
    <MetaInfo>
      <Description>Sales load</Description>
      <Author>Data Team</Author>
    </MetaInfo>
  </Properties>
</AlteryxDocument>
`

const salesPackage = `<?xml version="1.0"?>
<OdiPackage Name="PKG_SALES" Version="2.0">
  <Project>DWH</Project>
  <Steps>
    <Step Name="Init" Type="VariableStep">
      <Command>SELECT 1 FROM DUAL</Command>
      <OnSuccess NextStep="Load" />
    </Step>
    <Step Name="Load" Type="ProcedureCommand">
      <ScenarioRef Name="LOAD_SALES" />
      <OnSuccess NextStep="Done" />
      <OnFailure NextStep="Rollback" />
    </Step>
  </Steps>
  <Scenarios>
    <Scenario Name="LOAD_SALES" />
  </Scenarios>
  <Interfaces>
    <Interface Name="I1">
      <Source Schema="STG" Table="SALES" />
      <Target Schema="DWH" Table="FACT_SALES" />
    </Interface>
    <Interface Name="I2">
      <Source Schema="STG" Table="SALES" />
      <Target Schema="DWH" />
    </Interface>
  </Interfaces>
  <Variables>
    <Variable Name="RUN_ID" Type="Numeric" />
  </Variables>
</OdiPackage>
`

var fixedClock = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractWorkflow(t *testing.T) {
	doc, err := parser.NewAlteryxParser(nil).ParseText(salesWorkflow)
	require.NoError(t, err)

	meta := ExtractWorkflow(doc)
	assert.Equal(t, "2023.1", meta.Version)
	assert.Equal(t, "Data Team", meta.Author)
	assert.Equal(t, 2, meta.Connections)
	assert.Len(t, meta.Tools, 4)
	assert.Equal(t, []Tool{{ID: "1", Plugin: "AlteryxBasePluginsGui.DbFileInput.DbFileInput", Annotation: "Read sales"}}, meta.Inputs)
	assert.Equal(t, "4", meta.Outputs[0].ID)
	assert.Equal(t, "2", meta.Macros[0].ID)
	assert.Equal(t, []Constant{{Name: "User.Region", Value: "EMEA"}}, meta.Constants)
	assert.Equal(t, parser.TextName, meta.File)
}

func TestExtractPackage(t *testing.T) {
	doc, err := parser.NewOdiParser(nil).ParseText(salesPackage)
	require.NoError(t, err)

	meta := ExtractPackage(doc)
	assert.Equal(t, "PKG_SALES", meta.Name)
	assert.Equal(t, 2, meta.Steps)
	assert.Equal(t, 1, meta.Scenarios)
	assert.Equal(t, 2, meta.Interfaces)
	assert.Equal(t, []string{"STG.SALES"}, meta.Sources)
	assert.Equal(t, []string{"DWH.FACT_SALES"}, meta.Targets)
	assert.Equal(t, "Init", meta.Flow.FirstStep)
	assert.Equal(t, []string{"Init", "Load"}, meta.Flow.Order)

	want := []Branch{
		{From: "Init", Success: "Load"},
		{From: "Load", Success: "Done", Failure: "Rollback"},
	}
	if diff := cmp.Diff(want, meta.Flow.Branches()); diff != "" {
		t.Errorf("branches mismatch (-want +got):\n%s", diff)
	}

	empty := ExtractPackage(&workflow.Document{Schema: workflow.SchemaOdi, Name: "x"})
	assert.Zero(t, empty.Steps)
	assert.Empty(t, empty.Flow.Order)
}

func TestExportWorkflow(t *testing.T) {
	src := writeFile(t, "sales.yxmd", salesWorkflow)
	out := t.TempDir()

	path, err := NewExporter(nil, WithClock(fixedClock)).ExportWorkflow(src, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "sales_doc.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		"# Workflow: sales\n",
		"Generated: 2026-03-01 09:30:00",
		"- **File**: `sales.yxmd`",
		"- **Description**: Sales load",
		"| Tools | 4 |",
		"| Connections | 2 |",
		"## Inputs\n\n- **ID 1**: Read sales\n",
		"- **ID 4**: AlteryxBasePluginsGui.DbFileOutput.DbFileOutput",
		"- `User.Region` = `EMEA`",
		"| 3 | Filter | - |",
		"## Validation",
		"**Status**: Passed",
		"[WARNING] `MISSING_ANNOTATIONS`",
		"Generated by etl-bridge",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "N/A")
}

func TestExportPackageWithoutValidation(t *testing.T) {
	src := writeFile(t, "pkg.xml", salesPackage)

	path, err := NewExporter(nil, WithValidation(false), WithClock(fixedClock)).ExportPackage(src, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "PKG_SALES_doc.md", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		"# Package: PKG_SALES",
		"- **Project**: DWH",
		"- **Folder**: N/A",
		"## Data Sources\n\n- `STG.SALES`\n",
		"## Data Targets\n\n- `DWH.FACT_SALES`\n",
		"Starts at `Init`.",
		"1. `Init`\n2. `Load`\n",
		"| Load | Done | Rollback |",
		"| Init | Load | - |",
		"| RUN_ID | Numeric | - |",
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "## Validation")
}

func TestExportPackageValidation(t *testing.T) {
	src := writeFile(t, "pkg.xml", salesPackage)

	path, err := NewExporter(nil).Export(src, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "**Status**: Failed")
	assert.Contains(t, string(data), "[ERROR] `BROKEN_FLOW`")
	assert.Contains(t, string(data), "[ERROR] `BROKEN_FAILURE_FLOW`")
}

func TestExportErrors(t *testing.T) {
	e := NewExporter(formats.NewRegistry(nil))

	_, err := e.Export(writeFile(t, "notes.txt", "x"), t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))

	_, err = e.ExportWorkflow(filepath.Join(t.TempDir(), "missing.yxmd"), t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, err = e.Render(&workflow.Document{Schema: "bpmn"}, nil)
	assert.True(t, errors.Is(err, errors.ErrUnknownSchema))
}

func TestToolTableIsCapped(t *testing.T) {
	doc := &workflow.Document{Schema: workflow.SchemaAlteryx, Name: "big", Alteryx: &workflow.AlteryxInfo{}}
	for i := 1; i <= maxTools+5; i++ {
		doc.Graph.AddNode(workflow.NewNode(fmt.Sprint(i), "AlteryxBasePluginsGui.Filter.Filter"))
	}

	data, err := NewExporter(nil, WithClock(fixedClock)).Render(doc, nil)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "| 50 | Filter | - |")
	assert.NotContains(t, text, "| 51 | Filter |")
	assert.Contains(t, text, "| ... | (5 more) | ... |")
	assert.Equal(t, maxTools, strings.Count(text, "| Filter |"))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b_doc.md", FileName("a/b"))
	assert.Equal(t, "document_doc.md", FileName(""))
}
