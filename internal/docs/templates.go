package docs

import (
	"strings"
	"text/template"
)

// maxTools caps the tool table in workflow documents
const maxTools = 50

var funcs = template.FuncMap{
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
	"dash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
	"trunc": func(n int, s string) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return string(r[:n])
	},
}

const validationSection = `{{define "validation"}}
## Validation

**Status**: {{if .Passed}}Passed{{else}}Failed{{end}}
- Errors: {{.ErrorCount}}
- Warnings: {{.WarningCount}}
- Info: {{.InfoCount}}
{{if .Issues}}
### Issues

{{range .Issues}}- [{{upper .Severity.String}}] ` + "`{{.Code}}`" + `: {{.Message}}
{{end}}{{end}}{{end}}`

const footer = `{{define "footer"}}
---

Generated by etl-bridge
{{end}}`

const workflowTemplate = `# Workflow: {{.Meta.Name}}

Generated: {{.Generated}}

## General

- **File**: ` + "`{{.Meta.File}}`" + `
- **Version**: {{or .Meta.Version "N/A"}}
- **Description**: {{or .Meta.Description "No description"}}
- **Author**: {{or .Meta.Author "N/A"}}
{{- if .Meta.Macro}}
- **Macro**: {{.Meta.Macro}}
{{- end}}

## Statistics

| Metric | Value |
|--------|-------|
| Tools | {{len .Meta.Tools}} |
| Connections | {{.Meta.Connections}} |
| Input tools | {{len .Meta.Inputs}} |
| Output tools | {{len .Meta.Outputs}} |
| Macros | {{len .Meta.Macros}} |
{{if .Meta.Inputs}}
## Inputs

{{range .Meta.Inputs}}- **ID {{.ID}}**: {{.Label}}
{{end}}{{end}}
{{- if .Meta.Outputs}}
## Outputs

{{range .Meta.Outputs}}- **ID {{.ID}}**: {{.Label}}
{{end}}{{end}}
{{- if .Meta.Constants}}
## Constants

{{range .Meta.Constants}}- ` + "`{{.Name}}` = `{{.Value}}`" + `
{{end}}{{end}}
{{- if .Tools}}
## Tools

| ID | Plugin | Annotation |
|----|--------|------------|
{{range .Tools}}| {{.ID}} | {{dash .Short}} | {{dash (trunc 40 .Annotation)}} |
{{end}}
{{- if .MoreTools}}| ... | ({{.MoreTools}} more) | ... |
{{end}}{{end}}
{{- with .Validation}}{{template "validation" .}}{{end}}
{{- template "footer"}}`

const packageTemplate = `# Package: {{.Meta.Name}}

Generated: {{.Generated}}

## General

- **File**: ` + "`{{.Meta.File}}`" + `
- **Version**: {{or .Meta.Version "N/A"}}
- **Project**: {{or .Meta.Project "N/A"}}
- **Folder**: {{or .Meta.Folder "N/A"}}
- **Description**: {{or .Meta.Description "No description"}}

## Statistics

| Metric | Value |
|--------|-------|
| Steps | {{.Meta.Steps}} |
| Scenarios | {{.Meta.Scenarios}} |
| Interfaces | {{.Meta.Interfaces}} |
| Data sources | {{len .Meta.Sources}} |
| Data targets | {{len .Meta.Targets}} |
{{if .Meta.Sources}}
## Data Sources

{{range .Meta.Sources}}- ` + "`{{.}}`" + `
{{end}}{{end}}
{{- if .Meta.Targets}}
## Data Targets

{{range .Meta.Targets}}- ` + "`{{.}}`" + `
{{end}}{{end}}
{{- if .Meta.Flow.Order}}
## Execution Flow

Starts at ` + "`{{.Meta.Flow.FirstStep}}`" + `.

{{range $i, $s := .Meta.Flow.Order}}{{inc $i}}. ` + "`{{$s}}`" + `
{{end}}
{{- if or .Meta.Flow.Success .Meta.Flow.Failure}}
| From | On success | On failure |
|------|------------|------------|
{{range .Meta.Flow.Branches}}| {{.From}} | {{dash .Success}} | {{dash .Failure}} |
{{end}}{{end}}{{end}}
{{- if .Meta.Variables}}
## Variables

| Name | Type | Default |
|------|------|---------|
{{range .Meta.Variables}}| {{.Name}} | {{dash .Type}} | {{dash .Default}} |
{{end}}{{end}}
{{- with .Validation}}{{template "validation" .}}{{end}}
{{- template "footer"}}`

func mustParse(name, body string) *template.Template {
	t := template.Must(template.New(name).Funcs(funcs).Parse(body))
	template.Must(t.Parse(validationSection))
	return template.Must(t.Parse(footer))
}

var (
	workflowTmpl = mustParse("workflow", workflowTemplate)
	packageTmpl  = mustParse("package", packageTemplate)
)
