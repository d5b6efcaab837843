// Package serializer writes documents back out in their schema's tag and
// attribute conventions.
package serializer

import (
	"fmt"
	"strconv"

	compression "github.com/deploymenttheory/go-etl-bridge/internal/common/compressionutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/xmlutil"
	"github.com/deploymenttheory/go-etl-bridge/internal/logger"
	"github.com/deploymenttheory/go-etl-bridge/internal/workflow"
)

// Serializer renders documents of one schema
type Serializer interface {
	Schema() workflow.Schema
	// BOM reports whether output is prefixed with a UTF-8 byte order mark
	BOM() bool
	Serialize(doc *workflow.Document) ([]byte, error)
}

// WriteFile serializes doc and writes it to path, compressing it when path
// ends in a compression suffix. The serialized bytes are returned even when
// the write fails.
func WriteFile(s Serializer, doc *workflow.Document, path string) ([]byte, error) {
	data, err := s.Serialize(doc)
	if err != nil {
		return nil, err
	}

	if err := compression.WriteFile(path, data, 0644); err != nil {
		return data, err
	}

	logger.LogInfo("Wrote document", map[string]interface{}{
		"path":   path,
		"schema": string(s.Schema()),
		"bytes":  len(data),
	})
	return data, nil
}

func checkSchema(doc *workflow.Document, want workflow.Schema) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", errors.ErrSerializeFailed)
	}
	if doc.Schema != want {
		return fmt.Errorf("%w: %w: cannot write %q document as %q", errors.ErrSerializeFailed, errors.ErrUnknownSchema, doc.Schema, want)
	}
	return nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func marshal(root *xmlutil.Element, bom bool) ([]byte, error) {
	return xmlutil.Marshal(root, bom)
}
