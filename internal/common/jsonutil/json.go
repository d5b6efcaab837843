package jsonutil

import (
	"encoding/json"
	"fmt"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/fsutil"
)

// Marshal encodes v as indented JSON
func Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrFileWriteError, err.Error())
	}
	return data, nil
}

// WriteJSONFile writes v to a JSON file with indentation, creating parent directories
func WriteJSONFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}

	return fsutil.WriteFile(path, append(data, '\n'), 0644)
}
