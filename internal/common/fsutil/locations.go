package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/deploymenttheory/go-etl-bridge/internal/common/osutil"
)

// devConfigDir is searched instead of the user and system locations in development mode
const devConfigDir = "config"

// GetConfigDir returns the per-user configuration directory for appName:
// %APPDATA% on Windows, ~/Library/Application Support on macOS and
// $XDG_CONFIG_HOME (or ~/.config) elsewhere.
func GetConfigDir(appName string) (string, error) {
	if osutil.IsDevEnvironment() {
		return devConfigDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: user config directory: %s", errors.ErrPathNotAccessible, err.Error())
	}
	return filepath.Join(base, appName), nil
}

// GetSystemConfigDir returns the machine wide configuration directory for appName
func GetSystemConfigDir(appName string) string {
	if osutil.IsDevEnvironment() {
		return devConfigDir
	}
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, appName)
	case "darwin":
		return filepath.Join("/Library", "Application Support", appName)
	default:
		return filepath.Join("/etc", appName)
	}
}
