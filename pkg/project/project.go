// Package project reads the application descriptor from a project's
// satchel.toml and derives the fixed filesystem layout used by the build and
// deploy stages.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the project configuration filename, looked up in the project
// root directory.
const ConfigFile = "satchel.toml"

// MainActivity is the entry-point component the app templates embed. The
// deployer launches it after install.
const MainActivity = "org.satchel.android.MainActivity"

// App identifies one buildable unit. The project configuration collaborator
// owns these values; this core only reads them.
type App struct {
	Name       string `toml:"name"`
	Bundle     string `toml:"bundle"`
	FormalName string `toml:"formal_name"`
}

type fileConfig struct {
	App App `toml:"app"`
}

// Load reads the app descriptor from projectRoot/satchel.toml.
func Load(projectRoot string) (*App, error) {
	path := filepath.Join(projectRoot, ConfigFile)

	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to load project config %s: %w", path, err)
	}

	app := raw.App
	app.Name = strings.TrimSpace(app.Name)
	app.Bundle = strings.TrimSpace(app.Bundle)
	app.FormalName = strings.TrimSpace(app.FormalName)

	if app.Name == "" || app.Bundle == "" || app.FormalName == "" {
		return nil, fmt.Errorf("project config %s must define app.name, app.bundle and app.formal_name", path)
	}

	return &app, nil
}

// Package is the identity used to address the installed application on a
// device for stop/start operations. It must match the identity the build
// embeds in the artifact.
func (a *App) Package() string {
	return a.Bundle + "." + a.Name
}

// BundleDir is the project bundle directory the build tool runs in.
func (a *App) BundleDir(projectRoot string) string {
	return filepath.Join(projectRoot, "android", a.FormalName)
}

// BinaryPath is the fixed location of the built APK under the bundle
// directory. Builds overwrite it in place; outputs are never versioned.
func (a *App) BinaryPath(projectRoot string) string {
	return filepath.Join(
		a.BundleDir(projectRoot),
		"app", "build", "outputs", "apk", "debug", "app-debug.apk",
	)
}

// DistributionPath is the artifact handed to the packaging pathway. For APKs
// it is the binary itself.
func (a *App) DistributionPath(projectRoot string) string {
	return a.BinaryPath(projectRoot)
}
