// Package gradle invokes the external build tool to assemble a debug APK.
package gradle

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/satchelcli/satchel/pkg/command"
	"github.com/satchelcli/satchel/pkg/project"
)

// SDKRootEnv is the environment variable communicating the toolchain root to
// the build subprocess.
const SDKRootEnv = "ANDROID_SDK_ROOT"

// BuildError reports a failed build, carrying whatever the build tool printed
// so the user is not left with a bare exit status.
type BuildError struct {
	App    string
	Output []byte
	Err    error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("error while building app %s: %v", e.App, e.Err)
	if len(e.Output) > 0 {
		msg += "\n" + string(e.Output)
	}
	return msg
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Invoker runs the project's gradle wrapper inside the bundle directory.
type Invoker struct {
	Runner command.Runner

	// Environ supplies the base environment the SDK root is merged over.
	// Defaults to os.Environ.
	Environ func() []string

	// Out receives progress lines.
	Out io.Writer
}

// New returns an Invoker using the ambient process environment.
func New(runner command.Runner) *Invoker {
	return &Invoker{Runner: runner, Environ: os.Environ, Out: os.Stdout}
}

// Build assembles the debug APK for app and returns the artifact path. The
// artifact location is fixed; rebuilds overwrite it. The artifact is marked
// executable after a successful build because the build tool does not
// guarantee its permission bits.
func (i *Invoker) Build(ctx context.Context, app *project.App, sdkRoot, projectRoot string) (string, error) {
	fmt.Fprintf(i.Out, "[%s] Building Android APK...\n", app.Name)

	env := command.MergeEnv(i.Environ(), map[string]string{SDKRootEnv: sdkRoot})

	out, err := i.Runner.Run(ctx, command.Spec{
		Path: "./gradlew",
		Args: []string{"assembleDebug"},
		Dir:  app.BundleDir(projectRoot),
		Env:  env,
	})
	if err != nil {
		return "", &BuildError{App: app.Name, Output: out, Err: err}
	}

	artifact := app.BinaryPath(projectRoot)
	if err := os.Chmod(artifact, 0o755); err != nil {
		return "", fmt.Errorf("build succeeded but artifact is unusable: %w", err)
	}
	return artifact, nil
}
