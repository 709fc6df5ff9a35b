// Package sdk provisions the Android SDK toolchain: it verifies host
// preconditions, downloads and extracts the tools archive, accepts licenses,
// and ensures emulator components for the run pathway. Provisioning is
// idempotent and re-entrant: a completion sentinel written only after license
// acceptance marks the toolchain as fully provisioned, so a crash mid-way
// simply causes the next invocation to provision again.
package sdk

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/satchelcli/satchel/pkg/command"
	"github.com/satchelcli/satchel/pkg/download"
)

// RequiredRuntime is the support runtime version the app templates bundle.
// Packaging against any other host runtime produces broken artifacts.
const RequiredRuntime = "3.7"

// sentinelFile marks a fully provisioned toolchain root. It is written only
// after license acceptance succeeds, so its presence implies every earlier
// provisioning stage completed.
const sentinelFile = ".provisioned"

// Downloader fetches a remote archive into a cache directory.
type Downloader interface {
	Fetch(ctx context.Context, url, destDir string) (string, error)
}

// EnvironmentMismatchError reports a host support runtime that cannot produce
// working Android artifacts. There is no remediation path inside this tool;
// the host runtime must be switched externally.
type EnvironmentMismatchError struct {
	Found    string
	Required string
}

func (e *EnvironmentMismatchError) Error() string {
	return fmt.Sprintf(
		"found support runtime version %s; Android packaging currently requires %s",
		e.Found, e.Required,
	)
}

// SDK is the toolchain location plus the collaborators needed to provision
// it. All dependent tool paths are fixed relative sub-paths under Root.
type SDK struct {
	Root       string
	Channel    Channel
	Runner     command.Runner
	Downloader Downloader

	// HostOS parameterizes the archive URL and disables the executable
	// permission pass on Windows. Defaults to runtime.GOOS.
	HostOS string

	// Out receives progress lines.
	Out io.Writer
}

// New returns an SDK rooted at root with default channel and collaborators.
func New(root string, runner command.Runner) *SDK {
	return &SDK{
		Root:       root,
		Channel:    DefaultChannel(),
		Runner:     runner,
		Downloader: &download.Fetcher{},
		HostOS:     runtime.GOOS,
		Out:        os.Stdout,
	}
}

// DefaultRoot is the fixed per-user toolchain location.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".satchel", "tools", "android_sdk"), nil
}

// ADB is the device bridge binary.
func (s *SDK) ADB() string {
	return filepath.Join(s.Root, "platform-tools", "adb")
}

// SDKManager is the package manager and license acceptance tool.
func (s *SDK) SDKManager() string {
	return filepath.Join(s.toolsBin(), "sdkmanager")
}

// AVDManager creates virtual devices.
func (s *SDK) AVDManager() string {
	return filepath.Join(s.toolsBin(), "avdmanager")
}

// Emulator is the emulator binary.
func (s *SDK) Emulator() string {
	return filepath.Join(s.Root, "emulator", "emulator")
}

func (s *SDK) toolsBin() string {
	return filepath.Join(s.Root, "tools", "bin")
}

func (s *SDK) sentinelPath() string {
	return filepath.Join(s.Root, sentinelFile)
}

// Provisioned reports whether a prior provisioning run completed fully.
func (s *SDK) Provisioned() bool {
	_, err := os.Stat(s.sentinelPath())
	return err == nil
}

// Verify checks that the host support runtime version matches the version the
// app templates require. It must pass before any provisioning is attempted.
func (s *SDK) Verify(ctx context.Context) error {
	out, err := s.Runner.Run(ctx, command.Spec{
		Path: "python3",
		Args: []string{"--version"},
	})
	if err != nil {
		return fmt.Errorf("failed to determine host support runtime version: %w", err)
	}

	found := parseRuntimeVersion(string(out))
	if found != RequiredRuntime {
		return &EnvironmentMismatchError{Found: found, Required: RequiredRuntime}
	}
	return nil
}

// parseRuntimeVersion extracts "major.minor" from output like "Python 3.7.4".
func parseRuntimeVersion(out string) string {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return ""
	}
	version := fields[len(fields)-1]
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return version
	}
	return parts[0] + "." + parts[1]
}

// Ensure makes the toolchain root fully provisioned. It is idempotent: when
// the completion sentinel is present it returns immediately with no
// filesystem or network side effects. Otherwise it downloads the tools
// archive, extracts it into the root, deletes the archive, restores
// executable bits on the tool binaries, and accepts all SDK licenses
// non-interactively. License rejection is fatal; there is no fallback.
func (s *SDK) Ensure(ctx context.Context) error {
	if s.Provisioned() {
		return nil
	}

	fmt.Fprintln(s.Out, "Setting up Android SDK...")

	archive, err := s.Downloader.Fetch(ctx, s.Channel.archiveURLFor(s.HostOS), filepath.Dir(s.Root))
	if err != nil {
		var netErr *download.NetworkError
		if errors.As(err, &netErr) {
			return fmt.Errorf("network failure downloading Android SDK: %w", err)
		}
		return fmt.Errorf("failed to download Android SDK: %w", err)
	}

	if err := extractZip(archive, s.Root); err != nil {
		return fmt.Errorf("failed to extract Android SDK: %w", err)
	}

	// The archive has no purpose once extracted.
	if err := os.Remove(archive); err != nil {
		return fmt.Errorf("failed to remove SDK archive: %w", err)
	}

	// Zip extraction does not carry executable bits; Linux and macOS need
	// them restored before sdkmanager can run.
	if s.HostOS != "windows" {
		if err := s.fixToolPermissions(); err != nil {
			return err
		}
	}

	fmt.Fprintln(s.Out, "Ensuring all Android SDK licenses are accepted...")
	if _, err := s.Runner.Run(ctx, command.Spec{
		Path:  s.SDKManager(),
		Args:  []string{"--licenses"},
		Dir:   s.Root,
		Stdin: strings.NewReader(strings.Repeat("y\n", 32)),
	}); err != nil {
		return fmt.Errorf("failed to accept Android SDK licenses: %w", err)
	}

	if err := os.WriteFile(s.sentinelPath(), nil, 0o644); err != nil {
		return fmt.Errorf("failed to record SDK provisioning: %w", err)
	}
	return nil
}

// EnsureEmulator makes the emulator and a default system image available.
// Only the run pathway needs this; failure is fatal.
func (s *SDK) EnsureEmulator(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.Root, "emulator")); err == nil {
		return nil
	}

	fmt.Fprintln(s.Out, "Ensuring we have the Android emulator and system image...")
	if _, err := s.Runner.Run(ctx, command.Spec{
		Path: s.SDKManager(),
		Args: s.Channel.Packages,
		Dir:  s.Root,
	}); err != nil {
		return fmt.Errorf("failed to install emulator components: %w", err)
	}
	return nil
}

func (s *SDK) fixToolPermissions() error {
	entries, err := os.ReadDir(s.toolsBin())
	if err != nil {
		return fmt.Errorf("failed to list SDK tool binaries: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(s.toolsBin(), entry.Name())
		if err := os.Chmod(path, 0o755); err != nil {
			return fmt.Errorf("failed to make %s executable: %w", path, err)
		}
	}
	return nil
}

// extractZip extracts every entry of the archive into destRoot, rejecting
// entries that would escape it.
func extractZip(archive, destRoot string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		dest := filepath.Join(destRoot, file.Name)
		if !strings.HasPrefix(dest, filepath.Clean(destRoot)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes extraction root", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, dest); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

func extractFile(file *zip.File, dest string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
