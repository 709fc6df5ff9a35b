package sdk

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satchelcli/satchel/pkg/command"
	"github.com/satchelcli/satchel/pkg/download"
)

type fakeRunner struct {
	calls []command.Spec
	run   func(spec command.Spec) ([]byte, error)
}

func (f *fakeRunner) Run(_ context.Context, spec command.Spec) ([]byte, error) {
	f.calls = append(f.calls, spec)
	if f.run != nil {
		return f.run(spec)
	}
	return nil, nil
}

type fakeDownloader struct {
	calls []string
	err   error
}

// Fetch writes a minimal but realistic SDK tools archive into destDir.
func (f *fakeDownloader) Fetch(_ context.Context, url, destDir string) (string, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", f.err
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	archive := filepath.Join(destDir, "sdk-tools.zip")
	out, err := os.Create(archive)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, name := range []string{
		"tools/bin/sdkmanager",
		"tools/bin/avdmanager",
		"platform-tools/adb",
	} {
		entry, err := w.Create(name)
		if err != nil {
			return "", err
		}
		if _, err := io.WriteString(entry, "#!/bin/sh\n"); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return archive, nil
}

func newTestSDK(t *testing.T) (*SDK, *fakeRunner, *fakeDownloader) {
	t.Helper()
	runner := &fakeRunner{}
	downloader := &fakeDownloader{}
	s := New(filepath.Join(t.TempDir(), "tools", "android_sdk"), runner)
	s.Downloader = downloader
	s.HostOS = "linux"
	s.Out = io.Discard
	return s, runner, downloader
}

func TestVerify(t *testing.T) {
	tt := map[string]struct {
		versionOutput string
		runnerErr     error
		expectErr     bool
		mismatch      string
	}{
		"matching runtime": {
			versionOutput: "Python 3.7.4\n",
		},
		"newer runtime is rejected": {
			versionOutput: "Python 3.9.2\n",
			expectErr:     true,
			mismatch:      "3.9",
		},
		"runtime probe failure": {
			runnerErr: errors.New("no such file or directory"),
			expectErr: true,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			s, runner, downloader := newTestSDK(t)
			runner.run = func(command.Spec) ([]byte, error) {
				return []byte(tc.versionOutput), tc.runnerErr
			}

			err := s.Verify(context.Background())
			if !tc.expectErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)

			if tc.mismatch != "" {
				var mismatchErr *EnvironmentMismatchError
				require.True(t, errors.As(err, &mismatchErr))
				assert.Equal(t, tc.mismatch, mismatchErr.Found)
				assert.Equal(t, RequiredRuntime, mismatchErr.Required)
			}
			assert.Empty(t, downloader.calls, "verification must not trigger a download")
		})
	}
}

func TestEnsureProvisionsFreshRoot(t *testing.T) {
	s, runner, downloader := newTestSDK(t)

	require.NoError(t, s.Ensure(context.Background()))

	require.Len(t, downloader.calls, 1)
	assert.Contains(t, downloader.calls[0], "sdk-tools-linux-4333796.zip")

	// Extraction landed under the root and the archive is gone.
	assert.FileExists(t, s.SDKManager())
	assert.FileExists(t, s.ADB())
	assert.NoFileExists(t, filepath.Join(filepath.Dir(s.Root), "sdk-tools.zip"))

	// Every tool binary picked up owner-execute permission.
	entries, err := os.ReadDir(filepath.Join(s.Root, "tools", "bin"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(s.Root, "tools", "bin", entry.Name()))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o100, "%s must be executable", entry.Name())
	}

	// Exactly one license acceptance, addressed at the toolchain root.
	require.Len(t, runner.calls, 1)
	assert.Equal(t, s.SDKManager(), runner.calls[0].Path)
	assert.Equal(t, []string{"--licenses"}, runner.calls[0].Args)
	assert.Equal(t, s.Root, runner.calls[0].Dir)
	assert.NotNil(t, runner.calls[0].Stdin, "license acceptance must be non-interactive")

	assert.True(t, s.Provisioned())
}

func TestEnsureIsIdempotent(t *testing.T) {
	s, runner, downloader := newTestSDK(t)
	require.NoError(t, s.Ensure(context.Background()))

	runner.calls = nil
	downloader.calls = nil

	require.NoError(t, s.Ensure(context.Background()))
	assert.Empty(t, downloader.calls, "second ensure must not download")
	assert.Empty(t, runner.calls, "second ensure must not run any tool")
}

func TestEnsureNetworkFailure(t *testing.T) {
	s, runner, downloader := newTestSDK(t)
	downloader.err = &download.NetworkError{URL: "https://example.invalid/sdk.zip", Err: errors.New("connection refused")}

	err := s.Ensure(context.Background())
	require.Error(t, err)

	var netErr *download.NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Contains(t, err.Error(), "downloading Android SDK")

	assert.Empty(t, runner.calls)
	assert.False(t, s.Provisioned(), "a failed run must not read as provisioned")
}

func TestEnsureLicenseRejectionIsFatal(t *testing.T) {
	s, runner, downloader := newTestSDK(t)
	runner.run = func(spec command.Spec) ([]byte, error) {
		return []byte("license not accepted"), &command.ExitError{Command: spec.String(), Err: errors.New("exit status 1")}
	}

	err := s.Ensure(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "licenses")
	assert.False(t, s.Provisioned())

	// Re-entry after the failure provisions from scratch.
	runner.run = nil
	require.NoError(t, s.Ensure(context.Background()))
	assert.Len(t, downloader.calls, 2)
	assert.True(t, s.Provisioned())
}

func TestEnsureSkipsPermissionPassOnWindows(t *testing.T) {
	s, _, _ := newTestSDK(t)
	s.HostOS = "windows"

	require.NoError(t, s.Ensure(context.Background()))

	info, err := os.Stat(s.SDKManager())
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&0o100, "no permission fixing on windows")
}

func TestEnsureEmulator(t *testing.T) {
	t.Run("installs components when emulator is missing", func(t *testing.T) {
		s, runner, _ := newTestSDK(t)
		require.NoError(t, os.MkdirAll(s.Root, 0o755))

		require.NoError(t, s.EnsureEmulator(context.Background()))

		require.Len(t, runner.calls, 1)
		assert.Equal(t, s.SDKManager(), runner.calls[0].Path)
		assert.Equal(t, DefaultChannel().Packages, runner.calls[0].Args)
	})

	t.Run("skips when emulator is present", func(t *testing.T) {
		s, runner, _ := newTestSDK(t)
		require.NoError(t, os.MkdirAll(filepath.Join(s.Root, "emulator"), 0o755))

		require.NoError(t, s.EnsureEmulator(context.Background()))
		assert.Empty(t, runner.calls)
	})

	t.Run("component install failure is fatal", func(t *testing.T) {
		s, runner, _ := newTestSDK(t)
		require.NoError(t, os.MkdirAll(s.Root, 0o755))
		runner.run = func(spec command.Spec) ([]byte, error) {
			return nil, &command.ExitError{Command: spec.String(), Err: errors.New("exit status 1")}
		}

		err := s.EnsureEmulator(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "emulator components")
	})
}

func TestParseRuntimeVersion(t *testing.T) {
	tt := map[string]struct {
		output   string
		expected string
	}{
		"patch release":   {output: "Python 3.7.4\n", expected: "3.7"},
		"no patch":        {output: "Python 3.9", expected: "3.9"},
		"empty output":    {output: "", expected: ""},
		"version only":    {output: "3.7.11", expected: "3.7"},
		"unversioned tag": {output: "dev", expected: "dev"},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseRuntimeVersion(tc.output))
		})
	}
}
