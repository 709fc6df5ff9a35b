// Package adb deploys a built APK onto a device through the device bridge:
// install, force-stop any prior instance, then launch the entry point.
package adb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/satchelcli/satchel/pkg/command"
	"github.com/satchelcli/satchel/pkg/sdk"
)

// Stage tracks where a deployment is in its fixed sequence. Each invocation
// moves NotStarted -> Installing -> Stopping -> Starting -> Done; the only
// recoverable-by-user exits are during install (missing or unknown device).
type Stage int

const (
	StageNotStarted Stage = iota
	StageInstalling
	StageStopping
	StageStarting
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not started"
	case StageInstalling:
		return "installing APK"
	case StageStopping:
		return "stopping app"
	case StageStarting:
		return "starting app"
	case StageDone:
		return "done"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// MissingDeviceError reports that no target device was supplied. Devices are
// never auto-selected or enumerated by this tool.
type MissingDeviceError struct {
	Remediation string
}

func (e *MissingDeviceError) Error() string {
	return "please specify a device on which to run the app by passing -d device_name\n\n" + e.Remediation
}

// DeviceNotFoundError reports that the device bridge cannot see the requested
// device identifier.
type DeviceNotFoundError struct {
	Device      string
	Remediation string
}

func (e *DeviceNotFoundError) Error() string {
	return fmt.Sprintf("device %s not found\n\n%s", e.Device, e.Remediation)
}

// DeployError reports a device bridge invocation that failed mid-deployment.
type DeployError struct {
	Stage  Stage
	Device string
	Err    error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("failed while %s on device %s: %v", e.Stage, e.Device, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}

// Deployer drives the device bridge bundled with the SDK.
type Deployer struct {
	SDK    *sdk.SDK
	Runner command.Runner

	// Out receives progress lines.
	Out io.Writer
}

// New returns a Deployer for the given toolchain.
func New(s *sdk.SDK, runner command.Runner) *Deployer {
	return &Deployer{SDK: s, Runner: runner, Out: os.Stdout}
}

// Deploy installs apk onto device, force-stops any running instance of pkg,
// and starts its entry-point activity. An empty device identifier fails
// before any subprocess runs. If the bridge reports the device as unknown the
// install fails with a DeviceNotFoundError and stop/start are never reached.
// No rollback is attempted on a late failure; the device is then left with
// the app installed but stopped.
func (d *Deployer) Deploy(ctx context.Context, device, apk, pkg, activity string) error {
	if device == "" {
		return &MissingDeviceError{Remediation: d.remediation()}
	}

	fmt.Fprintf(d.Out, "[%s] Installing on device %s...\n", pkg, device)
	out, err := d.bridge(ctx, device, "install", "-r", apk)
	if err != nil {
		if deviceUnknown(out, device) {
			return &DeviceNotFoundError{Device: device, Remediation: d.remediation()}
		}
		return &DeployError{Stage: StageInstalling, Device: device, Err: err}
	}

	// Force-stop so the activity launches freshly. The bridge exits zero
	// when nothing was running, so any error here is a tool crash.
	if _, err := d.bridge(ctx, device, "shell", "am", "force-stop", pkg); err != nil {
		return &DeployError{Stage: StageStopping, Device: device, Err: err}
	}

	fmt.Fprintf(d.Out, "[%s] Starting %s...\n", pkg, activity)
	if _, err := d.bridge(ctx, device, "shell", "am", "start", "-n", pkg+"/"+activity); err != nil {
		return &DeployError{Stage: StageStarting, Device: device, Err: err}
	}

	return nil
}

func (d *Deployer) bridge(ctx context.Context, device string, args ...string) ([]byte, error) {
	return d.Runner.Run(ctx, command.Spec{
		Path: d.SDK.ADB(),
		Args: append([]string{"-s", device}, args...),
	})
}

func deviceUnknown(out []byte, device string) bool {
	return bytes.Contains(out, []byte("device '"+device+"' not found"))
}
