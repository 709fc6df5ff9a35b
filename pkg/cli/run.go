package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/satchelcli/satchel/pkg/adb"
	"github.com/satchelcli/satchel/pkg/project"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an Android APK on a device",
		Long: `Run installs the most recently built APK onto the given device, stops any
running instance, and launches the app's main activity. Devices are never
auto-selected; pass the device identifier the device bridge reports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}

			// Fail before any tool is invoked when no device was given.
			if device == "" {
				return adb.MissingDevice(svc.sdk)
			}

			ctx := context.Background()
			if err := svc.verifyTools(ctx); err != nil {
				return err
			}
			if err := svc.sdk.EnsureEmulator(ctx); err != nil {
				return err
			}

			artifact := svc.app.BinaryPath(svc.projectRoot)
			if _, err := os.Stat(artifact); err != nil {
				return fmt.Errorf("no build artifact for %s; run `satchel build` first", svc.app.Name)
			}

			deployer := adb.New(svc.sdk, svc.runner)
			if err := deployer.Deploy(ctx, device, artifact, svc.app.Package(), project.MainActivity); err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("[%s] Running on device %s\n", svc.app.Name, device)
			return nil
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "The device to target, formatted for the device bridge")

	return cmd
}
