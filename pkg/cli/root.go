// Package cli wires the provisioning, build and deploy stages into the
// satchel command tree. Each command is a plain function over the shared
// services; there is no state carried between invocations.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root satchel command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "satchel",
		Short: "Build and run Android apps",
		Long: `satchel provisions the Android SDK toolchain, builds your project into a
debug APK with the external build tool, and deploys it onto a connected or
emulated device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(NewCreateCmd())
	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewPackageCmd())
	rootCmd.AddCommand(NewPublishCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
