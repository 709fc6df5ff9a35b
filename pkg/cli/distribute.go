package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPackageCmd creates the package command. For APKs the distribution
// artifact is the built binary itself, so packaging resolves and reports it.
func NewPackageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "package",
		Short: "Package an Android APK for distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}

			artifact := svc.app.DistributionPath(svc.projectRoot)
			if _, err := os.Stat(artifact); err != nil {
				return fmt.Errorf("no build artifact for %s; run `satchel build` first", svc.app.Name)
			}

			fmt.Printf("[%s] Distribution artifact: %s\n", svc.app.Name, artifact)
			return nil
		},
	}
}

// NewPublishCmd creates the publish command
func NewPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish an Android APK",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("no publication channel exists for Android APKs yet; distribute the packaged APK manually")
		},
	}
}
