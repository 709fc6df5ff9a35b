package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewCreateCmd creates the create command
func NewCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create and populate an Android APK project",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := svc.verifyTools(ctx); err != nil {
				return err
			}

			bundleDir := svc.app.BundleDir(svc.projectRoot)
			if err := os.MkdirAll(bundleDir, 0o755); err != nil {
				return fmt.Errorf("failed to create bundle directory: %w", err)
			}

			color.New(color.FgGreen).Printf("[%s] Created %s\n", svc.app.Name, bundleDir)
			fmt.Println("Populate it from your app template, then run `satchel build`.")
			return nil
		},
	}
}
