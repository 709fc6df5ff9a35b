package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/satchelcli/satchel/pkg/gradle"
)

// NewBuildCmd creates the build command
func NewBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Build an Android APK",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadServices()
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := svc.verifyTools(ctx); err != nil {
				return err
			}

			invoker := gradle.New(svc.runner)
			artifact, err := invoker.Build(ctx, svc.app, svc.sdk.Root, svc.projectRoot)
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Printf("[%s] Built %s\n", svc.app.Name, artifact)
			return nil
		},
	}
}
