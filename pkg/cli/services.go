package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/satchelcli/satchel/pkg/command"
	"github.com/satchelcli/satchel/pkg/project"
	"github.com/satchelcli/satchel/pkg/sdk"
)

// services are the shared collaborators every command receives: the project
// descriptor, the toolchain, and the command runner.
type services struct {
	projectRoot string
	app         *project.App
	sdk         *sdk.SDK
	runner      command.Runner
}

func loadServices() (*services, error) {
	projectRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine project directory: %w", err)
	}

	app, err := project.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	sdkRoot, err := sdk.DefaultRoot()
	if err != nil {
		return nil, err
	}

	runner := command.NewRunner()
	toolchain := sdk.New(sdkRoot, runner)

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate home directory: %w", err)
	}
	channel, err := sdk.LoadChannel(filepath.Join(home, ".satchel", "sdk.yaml"))
	if err != nil {
		return nil, err
	}
	toolchain.Channel = channel

	return &services{
		projectRoot: projectRoot,
		app:         app,
		sdk:         toolchain,
		runner:      runner,
	}, nil
}

// verifyTools checks host preconditions and provisions the SDK. Every command
// pathway runs this before touching the project.
func (s *services) verifyTools(ctx context.Context) error {
	if err := s.sdk.Verify(ctx); err != nil {
		return err
	}
	return s.sdk.Ensure(ctx)
}
