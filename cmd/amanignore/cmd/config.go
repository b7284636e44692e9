package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/amanignore/internal/config"
	ierrors "github.com/Aman-CERP/amanignore/internal/errors"
	"github.com/Aman-CERP/amanignore/internal/output"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage amanignore configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/amanignore/config.yaml)
  3. Project config (.amanignore.yaml in the project root)
  4. Environment variables (AMANIGNORE_*)`,
		Example: `  # Create user config from template
  amanignore config init

  # Show effective configuration
  amanignore config show

  # Print user config file path
  amanignore config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from a commented template at
~/.config/amanignore/config.yaml (or $XDG_CONFIG_HOME/amanignore/config.yaml).

With --force an existing file is backed up and replaced. The newest backups
are kept next to the file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and overwrite an existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	lock := config.NewUserConfigLock()
	locked, err := lock.TryLock()
	if err != nil {
		return ierrors.New(ierrors.ErrCodeConfigPermission, "failed to lock config directory", err).
			WithDetail("path", lock.Path())
	}
	if !locked {
		return ierrors.New(ierrors.ErrCodeConfigPermission, "configuration is being written by another process", nil).
			WithDetail("path", lock.Path()).
			WithSuggestion("Retry once the other 'amanignore config init' has finished")
	}
	defer func() { _ = lock.Unlock() }()

	var backupPath string
	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Statusf("", "Location: %s", configPath)
			out.Status("", "Use --force to replace it (a backup is kept)")
			return nil
		}
		if backupPath, err = config.BackupUserConfig(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(config.GetUserConfigDir(), 0o755); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigPermission, "failed to create config directory", err).
			WithDetail("path", config.GetUserConfigDir())
	}
	if err := os.WriteFile(configPath, []byte(config.UserConfigTemplate), 0o644); err != nil {
		return ierrors.New(ierrors.ErrCodeConfigPermission, "failed to write config file", err).
			WithDetail("path", configPath)
	}

	out.Success("Created user configuration")
	out.Statusf("", "Location: %s", configPath)
	if backupPath != "" {
		out.Statusf("", "Backup: %s", backupPath)
	}
	out.Status("", "Run 'amanignore config show' to verify")
	return nil
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or a single source
with --source (merged, user, project, defaults).`,
		Example: `  amanignore config show
  amanignore config show --json
  amanignore config show --source user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configForSource(g, source)
			if err != nil {
				return err
			}
			if cfg == nil {
				output.New(cmd.OutOrStdout()).Warningf("No %s configuration file found", source)
				return nil
			}
			return printConfig(cmd, cfg, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

// configForSource returns nil, nil when the requested file does not exist.
func configForSource(g *globalFlags, source string) (*config.Config, error) {
	switch source {
	case "defaults":
		return config.NewConfig(), nil
	case "user":
		return config.LoadUserConfig()
	case "project":
		root, err := g.resolveRoot()
		if err != nil {
			return nil, err
		}
		path := config.ProjectConfigPath(root)
		if path == "" {
			return nil, nil
		}
		cfg := config.NewConfig()
		if err := cfg.LoadYAML(path); err != nil {
			return nil, err
		}
		return cfg, nil
	case "merged", "":
		root, err := g.resolveRoot()
		if err != nil {
			return nil, err
		}
		return g.loadConfig(root)
	default:
		return nil, ierrors.ValidationError("unknown config source", nil).
			WithDetail("source", source).
			WithSuggestion("Use one of: merged, user, project, defaults")
	}
}

func printConfig(cmd *cobra.Command, cfg *config.Config, jsonOutput bool) error {
	if jsonOutput {
		data, err := cfg.JSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
