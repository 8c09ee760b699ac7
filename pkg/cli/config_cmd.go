package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"athenaq/internal/format"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "config",
		Short:             "Manage CLI configuration profiles",
		PersistentPreRunE: skipResolve,
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigSetProfileCmd(a))
	cmd.AddCommand(newConfigUseProfileCmd(a))

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(a.deps.stderr, "No configuration found at %s\n", ConfigPath())
				return err
			}
			if a.wantsJSON() {
				return printJSON(a.deps.stdout, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, _ = fmt.Fprint(a.deps.stdout, string(data))
			return nil
		},
	}
}

func newConfigSetProfileCmd(a *app) *cobra.Command {
	var (
		name string
		p    Profile
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if cmd.Flags().Changed("default-format") {
				if _, err := format.Parse(p.Format); err != nil {
					return err
				}
			}

			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = emptyUserConfig()
			}

			existing := cfg.Profiles[name]
			set := func(flag string, dst *string, v string) {
				if cmd.Flags().Changed(flag) {
					*dst = v
				}
			}
			set("database", &existing.Database, p.Database)
			set("output-location", &existing.OutputLocation, p.OutputLocation)
			set("workgroup", &existing.WorkGroup, p.WorkGroup)
			set("catalog", &existing.Catalog, p.Catalog)
			set("region", &existing.Region, p.Region)
			set("default-format", &existing.Format, p.Format)
			cfg.Profiles[name] = existing

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if a.wantsJSON() {
				return printJSON(a.deps.stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, _ = fmt.Fprintf(a.deps.stdout, "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	// --default-format keeps the root --format flag usable for this command's own output.
	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&p.Database, "database", "", "Database")
	cmd.Flags().StringVar(&p.OutputLocation, "output-location", "", "S3 output location")
	cmd.Flags().StringVar(&p.WorkGroup, "workgroup", "", "Athena workgroup")
	cmd.Flags().StringVar(&p.Catalog, "catalog", "", "Data catalog")
	cmd.Flags().StringVar(&p.Region, "region", "", "AWS region")
	cmd.Flags().StringVar(&p.Format, "default-format", "", "Default output format")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if a.wantsJSON() {
				return printJSON(a.deps.stdout, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(a.deps.stdout, "Active profile set to %q\n", name)
			return nil
		},
	}
}
