package cmd

import (
	"fmt"

	internalApp "github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/pkg/fileurl"

	"github.com/spf13/cobra"
)

func init() {
	var configFile string

	var checkCommand = &cobra.Command{
		Use:          "check-config [-c config_file]",
		Short:        "Load and validate the config file, then print the effective sync settings",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveConfigFile(configFile)
			if err != nil {
				return err
			}
			cfg, realpath, err := internalApp.LoadConfig(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", realpath)
			fmt.Fprintf(out, "Interval: %s\n", describeInterval(cfg.Sync.Interval))
			fmt.Fprintf(out, "Working dir: %q (exists: %v)\n", cfg.Sync.WorkingDir, cfg.Sync.WorkingDir != "" && fileurl.IsDir(cfg.Sync.WorkingDir))
			fmt.Fprintf(out, "Dirty check: %s\n", cfg.Sync.DirtyCheck)
			fmt.Fprintf(out, "Command timeout: %s\n", describeTimeout(cfg.Sync.CommandTimeout))
			fmt.Fprintf(out, "Mail notify: %v\n", cfg.Notify.Mail.IsEnabled)
			fmt.Fprintf(out, "Private listen: %q\n", cfg.Server.PrivateHttpListen)
			return nil
		},
	}

	rootCmd.AddCommand(checkCommand)
	checkCommand.Flags().StringVarP(&configFile, "config", "c", "", "config file")
}

func describeInterval(seconds int) string {
	if seconds <= 0 {
		return "disabled (manual sync only)"
	}
	return fmt.Sprintf("%ds", seconds)
}

func describeTimeout(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
