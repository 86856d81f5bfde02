package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type syncFlags struct {
	config     string
	workingDir string
}

// errSyncFailed makes the process exit non-zero after a failed sync
var errSyncFailed = errors.New("sync failed")

func init() {
	env := new(syncFlags)

	var syncCommand = &cobra.Command{
		Use:           "sync [-c config_file] [-w working_dir]",
		Short:         "Sync now: run add, commit, pull and push once and exit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncOnce(cmd.Context(), env)
		},
	}

	rootCmd.AddCommand(syncCommand)
	fs := syncCommand.Flags()
	fs.StringVarP(&env.config, "config", "c", "", "config file")
	fs.StringVarP(&env.workingDir, "working-dir", "w", "", "git working directory, overrides sync.working-dir")
}

func runSyncOnce(ctx context.Context, env *syncFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configFile, err := resolveConfigFile(env.config)
	if err != nil {
		return err
	}
	cfg, _, err := internalApp.LoadConfig(configFile)
	if err != nil {
		return err
	}
	if env.workingDir != "" {
		cfg.Sync.WorkingDir = env.workingDir
	}
	// One-shot runs log to the console only
	// 单次运行只输出到控制台
	cfg.Log.File = ""

	lg, err := logger.NewLogger(cfg.LoggerConfig())
	if err != nil {
		return errors.Wrap(err, "init logger failed")
	}
	defer lg.Sync()

	a, err := internalApp.NewApp(cfg, lg)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.Background())

	res, err := a.TriggerNow(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, res.Summary())
	if !res.Success {
		if res.Stdout != "" {
			fmt.Fprintln(os.Stderr, res.Stdout)
		}
		if res.Stderr != "" {
			fmt.Fprintln(os.Stderr, res.Stderr)
		}
		return errSyncFailed
	}
	return nil
}
