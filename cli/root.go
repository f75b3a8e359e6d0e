package cli

import (
	"github.com/fersoria001/clearly/config"
	"github.com/fersoria001/clearly/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "v0.2.0"

type rootOptions struct {
	logLevel string
	envFile  string
	cfg      *config.Config
	logger   *logrus.Logger
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}

// NewRootCmd builds the top level `clearly` command. Settings come from the
// env file and CLEARLY_* variables, flags override them.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "clearly",
		Short:         "clearly checks entity mappings and the database they load from",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			level := cfg.LogLevel
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			logger, err := logging.New(level, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			logger.WithField("log_level", logger.GetLevel()).Debug("configuration loaded")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error), defaults to CLEARLY_LOG_LEVEL or "+logging.DefaultLogLevel)
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "file with CLEARLY_* variables")
	root.AddCommand(NewCheckCmd(opts))
	root.AddCommand(NewStatementsCmd(opts))
	root.AddCommand(NewPingCmd(opts))
	root.AddCommand(NewVersionCmd())
	return root
}
