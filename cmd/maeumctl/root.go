package main

import (
	"io"
	"log/slog"

	"github.com/maeumssi/maeumssi/internal/modules/notification/infrastructure/httpclient"
	"github.com/maeumssi/maeumssi/internal/shared/infrastructure/config"
	"github.com/maeumssi/maeumssi/internal/shared/logger"
	"github.com/spf13/cobra"
)

type cli struct {
	cfg     config.Config
	api     string
	token   string
	verbose bool
	log     *slog.Logger
}

func newRootCmd(cfg config.Config, in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{cfg: cfg, log: logger.Discard()}

	root := &cobra.Command{
		Use:   "maeumctl",
		Short: "Terminal client for the Maeumssi API",
		Long: `maeumctl talks to a Maeumssi server.

Tokens come from --token or MAEUM_TOKEN. Run "maeumctl login" or
"maeumctl guest" to obtain one.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if c.verbose {
				c.log = logger.NewWriter("development", cmd.ErrOrStderr())
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.api, "api", cfg.Client.BaseURL, "API base URL (MAEUM_API_URL)")
	flags.StringVar(&c.token, "token", cfg.Client.Token, "bearer token (MAEUM_TOKEN)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "write debug logs to stderr")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.guestCmd(),
		c.listCmd(),
		c.readCmd(),
		c.markAllCmd(),
		c.pushCmd(),
		c.cardCmd(),
		c.watchCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) client() *httpclient.Client {
	return httpclient.NewClient(c.api, c.token)
}
