package main

import (
	"bookscanner/internal/app"
	"bookscanner/internal/config"
	"bookscanner/internal/logging"

	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	app        *app.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "bookscan",
		Short:         "Catalog books from photos of their covers",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newScanCmd(c),
		newListCmd(c),
		newExportCmd(c),
		newStatsCmd(c),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	c.app, err = app.Build(cmd.Context(), cfg, logger)
	return err
}
