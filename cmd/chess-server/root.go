package main

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chessrules/cmd/chess-server/cli"
)

const version = "v0.1.0"

// defaultStoragePath is where games are archived unless told otherwise
var defaultStoragePath = filepath.Join(xdg.DataHome, "chessrules", "chess.db")

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:  "chess-server",
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case cmd.Flag("trace").Changed:
				logrus.SetLevel(logrus.TraceLevel)
			case cmd.Flag("debug").Changed:
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().BoolP("debug", "d", false, "Show Debug Information")

	root.Version = version
	root.SetVersionTemplate(version + "\n")

	root.AddCommand(Serve())
	root.AddCommand(cli.DB(defaultStoragePath))

	return root
}
