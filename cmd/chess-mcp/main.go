// Package main serves chess games as MCP tools over stdio.
//
// Games live in this process only; nothing is persisted.
package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chessrules/internal/processor"
	"chessrules/internal/service"
	"chessrules/internal/transport/mcp"
)

const version = "v0.1.0"

func main() {
	// stdout carries the protocol, so logs must not touch it
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.WarnLevel)

	root := &cobra.Command{
		Use:   "chess-mcp",
		Short: "Serve chess games as MCP tools over stdio",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,

		RunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logrus.SetLevel(logrus.DebugLevel)
			}

			svc := service.New(nil, nil)
			defer svc.Shutdown(time.Second)

			logrus.WithField("version", version).Info("chess MCP server on stdio")
			return mcp.NewServer(processor.New(svc), version).ServeStdio()
		},
	}
	root.Flags().BoolP("debug", "d", false, "Log debug information to stderr")

	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
