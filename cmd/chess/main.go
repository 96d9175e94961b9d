// Package main runs a two-player chess game at the terminal
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	// The board owns stdout; log lines go to stderr and stay quiet by default
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.WarnLevel)

	root := Root()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
