package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chessrules/internal/cli"
	"chessrules/internal/core"
	"chessrules/internal/service"
	clitransport "chessrules/internal/transport/cli"
)

// historyFile keeps readline history between sessions
var historyFile = filepath.Join(xdg.DataHome, "chessrules", "console_history")

func Root() *cobra.Command {
	var (
		theme string
		fen   string
		white string
		black string
	)

	root := &cobra.Command{
		Use:   "chess",
		Short: "Play chess against a friend at the terminal",
		Long: heredoc.Doc(`
			Play a game of chess between two people sharing one terminal.

			Moves are typed as origin and target squares, e2e4 or "e2 e4".
			Type 'help' once the game starts to list every command.
		`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			interactive := term.IsTerminal(int(os.Stdin.Fd()))

			var input cli.LineReader
			if interactive {
				rl, err := newReadlineReader(historyFile)
				if err != nil {
					return err
				}
				defer rl.Close()
				input = rl
			} else {
				input = cli.NewScannerReader(os.Stdin, os.Stdout)
			}

			view := cli.New(input, os.Stdout)
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				theme = string(cli.ThemeOff)
			}
			if err := view.SetTheme(cli.ColorTheme(theme)); err != nil {
				return err
			}

			svc := service.New(nil, nil)
			defer svc.Shutdown(time.Second)

			handler := clitransport.New(svc, view,
				core.PlayerConfig{Name: white},
				core.PlayerConfig{Name: black})

			view.ShowWelcome()
			if fen != "" {
				handler.ProcessCommand(&cli.Command{Type: cli.CmdResume, Args: strings.Fields(fen)})
			}
			return handler.Run()
		},
	}

	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")

	flags := root.Flags()
	flags.StringVar(&theme, "theme", string(cli.ThemeBrown), "Board colors: off, brown, green or gray")
	flags.StringVar(&fen, "fen", "", "Start from this FEN position instead of waiting for 'new'")
	flags.StringVar(&white, "white", "", "Name of the white player")
	flags.StringVar(&black, "black", "", "Name of the black player")

	return root
}
