// Package cli holds the database maintenance commands of the chess server
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"chessrules/internal/storage"
)

// DB returns the "db" command group; defaultPath is used when --path is unset
func DB(defaultPath string) *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "Maintain the game archive database",
		Args:  cobra.NoArgs,
	}
	db.PersistentFlags().String("path", defaultPath, "Database file path")

	db.AddCommand(initCmd())
	db.AddCommand(deleteCmd())
	db.AddCommand(queryCmd())
	db.AddCommand(showCmd())

	return db
}

func dbPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		return "", errors.New("database path required")
	}
	return path, nil
}

func openStore(cmd *cobra.Command) (*storage.Store, string, error) {
	path, err := dbPath(cmd)
	if err != nil {
		return nil, "", err
	}
	store, err := storage.NewStore(path, false)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open store: %w", err)
	}
	return store, path, nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			store, path, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.InitDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database initialized at: %s\n", path)
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the database file",
		Long: heredoc.Doc(`
			Delete the database file and every archived game in it.

			This cannot be undone, so --force is required.
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return errors.New("refusing to delete the database without --force")
			}
			store, path, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.DeleteDB(); err != nil {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database deleted: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Really delete the database")
	return cmd
}

func queryCmd() *cobra.Command {
	var gameID, playerID string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List archived games",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			games, err := store.QueryGames(gameID, playerID)
			if err != nil {
				return err
			}
			printGames(cmd.OutOrStdout(), games)
			return nil
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "Game ID to filter (optional, * for all)")
	cmd.Flags().StringVar(&playerID, "player", "", "Player ID to filter (optional, * for all)")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Print the move log of an archived game",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			game, moves, err := store.LoadGame(args[0])
			if err != nil {
				return err
			}
			printMoves(cmd.OutOrStdout(), game, moves)
			return nil
		},
	}
}

func printGames(out io.Writer, games []storage.GameRecord) {
	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite\tBlack\tResult\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			g.GameID,
			player(g.WhiteName, g.WhitePlayerID),
			player(g.BlackName, g.BlackPlayerID),
			g.Result,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
}

func printMoves(out io.Writer, game storage.GameRecord, moves []storage.MoveRecord) {
	fmt.Fprintf(out, "Game:   %s\n", game.GameID)
	fmt.Fprintf(out, "Start:  %s\n", game.InitialFEN)
	fmt.Fprintf(out, "Result: %s\n\n", game.Result)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSide\tMove\tCaptured\tPosition")
	for _, m := range moves {
		captured := m.Captured
		if captured == "" {
			captured = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.MoveNumber, m.PlayerColor, m.Move, captured, m.FENAfterMove)
	}
	w.Flush()
}

// player renders a player as "name (id prefix)"
func player(name, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s (%s)", name, id)
}
