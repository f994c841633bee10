package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jason-s-yu/monopoly/internal/game"
	"github.com/jason-s-yu/monopoly/internal/handlers"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("name", "n", "", "Player name (required)")
	playCmd.Flags().StringP("piece", "p", "car", "Player piece")
	playCmd.Flags().StringP("board", "b", "", "Board to play on (defaults to DEFAULT_BOARD)")
	playCmd.Flags().Bool("offline", false, "Do not serve the game to websocket players")
	_ = playCmd.MarkFlagRequired("name")

	playCmd.Long += "\n\nActions: " + strings.Join(game.ActionNames(), ", ")
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Create a game and play it from this terminal",
	Long: `Creates a game and seats you in it. Each line on stdin is an action:
a JSON object such as {"action":"bid","bid":120}, or one of the shorthands
"roll", "end-turn", "buy <spaceid>". Responses are printed as JSON lines.
Unless --offline is given, the game is also served so others can join it
at /games/<id>/ws.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	piece, _ := cmd.Flags().GetString("piece")
	boardName, _ := cmd.Flags().GetString("board")
	offline, _ := cmd.Flags().GetBool("offline")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	g, err := a.server.CreateGame(boardName, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "game %s\n", g.ID)

	if !offline {
		go func() {
			if err := a.listen(ctx); err != nil {
				a.logger.WithError(err).Error("server exited")
			}
		}()
	}

	client := handlers.NewTerminalClient(cmd.InOrStdin(), cmd.OutOrStdout())
	err = a.server.Play(ctx, g.ID, client, game.Details{Name: name, Piece: piece})
	if errors.Is(err, io.EOF) || errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}
