package main

import (
	"fmt"
	"os"

	"github.com/jason-s-yu/monopoly/internal/board"
	"github.com/jason-s-yu/monopoly/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(boardCmd)
	boardCmd.AddCommand(boardCheckCmd)
	boardCmd.AddCommand(boardListCmd)
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Inspect board definitions",
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the boards in BOARDS_DIR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		names, err := catalog.Names()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

var boardCheckCmd = &cobra.Command{
	Use:   "check [BOARD...]",
	Short: "Parse and validate boards, printing their layout",
	Long:  `Loads each named board (every board in BOARDS_DIR when none are given), builds it and prints the ring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			if args, err = catalog.Names(); err != nil {
				return err
			}
		}

		failed := 0
		for _, name := range args {
			b, err := catalog.NewBoard(name, nil)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d spaces\n%s\n", name, len(b.Spaces()), b.Describe())
			b.Close()
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d boards failed", failed, len(args))
		}
		return nil
	},
}

func loadCatalog() (*board.Catalog, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return board.NewCatalog(os.DirFS(cfg.Game.BoardsDir), logrus.NewEntry(logger)), nil
}
