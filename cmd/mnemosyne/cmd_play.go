package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvandessel/mnemosyne/internal/tui"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play the memory protocol in an interactive terminal UI",
		Long: `Open the interactive puzzle screen. The saved run is resumed when there
is one; otherwise a run starts from a clock-derived seed.

Keys:
  enter     submit the typed answer
  1-9       pick a choice
  ?         spend a hint
  ctrl+n    restart with a new seed
  esc       quit (progress is saved)

The Konami sequence followed by "d b" toggles the developer panel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s := env.newSession(env.cfg.Puzzle.Debug)
			if _, err := s.Bootstrap(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start run: %w", err)
			}

			model := tui.NewPuzzleModel(cmd.Context(), s, env.cfg.Puzzle.AdvanceDelay)
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("puzzle UI: %w", err)
			}
			return nil
		},
	}
}
