package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nvandessel/mnemosyne/internal/game"
	"github.com/spf13/cobra"
)

func newPuzzleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Play the memory protocol one command at a time",
		Long: `Play a seeded twelve-round memory puzzle run from the command line.

Every command loads the saved run, applies one step and saves again, so a
run can be continued later from here, from 'mnemosyne play' or over MCP.

Examples:
  mnemosyne puzzle new --seed 12345   # Start a run from a fixed seed
  mnemosyne puzzle random             # Start a run from a clock seed
  mnemosyne puzzle answer 18          # Answer the current puzzle
  mnemosyne puzzle hint               # Spend a hint
  mnemosyne puzzle status --debug     # Show the run with the dev panel`,
	}

	cmd.AddCommand(
		newPuzzleNewCmd(),
		newPuzzleRandomCmd(),
		newPuzzleAnswerCmd(),
		newPuzzleHintCmd(),
		newPuzzleStatusCmd(),
		newPuzzleResumeCmd(),
		newPuzzleRestartCmd(),
		newPuzzleSeedsCmd(),
	)
	return cmd
}

func (e *appEnv) newSession(debug bool) *game.Session {
	return game.NewSession(e.store,
		game.WithLogger(e.logger),
		game.WithTrace(e.trace),
		game.WithDebug(debug),
	)
}

// resumeSession loads the saved run or reports that there is none.
func (e *appEnv) resumeSession(cmd *cobra.Command, debug bool) (*game.Session, game.View, error) {
	s := e.newSession(debug)
	ok, v, err := s.Resume(cmd.Context())
	if err != nil {
		return nil, game.View{}, err
	}
	if !ok {
		return nil, game.View{}, errors.New(game.MsgNoSave)
	}
	return s, v, nil
}

func newPuzzleNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new run",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedStr, _ := cmd.Flags().GetString("seed")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s := env.newSession(false)
			var v game.View
			if seedStr == "" {
				v, err = s.RandomRun(cmd.Context())
			} else {
				var seed int64
				seed, err = game.ParseSeed(seedStr)
				if err != nil {
					return err
				}
				v, err = s.NewRun(cmd.Context(), seed)
			}
			if err != nil {
				return err
			}
			return env.showView(v)
		},
	}
	cmd.Flags().String("seed", "", "Positive integer seed (default: derived from the clock)")
	return cmd
}

func newPuzzleRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Start a new run from a clock-derived seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			v, err := env.newSession(false).RandomRun(cmd.Context())
			if err != nil {
				return err
			}
			return env.showView(v)
		},
	}
}

func newPuzzleAnswerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <text>",
		Short: "Answer the current puzzle and move to the next one",
		Long: `Answer the current puzzle. For multiple-choice puzzles pass the choice
text or its 0-based index. The next puzzle is shown immediately.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s, _, err := env.resumeSession(cmd, false)
			if err != nil {
				return err
			}

			res, err := s.Submit(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, game.ErrNoActivePuzzle) {
				return errors.New(game.MsgNoActive)
			}
			if err != nil {
				return err
			}
			next, err := s.Advance(cmd.Context())
			if err != nil {
				return err
			}

			if env.jsonOut {
				return env.printJSON(map[string]interface{}{
					"correct":  res.Correct,
					"expected": res.Expected,
					"feedback": res.View.Feedback,
					"view":     next,
				})
			}
			fmt.Fprintln(env.out, res.View.Feedback.Message)
			fmt.Fprintln(env.out)
			writeView(env.out, next)
			return nil
		},
	}
}

func newPuzzleHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint",
		Short: "Spend a hint on the current puzzle",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s, _, err := env.resumeSession(cmd, false)
			if err != nil {
				return err
			}
			res, err := s.Hint(cmd.Context())
			if errors.Is(err, game.ErrNoActivePuzzle) {
				return errors.New(game.MsgNoActive)
			}
			if err != nil {
				return err
			}

			if env.jsonOut {
				return env.printJSON(res)
			}
			fmt.Fprintln(env.out, res.Text)
			if res.Granted {
				fmt.Fprintf(env.out, "Hints remaining: %d\n", res.Remaining)
			}
			return nil
		},
	}
}

func newPuzzleStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved run",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			s := env.newSession(debug)
			ok, _, err := s.Resume(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				if env.jsonOut {
					return env.printJSON(map[string]interface{}{"active": false, "message": game.MsgNoSave})
				}
				fmt.Fprintln(env.out, game.MsgNoSave)
				return nil
			}
			return env.showView(s.View())
		},
	}
	cmd.Flags().Bool("debug", false, "Include the developer panel")
	return cmd
}

func newPuzzleResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Restore the saved run",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			_, v, err := env.resumeSession(cmd, false)
			if err != nil {
				return err
			}
			return env.showView(v)
		},
	}
}

func newPuzzleRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Discard the saved run and start a random one",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			v, err := env.newSession(false).Restart(cmd.Context())
			if err != nil {
				return err
			}
			return env.showView(v)
		},
	}
}

func newPuzzleSeedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seeds",
		Short: "List recently played seeds, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			seeds, err := game.LoadSeedHistory(cmd.Context(), env.store)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.printJSON(map[string]interface{}{"seeds": seeds, "count": len(seeds)})
			}
			if len(seeds) == 0 {
				fmt.Fprintln(env.out, "No seeds played yet.")
				return nil
			}
			strs := make([]string, len(seeds))
			for i, s := range seeds {
				strs[i] = strconv.FormatInt(s, 10)
			}
			fmt.Fprintf(env.out, "Recent seeds: %s\n", strings.Join(strs, ", "))
			return nil
		},
	}
}

func (e *appEnv) showView(v game.View) error {
	if e.jsonOut {
		return e.printJSON(v)
	}
	writeView(e.out, v)
	return nil
}

// writeView prints a view as plain text.
func writeView(w io.Writer, v game.View) {
	fmt.Fprintln(w, v.Title)
	fmt.Fprintf(w, "Seed %d  Round %s  Errors %d\n\n", v.Seed, v.RoundLabel, v.Errors)
	if v.Prompt != "" {
		fmt.Fprintln(w, v.Prompt)
	}
	for i, c := range v.Choices {
		fmt.Fprintf(w, "  [%d] %s\n", i, c)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stress %d  Lucidity %d  Distortion %d  Load %d\n",
		v.Stats.Stress, v.Stats.Lucidity, v.Stats.Distortion, v.Stats.CognitiveLoad)
	if v.Narrative != "" {
		fmt.Fprintln(w, v.Narrative)
	}
	if v.Feedback.Message != "" {
		fmt.Fprintf(w, "> %s\n", v.Feedback.Message)
	}
	if v.Debug != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, v.Debug.JSON())
	}
}
