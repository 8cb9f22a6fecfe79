package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/game"
	"github.com/nvandessel/mnemosyne/internal/ratelimit"
)

// PuzzleStateURI is the resource holding the current puzzle screen.
const PuzzleStateURI = "mnemosyne://puzzle/state"

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "puzzle_new_run",
		Description: "Start a new puzzle run from a seed (or a clock-derived seed) and show the first puzzle",
	}, s.handlePuzzleNewRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "puzzle_state",
		Description: "Show the current puzzle screen: prompt, choices, stats, round and feedback",
	}, s.handlePuzzleState)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "puzzle_answer",
		Description: "Answer the current puzzle and advance to the next puzzle or the ending",
	}, s.handlePuzzleAnswer)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "puzzle_hint",
		Description: "Spend a hint on the current puzzle; refused once the level's allowance is used",
	}, s.handlePuzzleHint)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "puzzle_seeds",
		Description: "List recently played seeds, newest first",
	}, s.handlePuzzleSeeds)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "assess_analyze",
		Description: "Score a self-assessment, rank the gaps, project six months ahead and draft a weekly plan",
	}, s.handleAssessAnalyze)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "assess_history",
		Description: "List recorded assessments, oldest first",
	}, s.handleAssessHistory)
}

func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         PuzzleStateURI,
		Name:        "mnemosyne-puzzle-state",
		Description: "The current puzzle screen as JSON.",
		MIMEType:    "application/json",
	}, s.handlePuzzleStateResource)
}

func (s *Server) handlePuzzleStateResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.session.View(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode puzzle state: %w", err)
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: PuzzleStateURI, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

// handlePuzzleNewRun implements the puzzle_new_run tool.
func (s *Server) handlePuzzleNewRun(ctx context.Context, req *sdk.CallToolRequest, args PuzzleNewRunInput) (_ *sdk.CallToolResult, _ PuzzleViewOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("puzzle_new_run", start, retErr, sanitizeToolParams(map[string]any{"seed": args.Seed}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "puzzle_new_run"); err != nil {
		return nil, PuzzleViewOutput{}, err
	}

	var v game.View
	var err error
	if args.Seed == 0 {
		v, err = s.session.RandomRun(ctx)
	} else {
		v, err = s.session.NewRun(ctx, args.Seed)
	}
	if err != nil {
		return nil, PuzzleViewOutput{}, err
	}

	return nil, PuzzleViewOutput{
		View:    v,
		Message: fmt.Sprintf("Run started with seed %d.", v.Seed),
	}, nil
}

// handlePuzzleState implements the puzzle_state tool.
func (s *Server) handlePuzzleState(ctx context.Context, req *sdk.CallToolRequest, args PuzzleStateInput) (_ *sdk.CallToolResult, _ PuzzleViewOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("puzzle_state", start, retErr, sanitizeToolParams(map[string]any{"debug": args.Debug}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "puzzle_state"); err != nil {
		return nil, PuzzleViewOutput{}, err
	}

	st := s.session.State()
	if st == nil {
		return nil, PuzzleViewOutput{Message: game.MsgNoSave}, nil
	}

	v := game.BuildView(st, s.session.View().Feedback, args.Debug)
	return nil, PuzzleViewOutput{View: v, Message: v.Feedback.Message}, nil
}

// handlePuzzleAnswer implements the puzzle_answer tool. The run advances
// straight away; there is no presentation delay over MCP.
func (s *Server) handlePuzzleAnswer(ctx context.Context, req *sdk.CallToolRequest, args PuzzleAnswerInput) (_ *sdk.CallToolResult, _ PuzzleAnswerOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("puzzle_answer", start, retErr, sanitizeToolParams(map[string]any{"answer": args.Answer}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "puzzle_answer"); err != nil {
		return nil, PuzzleAnswerOutput{}, err
	}
	if strings.TrimSpace(args.Answer) == "" {
		return nil, PuzzleAnswerOutput{}, fmt.Errorf("'answer' parameter is required")
	}

	res, err := s.session.Submit(ctx, args.Answer)
	if errors.Is(err, game.ErrNoActivePuzzle) {
		return nil, PuzzleAnswerOutput{}, errors.New(game.MsgNoActive)
	}
	if err != nil {
		return nil, PuzzleAnswerOutput{}, err
	}
	message := res.View.Feedback.Message

	v, err := s.session.Advance(ctx)
	if err != nil {
		return nil, PuzzleAnswerOutput{}, err
	}

	return nil, PuzzleAnswerOutput{
		Correct:  res.Correct,
		Expected: res.Expected,
		View:     v,
		Message:  message,
	}, nil
}

// handlePuzzleHint implements the puzzle_hint tool.
func (s *Server) handlePuzzleHint(ctx context.Context, req *sdk.CallToolRequest, args PuzzleHintInput) (_ *sdk.CallToolResult, _ PuzzleHintOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("puzzle_hint", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "puzzle_hint"); err != nil {
		return nil, PuzzleHintOutput{}, err
	}

	res, err := s.session.Hint(ctx)
	if errors.Is(err, game.ErrNoActivePuzzle) {
		return nil, PuzzleHintOutput{}, errors.New(game.MsgNoActive)
	}
	if err != nil {
		return nil, PuzzleHintOutput{}, err
	}
	return nil, PuzzleHintOutput{Granted: res.Granted, Text: res.Text, Remaining: res.Remaining}, nil
}

// handlePuzzleSeeds implements the puzzle_seeds tool.
func (s *Server) handlePuzzleSeeds(ctx context.Context, req *sdk.CallToolRequest, args PuzzleSeedsInput) (_ *sdk.CallToolResult, _ PuzzleSeedsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("puzzle_seeds", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "puzzle_seeds"); err != nil {
		return nil, PuzzleSeedsOutput{}, err
	}

	seeds, err := game.LoadSeedHistory(ctx, s.store)
	if err != nil {
		return nil, PuzzleSeedsOutput{}, err
	}
	return nil, PuzzleSeedsOutput{Seeds: seeds, Count: len(seeds)}, nil
}

// handleAssessAnalyze implements the assess_analyze tool.
func (s *Server) handleAssessAnalyze(ctx context.Context, req *sdk.CallToolRequest, args AssessAnalyzeInput) (_ *sdk.CallToolResult, _ AssessAnalyzeOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("assess_analyze", start, retErr, sanitizeToolParams(map[string]any{
			"mode":         args.Mode,
			"record":       !args.DryRun,
			"goals":        len(args.Goals),
			"metrics":      args.Metrics != nil,
			"success_rate": args.SuccessRate,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "assess_analyze"); err != nil {
		return nil, AssessAnalyzeOutput{}, err
	}

	in := assess.Input{
		Mode:        constants.AssessMode(args.Mode),
		Goals:       args.Goals,
		Habits:      args.Habits,
		Constraints: args.Constraints,
		Priorities:  args.Priorities,
		Metrics:     assess.DefaultMetrics(),
		SuccessRate: args.SuccessRate,
	}
	if args.Metrics != nil {
		in.Metrics = *args.Metrics
	}

	res, err := s.engine.Run(ctx, in, !args.DryRun)
	if err != nil {
		return nil, AssessAnalyzeOutput{}, fmt.Errorf("analysis failed: %w", err)
	}

	msg := fmt.Sprintf("Score %d/100, %s plan with %d actions.", res.Score.Value, res.Plan.Branch, len(res.Plan.Actions))
	if res.ID != "" {
		msg += " Recorded as " + res.ID + "."
	}
	return nil, AssessAnalyzeOutput{Result: res, Message: msg}, nil
}

// handleAssessHistory implements the assess_history tool.
func (s *Server) handleAssessHistory(ctx context.Context, req *sdk.CallToolRequest, args AssessHistoryInput) (_ *sdk.CallToolResult, _ AssessHistoryOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("assess_history", start, retErr, sanitizeToolParams(map[string]any{"last": args.Last}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "assess_history"); err != nil {
		return nil, AssessHistoryOutput{}, err
	}
	if args.Last < 0 {
		return nil, AssessHistoryOutput{}, fmt.Errorf("'last' must be non-negative, got %d", args.Last)
	}

	entries, err := s.engine.History(ctx, args.Last)
	if err != nil {
		return nil, AssessHistoryOutput{}, err
	}
	return nil, AssessHistoryOutput{Entries: entries, Count: len(entries)}, nil
}
