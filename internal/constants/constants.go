// Package constants provides named constants shared by both engines.
// This centralizes storage keys and fixed caps so the engines, the backup
// tool and the tests all agree on them.
package constants

import "time"

// Storage keys. Each engine owns one JSON blob per key; the _v1 suffix is
// part of the persisted contract and must not change.
const (
	// SaveKey holds the full puzzle run state.
	SaveKey = "mnemosyne_save_v1"

	// SeedHistoryKey holds the recent-seed list, newest first.
	SeedHistoryKey = "mnemosyne_seed_history_v1"

	// AssessmentHistoryKey holds the capped assessment log.
	AssessmentHistoryKey = "life_architect_history_v1"
)

// StorageKeys lists every key the engines write, in backup order.
var StorageKeys = []string{SaveKey, SeedHistoryKey, AssessmentHistoryKey}

// Puzzle run limits
const (
	// MaxRounds is the number of puzzles in a run.
	MaxRounds = 12

	// MemoryBankCap is the capacity of the rolling memory-token FIFO.
	MemoryBankCap = 14

	// SeedHistoryCap is how many recent seeds are remembered.
	SeedHistoryCap = 12

	// MinLevel and MaxLevel bound the difficulty level.
	MinLevel = 1
	MaxLevel = 7

	// StatMin and StatMax bound every player stat.
	StatMin = 0
	StatMax = 100
)

// DefaultAdvanceDelay is the pause between answering and the next puzzle
// in the interactive UI.
const DefaultAdvanceDelay = 900 * time.Millisecond

// Assessment limits
const (
	// AssessmentHistoryCap is the maximum number of stored analyses.
	AssessmentHistoryCap = 40

	// MetricMin and MetricMax bound the self-rated metrics.
	MetricMin = 1
	MetricMax = 10

	// NormalizedCap keeps one metric from dominating the score.
	NormalizedCap = 1.35

	// DefaultChartSize is the edge length in pixels of generated charts.
	DefaultChartSize = 640
)

// Backup rotation controls how many backup files are retained.
const (
	// MaxBackupRotation is the default maximum number of backup files to keep.
	MaxBackupRotation = 10
)
