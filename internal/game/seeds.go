package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/store"
)

// ErrInvalidSeed is returned for seeds that are not positive integers.
var ErrInvalidSeed = errors.New(MsgInvalidSeed)

// ParseSeed accepts a positive base-10 integer, surrounding space allowed.
func ParseSeed(input string) (int64, error) {
	seed, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil || seed <= 0 {
		return 0, ErrInvalidSeed
	}
	return seed, nil
}

// RandomSeed derives a seed from the wall clock: milliseconds modulo 1e9.
// Zero is bumped to 1 so the result is always a valid seed.
func RandomSeed(now time.Time) int64 {
	seed := now.UnixMilli() % 1_000_000_000
	if seed <= 0 {
		seed = 1
	}
	return seed
}

// LoadSeedHistory returns recent seeds, newest first. A missing or
// corrupt list is reported as empty; only storage failures are errors.
func LoadSeedHistory(ctx context.Context, bs store.BlobStore) ([]int64, error) {
	var seeds []int64
	ok, err := store.GetJSON(ctx, bs, constants.SeedHistoryKey, &seeds)
	if err != nil && !errors.Is(err, store.ErrCorrupt) {
		return nil, fmt.Errorf("loading seed history: %w", err)
	}
	if !ok || seeds == nil {
		return []int64{}, nil
	}
	return seeds, nil
}

// PushSeedHistory moves seed to the front of the history, dropping any
// older copy and trimming to the cap. It returns the stored list.
func PushSeedHistory(ctx context.Context, bs store.BlobStore, seed int64) ([]int64, error) {
	prev, err := LoadSeedHistory(ctx, bs)
	if err != nil {
		return nil, err
	}

	next := make([]int64, 0, constants.SeedHistoryCap)
	next = append(next, seed)
	for _, s := range prev {
		if s != seed {
			next = append(next, s)
		}
		if len(next) == constants.SeedHistoryCap {
			break
		}
	}

	if err := store.PutJSON(ctx, bs, constants.SeedHistoryKey, next); err != nil {
		return nil, err
	}
	return next, nil
}
