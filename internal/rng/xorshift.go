// Package rng provides the seeded 32-bit xorshift generator that drives
// puzzle generation. The shift constants and the reseed formulas are part
// of the save-file contract: identical play sequences must reproduce
// identical puzzles, so neither may change.
package rng

// Source is a stream of floats in [0, 1).
type Source interface {
	Float64() float64
}

// XorShift32 is a 13/17/5 xorshift generator over a uint32 state.
// A zero state yields a constant zero stream.
type XorShift32 struct {
	state uint32
}

// New seeds a generator. The seed is truncated to its low 32 bits, so
// negative and oversized seeds wrap the same way an unsigned 32-bit
// conversion does.
func New(seed int64) *XorShift32 {
	return &XorShift32{state: uint32(seed)}
}

// State returns the current internal state.
func (x *XorShift32) State() uint32 {
	return x.state
}

// Next advances the generator and returns the raw 32-bit output.
func (x *XorShift32) Next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// Float64 returns the next value scaled to [0, 1).
func (x *XorShift32) Float64() float64 {
	return float64(x.Next()) / 4294967296.0
}

// IntN returns an integer in [min, max] inclusive.
func IntN(src Source, min, max int) int {
	return int(src.Float64()*float64(max-min+1)) + min
}

// Pick returns a uniformly chosen element of items. It panics on an empty
// slice, like indexing would.
func Pick[T any](src Source, items []T) T {
	return items[int(src.Float64()*float64(len(items)))]
}

// Reseed inputs.
const (
	roundFactor   = 179
	errorFactor   = 31
	hintFactor    = 11
	restoreRound  = 97
	restoreErrors = 13
)

// PuzzleSeed is the seed used right before generating the next puzzle.
func PuzzleSeed(seed int64, round, errorsTotal, hintUses int) int64 {
	return seed + int64(round)*roundFactor + int64(errorsTotal)*errorFactor + int64(hintUses)*hintFactor
}

// RestoreSeed is the seed used when a run is restored from a save.
func RestoreSeed(seed int64, round, errorsTotal int) int64 {
	return seed + int64(round)*restoreRound + int64(errorsTotal)*restoreErrors
}
