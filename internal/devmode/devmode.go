// Package devmode detects the hidden key inputs that toggle the developer
// panels: a key sequence for the puzzle run and a modifier chord for the
// assessment form.
//
// Keys are named the way terminal key events name them ("up", "d",
// "ctrl+d"), so detectors can be fed straight from a UI event loop.
package devmode

import "strings"

// Konami is the puzzle run's toggle sequence.
var Konami = []string{"up", "up", "down", "down", "left", "right", "left", "right", "d", "b"}

// SequenceDetector watches a rolling window of keys for a fixed sequence.
type SequenceDetector struct {
	combo  []string
	buffer []string
}

// NewSequenceDetector watches for combo. Matching is case-insensitive.
func NewSequenceDetector(combo []string) *SequenceDetector {
	c := make([]string, len(combo))
	for i, k := range combo {
		c[i] = strings.ToLower(k)
	}
	return &SequenceDetector{combo: c}
}

// NewKonamiDetector watches for the Konami sequence.
func NewKonamiDetector() *SequenceDetector {
	return NewSequenceDetector(Konami)
}

// Feed records a key and reports whether the most recent keys spell the
// sequence.
func (d *SequenceDetector) Feed(key string) bool {
	if len(d.combo) == 0 {
		return false
	}
	d.buffer = append(d.buffer, strings.ToLower(key))
	if len(d.buffer) > len(d.combo) {
		d.buffer = d.buffer[1:]
	}
	if len(d.buffer) != len(d.combo) {
		return false
	}
	for i, k := range d.combo {
		if d.buffer[i] != k {
			return false
		}
	}
	return true
}

// Pending reports how many leading keys of the sequence the most recent
// keys match. It is 0 when no match is in progress.
func (d *SequenceDetector) Pending() int {
	for n := min(len(d.buffer), len(d.combo)); n > 0; n-- {
		tail := d.buffer[len(d.buffer)-n:]
		match := true
		for i := range tail {
			if tail[i] != d.combo[i] {
				match = false
				break
			}
		}
		if match {
			return n
		}
	}
	return 0
}

// Reset clears the window.
func (d *SequenceDetector) Reset() {
	d.buffer = d.buffer[:0]
}

// Chord is a single key pressed with modifiers.
type Chord struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Key   string
}

// AssessChord is the assessment form's toggle.
var AssessChord = Chord{Ctrl: true, Key: "d"}

// ParseChord reads a key name such as "ctrl+shift+d". Modifier order does
// not matter.
func ParseChord(name string) Chord {
	var c Chord
	parts := strings.Split(strings.ToLower(name), "+")
	for i, p := range parts {
		if i == len(parts)-1 {
			c.Key = p
			break
		}
		switch p {
		case "ctrl":
			c.Ctrl = true
		case "alt":
			c.Alt = true
		case "shift":
			c.Shift = true
		}
	}
	return c
}

// String renders the chord as a key name.
func (c Chord) String() string {
	var b strings.Builder
	if c.Ctrl {
		b.WriteString("ctrl+")
	}
	if c.Alt {
		b.WriteString("alt+")
	}
	if c.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(c.Key)
	return b.String()
}

// Matches reports whether the named key is exactly this chord.
func (c Chord) Matches(name string) bool {
	return ParseChord(name) == c
}
