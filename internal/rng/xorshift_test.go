package rng

import "testing"

func TestXorShift32_KnownStream(t *testing.T) {
	tests := []struct {
		name string
		seed int64
		want []uint32
	}{
		{"seed 12345", 12345, []uint32{3336926330, 1697253807, 2816511904}},
		{"seed 1", 1, []uint32{270369, 67634689, 2647435461}},
		{"negative seed wraps", -1, []uint32{253983, 4228382207, 1958451267}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.seed)
			for i, want := range tt.want {
				if got := g.Next(); got != want {
					t.Errorf("Next() #%d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestXorShift32_Float64Range(t *testing.T) {
	g := New(987654321)
	for i := 0; i < 10000; i++ {
		f := g.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v, out of [0,1)", f)
		}
	}
}

func TestXorShift32_Float64MatchesNext(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 5; i++ {
		raw := a.Next()
		f := b.Float64()
		if f != float64(raw)/4294967296.0 {
			t.Errorf("step %d: Float64() = %v, want %v", i, f, float64(raw)/4294967296.0)
		}
	}
}

func TestXorShift32_ZeroStateIsStuck(t *testing.T) {
	g := New(0)
	for i := 0; i < 3; i++ {
		if v := g.Next(); v != 0 {
			t.Fatalf("zero state produced %d", v)
		}
	}
}

func TestXorShift32_Reproducible(t *testing.T) {
	a := New(777)
	b := New(777)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("streams diverged at step %d", i)
		}
	}
}

type fixedSource []float64

func (f *fixedSource) Float64() float64 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func TestIntN(t *testing.T) {
	tests := []struct {
		name     string
		r        float64
		min, max int
		want     int
	}{
		{"low end", 0, 2, 9, 2},
		{"high end", 0.999999, 2, 9, 9},
		{"middle", 0.5, 0, 9, 5},
		{"single value", 0.7, 4, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := fixedSource{tt.r}
			if got := IntN(&src, tt.min, tt.max); got != tt.want {
				t.Errorf("IntN(%v, %d, %d) = %d, want %d", tt.r, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestIntN_AlwaysInRange(t *testing.T) {
	g := New(31337)
	for i := 0; i < 5000; i++ {
		v := IntN(g, 4, 8)
		if v < 4 || v > 8 {
			t.Fatalf("IntN(4, 8) = %d", v)
		}
	}
}

func TestPick(t *testing.T) {
	items := []string{"a", "b", "c"}
	src := fixedSource{0, 0.34, 0.99}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got := Pick(&src, items); got != w {
			t.Errorf("Pick #%d = %q, want %q", i, got, w)
		}
	}
}

func TestPuzzleSeed(t *testing.T) {
	tests := []struct {
		seed                    int64
		round, errors, hintUses int
		want                    int64
	}{
		{12345, 0, 0, 0, 12345},
		{12345, 1, 0, 0, 12345 + 179},
		{100, 2, 3, 4, 100 + 2*179 + 3*31 + 4*11},
	}
	for _, tt := range tests {
		if got := PuzzleSeed(tt.seed, tt.round, tt.errors, tt.hintUses); got != tt.want {
			t.Errorf("PuzzleSeed(%d, %d, %d, %d) = %d, want %d", tt.seed, tt.round, tt.errors, tt.hintUses, got, tt.want)
		}
	}
}

func TestRestoreSeed(t *testing.T) {
	if got, want := RestoreSeed(500, 3, 2), int64(500+3*97+2*13); got != want {
		t.Errorf("RestoreSeed = %d, want %d", got, want)
	}
}
