package chart

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/constants"
)

func sampleResult(t *testing.T) assess.Result {
	t.Helper()
	p, err := assess.Extract(assess.Input{
		Goals:       []string{"write a novel", "run 10k"},
		Habits:      []string{"morning pages"},
		Constraints: []string{"full-time job"},
		Metrics:     assess.Metrics{Discipline: 4, Clarity: 7, Energy: 3, Coherence: 6, Friction: 8},
		SuccessRate: 55,
	})
	if err != nil {
		t.Fatal(err)
	}
	return assess.Analyze(p, nil)
}

func decodeSize(t *testing.T, data []byte) int {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		t.Errorf("image is %dx%d, want square", b.Dx(), b.Dy())
	}
	return b.Dx()
}

func TestCharts(t *testing.T) {
	r := sampleResult(t)

	tests := []struct {
		name string
		draw func(size int) ([]byte, error)
	}{
		{"bars", func(size int) ([]byte, error) { return Bars(r.Score, size) }},
		{"radar", func(size int) ([]byte, error) { return Radar(r.Score, size) }},
		{"timeline", func(size int) ([]byte, error) { return Timeline([]int{40, 45}, r.Timeline, size) }},
		{"timeline projection only", func(size int) ([]byte, error) { return Timeline(nil, r.Timeline, size) }},
		{"empty timeline", func(size int) ([]byte, error) { return Timeline(nil, nil, size) }},
		{"empty score", func(size int) ([]byte, error) { return Radar(assess.Score{}, size) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.draw(constants.DefaultChartSize)
			if err != nil {
				t.Fatalf("draw error = %v", err)
			}
			if got := decodeSize(t, data); got != constants.DefaultChartSize {
				t.Errorf("size = %d, want %d", got, constants.DefaultChartSize)
			}
		})
	}
}

func TestMinimumSize(t *testing.T) {
	data, err := Bars(sampleResult(t).Score, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := decodeSize(t, data); got != minSize {
		t.Errorf("size = %d, want %d", got, minSize)
	}
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := WriteAll(dir, sampleResult(t), []int{50}, 320)
	if err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	want := []string{BarFile, RadarFile, TimelineFile}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, p, want[i])
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if got := decodeSize(t, data); got != 320 {
			t.Errorf("%s size = %d, want 320", p, got)
		}
	}
}
