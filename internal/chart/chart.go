// Package chart draws the assessment charts as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/constants"
)

// Chart file names written by WriteAll.
const (
	BarFile      = "bars.png"
	RadarFile    = "radar.png"
	TimelineFile = "timeline.png"
)

// minSize keeps labels legible.
const minSize = 200

var (
	background = color.NRGBA{0x10, 0x14, 0x1f, 0xff}
	gridColor  = color.NRGBA{0x3a, 0x40, 0x55, 0xff}
	labelColor = color.NRGBA{0xd8, 0xdc, 0xe8, 0xff}
	current    = color.NRGBA{0x5b, 0xc0, 0xeb, 0xff}
	required   = color.NRGBA{0xf2, 0x8c, 0x5b, 0xff}
	radarFill  = color.NRGBA{0x5b, 0xc0, 0xeb, 0x55}
	projection = color.NRGBA{0x9b, 0xe5, 0x64, 0xff}
)

func newCanvas(size int) (*gg.Context, float64) {
	size = max(size, minSize)
	dc := gg.NewContext(size, size)
	dc.SetColor(background)
	dc.Clear()
	return dc, float64(size)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Bars draws current against required level for each metric.
func Bars(s assess.Score, size int) ([]byte, error) {
	dc, sz := newCanvas(size)
	pad := sz * 0.1
	top, bottom := pad, sz-pad
	left, right := pad, sz-pad/2
	h := bottom - top

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for v := 0; v <= 10; v += 2 {
		y := bottom - h*float64(v)/constants.MetricMax
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(fmt.Sprint(v), left-6, y, 1, 0.5)
		dc.SetColor(gridColor)
	}

	n := float64(len(s.Metrics))
	if n == 0 {
		return encode(dc)
	}
	slot := (right - left) / n
	bw := slot * 0.3
	for i, ms := range s.Metrics {
		x := left + slot*float64(i) + slot*0.15

		dc.SetColor(current)
		ch := h * ms.Current / constants.MetricMax
		dc.DrawRectangle(x, bottom-ch, bw, ch)
		dc.Fill()

		dc.SetColor(required)
		rh := h * ms.Required / constants.MetricMax
		dc.DrawRectangle(x+bw+2, bottom-rh, bw, rh)
		dc.Fill()

		dc.SetColor(labelColor)
		dc.DrawStringAnchored(ms.Metric.Label(), x+bw, bottom+14, 0.5, 0.5)
	}

	dc.SetColor(labelColor)
	dc.DrawStringAnchored(fmt.Sprintf("Score %d", s.Value), sz/2, pad/2, 0.5, 0.5)
	return encode(dc)
}

// Radar draws the normalized metrics on a 0 to NormalizedCap scale.
func Radar(s assess.Score, size int) ([]byte, error) {
	dc, sz := newCanvas(size)
	cx, cy := sz/2, sz/2
	radius := sz * 0.36
	n := len(s.Metrics)
	if n < 3 {
		return encode(dc)
	}

	angle := func(i int) float64 {
		return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	}

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for ring := 1; ring <= 4; ring++ {
		r := radius * float64(ring) / 4
		for i := 0; i < n; i++ {
			a := angle(i)
			dc.LineTo(cx+r*math.Cos(a), cy+r*math.Sin(a))
		}
		dc.ClosePath()
		dc.Stroke()
	}

	for i, ms := range s.Metrics {
		a := angle(i)
		dc.SetColor(gridColor)
		dc.DrawLine(cx, cy, cx+radius*math.Cos(a), cy+radius*math.Sin(a))
		dc.Stroke()

		lr := radius + 22
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(ms.Metric.Label(), cx+lr*math.Cos(a), cy+lr*math.Sin(a), 0.5, 0.5)
	}

	for i, ms := range s.Metrics {
		a := angle(i)
		r := radius * ms.Normalized / constants.NormalizedCap
		dc.LineTo(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	dc.ClosePath()
	dc.SetColor(radarFill)
	dc.FillPreserve()
	dc.SetColor(current)
	dc.SetLineWidth(2.5)
	dc.Stroke()

	return encode(dc)
}

// Timeline draws past scores followed by the projected months.
func Timeline(past []int, projected []int, size int) ([]byte, error) {
	dc, sz := newCanvas(size)
	pad := sz * 0.1
	left, right := pad, sz-pad/2
	top, bottom := pad, sz-pad

	points := len(past) + len(projected)
	if points == 0 {
		return encode(dc)
	}

	dc.SetColor(gridColor)
	dc.SetLineWidth(1)
	for v := 0; v <= 100; v += 25 {
		y := bottom - (bottom-top)*float64(v)/100
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
	}

	step := (right - left) / float64(max(1, points-1))
	xy := func(i, v int) (float64, float64) {
		return left + step*float64(i), bottom - (bottom-top)*float64(v)/100
	}

	line := func(from int, values []int, c color.Color) {
		if len(values) == 0 {
			return
		}
		dc.SetColor(c)
		dc.SetLineWidth(2)
		for i, v := range values {
			x, y := xy(from+i, v)
			dc.LineTo(x, y)
		}
		dc.Stroke()
		for i, v := range values {
			x, y := xy(from+i, v)
			dc.DrawCircle(x, y, 3)
			dc.Fill()
		}
	}

	line(0, past, current)
	if len(past) > 0 && len(projected) > 0 {
		// join the last measured point to the first projection
		line(len(past)-1, append([]int{past[len(past)-1]}, projected...), projection)
	} else {
		line(len(past), projected, projection)
	}

	dc.SetColor(labelColor)
	dc.DrawStringAnchored("0", left-6, bottom, 1, 0.5)
	dc.DrawStringAnchored("100", left-6, top, 1, 0.5)
	return encode(dc)
}

// WriteAll renders the three charts for r into dir and returns the file
// paths in bar, radar, timeline order.
func WriteAll(dir string, r assess.Result, past []int, size int) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	type render struct {
		name string
		draw func() ([]byte, error)
	}
	renders := []render{
		{BarFile, func() ([]byte, error) { return Bars(r.Score, size) }},
		{RadarFile, func() ([]byte, error) { return Radar(r.Score, size) }},
		{TimelineFile, func() ([]byte, error) { return Timeline(past, r.Timeline, size) }},
	}

	paths := make([]string, 0, len(renders))
	for _, rd := range renders {
		data, err := rd.draw()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", rd.name, err)
		}
		path := filepath.Join(dir, rd.name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", rd.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
