package pdfutils

import (
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestToPdfSpace(t *testing.T) {
	w := 200.0
	in := MarkCoordinate{X: 100, Y: 200, Width: &w}

	out := ToPdfSpace(in, ScreenToPDF)

	assert.Equal(t, 75.0, out.X)
	assert.Equal(t, 150.0, out.Y)
	if assert.NotNil(t, out.Width) {
		assert.Equal(t, 150.0, *out.Width)
	}
	assert.Equal(t, 200.0, *in.Width, "input is not modified")

	assert.Nil(t, ToPdfSpace(MarkCoordinate{X: 1, Y: 1}, ScreenToPDF).Width)
}

func TestRotatePointFormulas(t *testing.T) {
	const (
		w    = 400.0
		h    = 600.0
		offX = 3.0
		offY = -2.0
	)
	c := MarkCoordinate{X: 50, Y: 80}

	tests := []struct {
		angle int64
		want  r2.Point
	}{
		{0, r2.Point{X: c.X + offX, Y: h - c.Y + offY}},
		{90, r2.Point{X: c.Y - offY, Y: c.X + offX}},
		{180, r2.Point{X: w - c.X - offX, Y: c.Y - offY}},
		{270, r2.Point{X: w - (c.Y - offY), Y: h - (c.X + offX)}},
		{45, r2.Point{X: c.X + offX, Y: h - c.Y + offY}},
		{-90, r2.Point{X: c.X + offX, Y: h - c.Y + offY}},
	}

	for _, tt := range tests {
		got := RotatePoint(c, offX, offY, tt.angle, w, h)
		if diff := cmp.Diff(tt.want, r2.Point{X: got.X, Y: got.Y}, approx); diff != "" {
			t.Errorf("angle %d (-want +got):\n%s", tt.angle, diff)
		}
	}
}

func TestPageFrameRoundTrip(t *testing.T) {
	points := []r2.Point{
		{X: 0, Y: 0},
		{X: 12.5, Y: 99.25},
		{X: 399.999, Y: 0.001},
		{X: 1e-7, Y: 333.3333333},
	}

	for _, angle := range []int64{0, 90, 180, 270} {
		frame := PageFrame{Angle: angle, Width: 400, Height: 600}

		for _, p := range points {
			if diff := cmp.Diff(p, frame.FromPage(frame.ToPage(p)), approx); diff != "" {
				t.Errorf("angle %d display round trip (-want +got):\n%s", angle, diff)
			}
			if diff := cmp.Diff(p, frame.ToPage(frame.FromPage(p)), approx); diff != "" {
				t.Errorf("angle %d page round trip (-want +got):\n%s", angle, diff)
			}
		}
	}
}

// The displayed page corners must land on the media box corners.
func TestPageFrameCorners(t *testing.T) {
	for _, angle := range []int64{0, 90, 180, 270} {
		frame := PageFrame{Angle: angle, Width: 400, Height: 600}
		dw, dh := frame.DisplayedSize()

		got := []r2.Point{
			frame.ToPage(r2.Point{X: 0, Y: 0}),
			frame.ToPage(r2.Point{X: dw, Y: 0}),
			frame.ToPage(r2.Point{X: 0, Y: dh}),
			frame.ToPage(r2.Point{X: dw, Y: dh}),
		}

		bounds := r2.RectFromPoints(got...)
		if diff := cmp.Diff(r2.Rect{X: r1.Interval{Lo: 0, Hi: 400}, Y: r1.Interval{Lo: 0, Hi: 600}}, bounds, approx); diff != "" {
			t.Errorf("angle %d (-want +got):\n%s", angle, diff)
		}
	}
}

func TestRotateBoxUnrotatedReference(t *testing.T) {
	box := RotateBox(10, 20, 30, 40, 0, 0, 0, 400, 600)
	assert.Equal(t, Box{X1: 10, Y1: 600 - 20 - 40, X2: 40, Y2: 600 - 20}, box)

	assert.Equal(t, []float64{10, 540, 40, 580}, box.Floats())
}

func TestRotateBoxOriginalOrder(t *testing.T) {
	const (
		x, y, w, h   = 10.0, 20.0, 30.0, 40.0
		offX, offY   = 2.0, -1.0
		pageW, pageH = 400.0, 600.0
	)

	tests := []struct {
		angle int64
		want  Box
	}{
		{90, Box{y - offY, x + offX, y + h - offY, x + w + offX}},
		{180, Box{pageW - x - w - offX, y - offY, pageW - x - offX, y + h - offY}},
		{270, Box{pageW - (y - offY), pageH - (x + offX), pageW - (y + h - offY), pageH - (x + w + offX)}},
	}

	for _, tt := range tests {
		got := RotateBox(x, y, w, h, offX, offY, tt.angle, pageW, pageH)
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("angle %d (-want +got):\n%s", tt.angle, diff)
		}
	}
}

// A box and the point at its centre stay together under every rotation.
func TestRotateBoxMatchesRotatePoint(t *testing.T) {
	for _, angle := range []int64{0, 90, 180, 270} {
		box := RotateBox(50, 70, 20, 10, 4, -3, angle, 400, 600)
		centre := RotatePoint(MarkCoordinate{X: 60, Y: 75}, 4, -3, angle, 400, 600)

		if diff := cmp.Diff(r2.Point{X: centre.X, Y: centre.Y}, box.Rect().Center(), approx); diff != "" {
			t.Errorf("angle %d (-want +got):\n%s", angle, diff)
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := map[int64]int64{
		0:    0,
		90:   90,
		-90:  270,
		180:  180,
		-180: 180,
		270:  270,
		360:  0,
		450:  90,
		-450: 270,
		89:   90,
		44:   0,
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeAngle(in), "angle %d", in)
	}
}

func TestApplyPageRotation(t *testing.T) {
	frame := PageFrame{Angle: 90, Width: 400, Height: 600}

	box := RotateBox(10, 20, 30, 40, 0, 0, 90, 400, 600)
	r := ApplyPageRotation(frame, box.Floats())

	want := r2.Rect{X: r1.Interval{Lo: 10, Hi: 40}, Y: r1.Interval{Lo: 20, Hi: 60}}
	if diff := cmp.Diff(want, r, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
