package picking

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundsOf(t *testing.T) {
	r := BoundsOf(Point{X: 50, Y: 10}, Point{X: 20, Y: 40})
	assert.Equal(t, Region{X: 20, Y: 10, Width: 30, Height: 30}, r)

	// A purely horizontal drag still covers one row.
	r = BoundsOf(Point{X: 0, Y: 5}, Point{X: 9, Y: 5})
	assert.Equal(t, 9, r.Width)
	assert.Equal(t, 0, r.Height)
	assert.True(t, r.Clamp(100, 100).Empty(), "a flat drag covers no pixels")
}

func TestRegionClamp(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		want image.Rectangle
	}{
		{name: "inside", r: Region{X: 10, Y: 10, Width: 5, Height: 5}, want: image.Rect(10, 10, 15, 15)},
		{name: "past right and bottom", r: Region{X: 90, Y: 45, Width: 50, Height: 50}, want: image.Rect(90, 45, 100, 50)},
		{name: "negative offset", r: Region{X: -5, Y: -5, Width: 10, Height: 10}, want: image.Rect(0, 0, 5, 5)},
		{name: "fully outside", r: Region{X: 200, Y: 200, Width: 5, Height: 5}, want: image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Clamp(100, 50)
			if tt.want.Empty() {
				assert.True(t, got.Empty(), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPointRegion(t *testing.T) {
	assert.Equal(t, image.Rect(3, 4, 4, 5), PointRegion(Point{X: 3, Y: 4}).Rect())
}
