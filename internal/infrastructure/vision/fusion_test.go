//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"climbing-holds/internal/domain/entity"
)

// squareRegion граница квадрата 40x40 (1600 пикселей после заливки)
func squareRegion() Region {
	return Region{Points: []image.Point{{20, 20}, {59, 20}, {59, 59}, {20, 59}}}
}

func TestFuser_OverlapThreshold(t *testing.T) {
	img := blankImage(100, 100, bgrRed)
	defer img.Close()
	chalk := NewMask(100, 100)
	defer chalk.Close()

	tests := []struct {
		name     string
		rows     int // строк квадрата, покрытых цветом
		accepted bool
	}{
		{name: "five percent", rows: 2},
		{name: "exactly ten percent", rows: 4},
		{name: "twenty percent", rows: 8, accepted: true},
	}

	f := NewFuser(DefaultParams())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			colorMask := rectMask(100, 100, image.Rect(20, 20, 59, 20+tt.rows-1))
			defer colorMask.Close()

			holds := f.Fuse(context.Background(), img, colorMask, chalk, []Region{squareRegion()}, entity.LabelRed)
			if !tt.accepted {
				require.Empty(t, holds)
				return
			}
			require.Len(t, holds, 1)
			require.Equal(t, entity.Size{Width: 40, Height: tt.rows}, holds[0].Size)
			require.Equal(t, entity.RGB{255, 0, 0}, holds[0].Color)
		})
	}
}

func TestFuser_CancelledBeforeFirstRegion(t *testing.T) {
	img := blankImage(100, 100, bgrRed)
	defer img.Close()
	chalk := NewMask(100, 100)
	defer chalk.Close()
	colorMask := FullMask(100, 100)
	defer colorMask.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	holds := NewFuser(DefaultParams()).Fuse(ctx, img, colorMask, chalk, []Region{squareRegion()}, entity.LabelRed)
	require.Empty(t, holds)
}
