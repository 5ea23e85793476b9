//go:build gocv
// +build gocv

package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
)

func alphaAt(mat gocv.Mat, x, y int) uint8 {
	return mat.GetVecbAt(y, x)[3]
}

func isolate(t *testing.T, data []byte, strategy entity.IsolationStrategy) gocv.Mat {
	t.Helper()
	out, err := NewBackgroundIsolator(DefaultParams(), nil).Isolate(context.Background(), data, strategy)
	require.NoError(t, err)
	mat := decodeUnchanged(t, out)
	require.Equal(t, 4, mat.Channels())
	return mat
}

func TestBackgroundIsolator_GrabCutUniformImage(t *testing.T) {
	src := blankImage(100, 100, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	defer src.Close()

	mat := isolate(t, encodeTestImage(t, src), entity.IsolateGrabCut)
	defer mat.Close()

	require.Equal(t, 100, mat.Rows())
	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			a := alphaAt(mat, x, y)
			require.True(t, a == 0 || a == 255, "alpha %d at (%d,%d)", a, x, y)
		}
	}
}

func TestBackgroundIsolator_GrabCutKeepsCentralObject(t *testing.T) {
	src := blankImage(100, 100, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	defer src.Close()
	gocv.Rectangle(&src, image.Rect(35, 35, 64, 64), bgrRed, -1)

	mat := isolate(t, encodeTestImage(t, src), entity.IsolateGrabCut)
	defer mat.Close()

	require.Equal(t, uint8(255), alphaAt(mat, 50, 50))
	require.Equal(t, uint8(0), alphaAt(mat, 2, 2))
	// цвет сохранённого пикселя не меняется
	v := mat.GetVecbAt(50, 50)
	require.Equal(t, []uint8{0, 0, 255}, []uint8{v[0], v[1], v[2]})
}

func TestBackgroundIsolator_TinyImageFullyOpaque(t *testing.T) {
	src := blankImage(15, 15, color.RGBA{R: 50, G: 60, B: 70, A: 255})
	defer src.Close()

	mat := isolate(t, encodeTestImage(t, src), entity.IsolateGrabCut)
	defer mat.Close()

	for y := 0; y < mat.Rows(); y++ {
		for x := 0; x < mat.Cols(); x++ {
			require.Equal(t, uint8(255), alphaAt(mat, x, y))
		}
	}
}

func TestBackgroundIsolator_HoldsStrategy(t *testing.T) {
	mat := isolate(t, redSquareImage(t), entity.IsolateHolds)
	defer mat.Close()

	require.Equal(t, uint8(255), alphaAt(mat, 100, 100))
	require.Equal(t, uint8(0), alphaAt(mat, 5, 5))
}

func TestBackgroundIsolator_HoldsStrategyUniformImage(t *testing.T) {
	src := blankImage(80, 80, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	defer src.Close()

	mat := isolate(t, encodeTestImage(t, src), entity.IsolateHolds)
	defer mat.Close()

	channels := gocv.Split(mat)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()
	require.Zero(t, gocv.CountNonZero(channels[3]))
}

func TestBackgroundIsolator_Errors(t *testing.T) {
	b := NewBackgroundIsolator(DefaultParams(), nil)

	_, err := b.Isolate(context.Background(), []byte("garbage"), entity.IsolateGrabCut)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = b.Isolate(context.Background(), redSquareImage(t), "magic")
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := b.Isolate(ctx, redSquareImage(t), entity.IsolateGrabCut)
	require.NoError(t, err)
	require.Nil(t, out)
}
