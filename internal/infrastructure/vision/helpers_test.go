//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var (
	bgrRed   = color.RGBA{R: 255, A: 255}
	bgrBlue  = color.RGBA{B: 255, A: 255}
	bgrGreen = color.RGBA{G: 255, A: 255}
	bgrChalk = color.RGBA{R: 235, G: 235, B: 235, A: 255}
)

// blankImage чёрный (или заданного цвета) BGR-кадр
func blankImage(rows, cols int, c color.RGBA) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0), rows, cols, gocv.MatTypeCV8UC3)
}

func encodeTestImage(t *testing.T, mat gocv.Mat) []byte {
	t.Helper()
	data, err := encodePNG(mat)
	require.NoError(t, err)
	return data
}

// redSquareImage 200x200, красный квадрат 60x60 с центром около (100,100) на чёрном
func redSquareImage(t *testing.T) []byte {
	t.Helper()
	mat := blankImage(200, 200, color.RGBA{})
	defer mat.Close()
	gocv.Rectangle(&mat, image.Rect(70, 70, 129, 129), bgrRed, -1)
	return encodeTestImage(t, mat)
}

// redCircleImage 200x200, красный круг радиуса 30 с центром (100,100) на чёрном
func redCircleImage(t *testing.T) []byte {
	t.Helper()
	mat := blankImage(200, 200, color.RGBA{})
	defer mat.Close()
	gocv.Circle(&mat, image.Pt(100, 100), 30, bgrRed, -1)
	return encodeTestImage(t, mat)
}

func decodeUnchanged(t *testing.T, data []byte) gocv.Mat {
	t.Helper()
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	require.NoError(t, err)
	require.False(t, mat.Empty())
	return mat
}
