//go:build gocv
// +build gocv

package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
)

func TestColorMaskBuilder_RedSquare(t *testing.T) {
	img, err := decodeToMat(redSquareImage(t))
	require.NoError(t, err)
	defer img.Close()
	hsv := toHSV(img)
	defer hsv.Close()

	b := NewColorMaskBuilder(DefaultParams())

	red, err := b.Build(hsv, entity.LabelRed)
	require.NoError(t, err)
	defer red.Close()
	require.Equal(t, 60*60, red.Count())
	require.True(t, red.At(100, 100))
	require.False(t, red.At(10, 10))

	blue, err := b.Build(hsv, entity.LabelBlue)
	require.NoError(t, err)
	defer blue.Close()
	require.True(t, blue.IsEmpty())
}

func TestColorMaskBuilder_RedWrapsAroundHueZero(t *testing.T) {
	// HSV (175, 255, 255) в BGR
	img := blankImage(40, 40, color.RGBA{R: 255, G: 0, B: 43, A: 255})
	defer img.Close()
	hsv := toHSV(img)
	defer hsv.Close()

	red, err := NewColorMaskBuilder(DefaultParams()).Build(hsv, entity.LabelRed)
	require.NoError(t, err)
	defer red.Close()
	require.Equal(t, 40*40, red.Count())
}

func TestColorMaskBuilder_UnsupportedLabel(t *testing.T) {
	img := blankImage(10, 10, color.RGBA{})
	defer img.Close()
	hsv := toHSV(img)
	defer hsv.Close()

	_, err := NewColorMaskBuilder(DefaultParams()).Build(hsv, "teal")
	require.ErrorIs(t, err, entity.ErrUnsupportedLabel)
}

func TestColorMaskBuilder_Chalk(t *testing.T) {
	img := blankImage(60, 60, color.RGBA{})
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(0, 0, 29, 59), bgrChalk, -1)
	gocv.Rectangle(&img, image.Rect(30, 0, 59, 59), bgrRed, -1)
	hsv := toHSV(img)
	defer hsv.Close()

	chalk := NewColorMaskBuilder(DefaultParams()).Chalk(hsv)
	defer chalk.Close()
	require.True(t, chalk.At(10, 10))
	require.False(t, chalk.At(45, 10))
}

func TestColorMaskBuilder_BuildAll(t *testing.T) {
	img, err := decodeToMat(redSquareImage(t))
	require.NoError(t, err)
	defer img.Close()
	hsv := toHSV(img)
	defer hsv.Close()

	params := DefaultParams()
	masks, err := NewColorMaskBuilder(params).BuildAll(hsv)
	require.NoError(t, err)
	defer func() {
		for _, lm := range masks {
			lm.Mask.Close()
		}
	}()

	require.Len(t, masks, len(params.Labels))
	for i, lm := range masks {
		require.Equal(t, params.Labels[i].Label, lm.Label)
		switch lm.Label {
		case entity.LabelRed:
			require.Equal(t, 60*60, lm.Mask.Count())
		case entity.LabelBlack:
			require.Equal(t, 200*200-60*60, lm.Mask.Count())
		default:
			require.True(t, lm.Mask.IsEmpty(), "label %s", lm.Label)
		}
	}
}
