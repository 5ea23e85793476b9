//go:build gocv
// +build gocv

package vision

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"climbing-holds/internal/domain/entity"
)

func TestHoldDetector_SingleRedSquare(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	result, err := d.Detect(context.Background(), redSquareImage(t), []entity.ColorLabel{entity.LabelRed})
	require.NoError(t, err)

	holds := result.Holds(entity.LabelRed)
	require.Len(t, holds, 1)
	h := holds[0]
	require.InDelta(t, 100, h.Position.X, 1)
	require.InDelta(t, 100, h.Position.Y, 1)
	require.InDelta(t, 60, h.Size.Width, 1)
	require.InDelta(t, 60, h.Size.Height, 1)
	require.Equal(t, entity.RGB{255, 0, 0}, h.Color)
	require.Equal(t, entity.LabelRed, h.Label)
	require.NotEmpty(t, h.Contour)
}

func TestHoldDetector_SingleRedCircle(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)
	data := redCircleImage(t)

	result, err := d.Detect(context.Background(), data, []entity.ColorLabel{entity.LabelRed})
	require.NoError(t, err)
	holds := result.Holds(entity.LabelRed)
	require.Len(t, holds, 1)
	h := holds[0]
	require.InDelta(t, 100, h.Position.X, 1)
	require.InDelta(t, 100, h.Position.Y, 1)
	require.InDelta(t, 60, h.Size.Width, 2)
	require.InDelta(t, 60, h.Size.Height, 2)
	require.Equal(t, entity.RGB{255, 0, 0}, h.Color)

	result, err = d.Detect(context.Background(), data, []entity.ColorLabel{entity.LabelBlue})
	require.NoError(t, err)
	require.Zero(t, result.Count())
	require.Empty(t, result.Holds(entity.LabelBlue))
}

func TestHoldDetector_AbsentColorIsEmpty(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	result, err := d.Detect(context.Background(), redSquareImage(t), []entity.ColorLabel{entity.LabelBlue})
	require.NoError(t, err)
	require.Zero(t, result.Count())
	require.Empty(t, result.Holds(entity.LabelBlue))
}

func TestHoldDetector_AllLabelsOmitsEmptyGroups(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	// серый фон: кольцо чёрного фона вокруг зацепа попало бы в метку black
	mat := blankImage(200, 200, color.RGBA{R: 90, G: 90, B: 90, A: 255})
	defer mat.Close()
	gocv.Rectangle(&mat, image.Rect(70, 70, 129, 129), bgrRed, -1)

	result, err := d.Detect(context.Background(), encodeTestImage(t, mat), nil)
	require.NoError(t, err)
	require.Equal(t, []entity.ColorLabel{entity.LabelRed}, result.Labels())
}

func TestHoldDetector_Deterministic(t *testing.T) {
	data := multiHoldImage(t)
	d := NewHoldDetector(DefaultParams(), nil)

	first, err := d.Detect(context.Background(), data, nil)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), data, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.JSONEq(t, string(a), string(b))
}

func TestHoldDetector_HoldsInsideImage(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	result, err := d.Detect(context.Background(), multiHoldImage(t), nil)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Count(), 3)

	frame := image.Rect(0, 0, 300, 300)
	for _, group := range result.Groups() {
		for _, h := range group.Holds {
			require.Positive(t, h.Size.Width)
			require.Positive(t, h.Size.Height)
			require.True(t, image.Pt(h.Position.X, h.Position.Y).In(frame), "hold %+v", h)
		}
	}
}

func TestHoldDetector_TriangleBoundsMatchContour(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	result, err := d.Detect(context.Background(), multiHoldImage(t), []entity.ColorLabel{entity.LabelGreen})
	require.NoError(t, err)
	holds := result.Holds(entity.LabelGreen)
	require.Len(t, holds, 1)
	h := holds[0]

	pv := gocv.NewPointVectorFromPoints(h.Contour.ImagePoints())
	defer pv.Close()
	want := gocv.BoundingRect(pv)

	b := h.Bounds()
	require.Equal(t, want, b)
	require.Equal(t, h.Size.Width, b.Dx())
	require.Equal(t, h.Size.Height, b.Dy())
	require.InDelta(t, 40, b.Min.X, 5)
	require.InDelta(t, 170, b.Min.Y, 5)
	// центр масс ниже центра прямоугольника, рамка от него не зависит
	require.Greater(t, h.Position.Y, (b.Min.Y+b.Max.Y)/2)
}

func TestHoldDetector_AdjacentChalkJoinsHold(t *testing.T) {
	mat := blankImage(200, 200, color.RGBA{})
	defer mat.Close()
	gocv.Rectangle(&mat, image.Rect(70, 70, 129, 129), bgrRed, -1)
	gocv.Rectangle(&mat, image.Rect(90, 125, 109, 139), bgrChalk, -1)
	gocv.Rectangle(&mat, image.Rect(10, 10, 29, 29), bgrChalk, -1)

	d := NewHoldDetector(DefaultParams(), nil)
	result, err := d.Detect(context.Background(), encodeTestImage(t, mat), []entity.ColorLabel{entity.LabelRed})
	require.NoError(t, err)

	holds := result.Holds(entity.LabelRed)
	require.Len(t, holds, 1)
	require.GreaterOrEqual(t, holds[0].Size.Height, 68)
	require.Greater(t, holds[0].Bounds().Min.X, 40)
	// мел не влияет на цвет зацепа
	require.Equal(t, entity.RGB{255, 0, 0}, holds[0].Color)
}

func TestHoldDetector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewHoldDetector(DefaultParams(), nil).Detect(ctx, redSquareImage(t), nil)
	require.NoError(t, err)
	require.Zero(t, result.Len())
}

func TestHoldDetector_UnsupportedLabelBeforeDecode(t *testing.T) {
	_, err := NewHoldDetector(DefaultParams(), nil).Detect(context.Background(), []byte("not an image"), []entity.ColorLabel{"teal"})
	require.ErrorIs(t, err, entity.ErrUnsupportedLabel)
	require.NotErrorIs(t, err, entity.ErrInvalidImage)
}

func TestHoldDetector_InvalidImage(t *testing.T) {
	d := NewHoldDetector(DefaultParams(), nil)

	_, err := d.Detect(context.Background(), []byte("not an image"), nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)

	_, err = d.Detect(context.Background(), nil, nil)
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

// multiHoldImage 300x300 с зацепами трёх цветов разной формы
func multiHoldImage(t *testing.T) []byte {
	t.Helper()
	mat := blankImage(300, 300, color.RGBA{R: 40, G: 40, B: 40, A: 255})
	defer mat.Close()

	gocv.Rectangle(&mat, image.Rect(20, 20, 79, 79), bgrRed, -1)
	gocv.Rectangle(&mat, image.Rect(150, 30, 209, 64), bgrBlue, -1)

	triangle := gocv.NewPointsVectorFromPoints([][]image.Point{{{40, 260}, {120, 260}, {70, 170}}})
	defer triangle.Close()
	gocv.FillPoly(&mat, triangle, bgrGreen)

	gocv.Rectangle(&mat, image.Rect(290, 290, 299, 299), bgrRed, -1)
	return encodeTestImage(t, mat)
}
