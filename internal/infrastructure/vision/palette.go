package vision

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"climbing-holds/internal/domain/entity"
)

// maxPaletteSamples ограничивает выборку для k-means
const maxPaletteSamples = 4096

// representativeColor средний цвет пикселей зацепа. При dominant ищется
// самый крупный кластер в HSV; k-means инициализируется случайно, поэтому
// этот режим не даёт побитово одинаковый результат.
func representativeColor(samples []entity.RGB, fallback entity.RGB, dominant bool, k int) entity.RGB {
	if len(samples) == 0 {
		return fallback
	}
	if dominant && k > 1 && len(samples) >= k {
		if c, ok := dominantColor(samples, k); ok {
			return c
		}
	}
	return meanColor(samples)
}

func meanColor(samples []entity.RGB) entity.RGB {
	channels := [3][]float64{
		make([]float64, len(samples)),
		make([]float64, len(samples)),
		make([]float64, len(samples)),
	}
	for i, s := range samples {
		for ch := 0; ch < 3; ch++ {
			channels[ch][i] = float64(s[ch])
		}
	}

	var out entity.RGB
	for ch := 0; ch < 3; ch++ {
		out[ch] = clampByte(stat.Mean(channels[ch], nil))
	}
	return out
}

func dominantColor(samples []entity.RGB, k int) (entity.RGB, bool) {
	step := 1
	if len(samples) > maxPaletteSamples {
		step = len(samples) / maxPaletteSamples
	}

	var observations clusters.Observations
	for i := 0; i < len(samples); i += step {
		s := samples[i]
		c := colorful.Color{R: float64(s[0]) / 255, G: float64(s[1]) / 255, B: float64(s[2]) / 255}
		h, sat, v := c.Hsv()
		observations = append(observations, clusters.Coordinates{h / 360, sat, v})
	}
	if len(observations) < k {
		return entity.RGB{}, false
	}

	partition, err := kmeans.New().Partition(observations, k)
	if err != nil {
		return entity.RGB{}, false
	}

	best := -1
	for i, cl := range partition {
		if best < 0 || len(cl.Observations) > len(partition[best].Observations) {
			best = i
		}
	}
	if best < 0 || len(partition[best].Observations) == 0 {
		return entity.RGB{}, false
	}

	center := partition[best].Center
	r, g, b := colorful.Hsv(center[0]*360, center[1], center[2]).Clamped().RGB255()
	return entity.RGB{r, g, b}, true
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
