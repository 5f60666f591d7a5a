package periph

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func litColumns(t *testing.T, text string) (first, last, count int) {
	bounds := image.Rect(0, 0, DisplayWidth, DisplayHeight)
	img := RenderText(bounds, text)
	require.Equal(t, bounds, img.Bounds())
	first, last = -1, -1
	for x := 0; x < DisplayWidth; x++ {
		for y := 0; y < DisplayHeight; y++ {
			if img.BitAt(x, y) {
				if first < 0 {
					first = x
				}
				last = x
				count++
			}
		}
	}
	return
}

func TestRenderText(t *testing.T) {
	_, _, count := litColumns(t, "")
	require.Zero(t, count)

	first, last, count := litColumns(t, "Layer: 1")
	require.NotZero(t, count)
	require.Greater(t, last-first, 8*7)

	first, last, count = litColumns(t, "Receiving...")
	require.NotZero(t, count)
	require.LessOrEqual(t, last-first, 12*7)
}

func TestQuadratureTable(t *testing.T) {
	seq := []int{0, 1, 3, 2, 0}
	sum := 0
	for i := 1; i < len(seq); i++ {
		sum += quadrature[seq[i-1]<<2|seq[i]]
	}
	require.Equal(t, -4, sum)
	sum = 0
	for i := len(seq) - 1; i > 0; i-- {
		sum += quadrature[seq[i]<<2|seq[i-1]]
	}
	require.Equal(t, 4, sum)
}
