package metrics

import (
	"fmt"
	"math"

	"parallel-image-converter/internal/core"
)

// maxPSNR caps the PSNR of identical surfaces.
const maxPSNR = 100.0

func checkPair(reference, candidate *core.Surface) error {
	if reference == nil || candidate == nil {
		return fmt.Errorf("empty surfaces")
	}
	return core.SameDimensions(reference, candidate)
}

// squaredError sums the squared channel differences over every pixel.
func squaredError(reference, candidate *core.Surface) (sum float64, samples int) {
	g := reference.Grid()
	for y := g.StartY; y < g.StopY; y++ {
		a, b := reference.Row(y), candidate.Row(y)
		for i := range a {
			dr := float64(a[i].R) - float64(b[i].R)
			dg := float64(a[i].G) - float64(b[i].G)
			db := float64(a[i].B) - float64(b[i].B)
			sum += dr*dr + dg*dg + db*db
		}
		samples += 3 * len(a)
	}
	return sum, samples
}

// MSE is the mean squared error over all channels
type MSE struct{}

func NewMSE() *MSE { return &MSE{} }

func (m *MSE) Calculate(reference, candidate *core.Surface) (float64, error) {
	if err := checkPair(reference, candidate); err != nil {
		return 0, err
	}
	sum, n := squaredError(reference, candidate)
	return sum / float64(n), nil
}

func (m *MSE) GetName() string              { return "MSE" }
func (m *MSE) GetDescription() string       { return "Mean Squared Error" }
func (m *MSE) GetRange() (float64, float64) { return 0, 65025 }
func (m *MSE) IsHigherBetter() bool         { return false }

// PSNR is the peak signal-to-noise ratio in dB, capped at 100
type PSNR struct{}

func NewPSNR() *PSNR { return &PSNR{} }

func (p *PSNR) Calculate(reference, candidate *core.Surface) (float64, error) {
	if err := checkPair(reference, candidate); err != nil {
		return 0, err
	}
	sum, n := squaredError(reference, candidate)
	if sum == 0 {
		return maxPSNR, nil
	}
	mse := sum / float64(n)
	return math.Min(10*math.Log10(255*255/mse), maxPSNR), nil
}

func (p *PSNR) GetName() string              { return "PSNR" }
func (p *PSNR) GetDescription() string       { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) GetRange() (float64, float64) { return 0, maxPSNR }
func (p *PSNR) IsHigherBetter() bool         { return true }

// Mismatch is the fraction of pixels that differ in any channel
type Mismatch struct{}

func NewMismatch() *Mismatch { return &Mismatch{} }

func (m *Mismatch) Calculate(reference, candidate *core.Surface) (float64, error) {
	if err := checkPair(reference, candidate); err != nil {
		return 0, err
	}
	g := reference.Grid()
	diff := 0
	for y := g.StartY; y < g.StopY; y++ {
		a, b := reference.Row(y), candidate.Row(y)
		for i := range a {
			if a[i] != b[i] {
				diff++
			}
		}
	}
	return float64(diff) / float64(reference.Width()*reference.Height()), nil
}

func (m *Mismatch) GetName() string              { return "Mismatch" }
func (m *Mismatch) GetDescription() string       { return "Fraction of differing pixels" }
func (m *Mismatch) GetRange() (float64, float64) { return 0, 1 }
func (m *Mismatch) IsHigherBetter() bool         { return false }
