// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"wtosc/internal/log"
	"wtosc/pkg/bitint"
)

var logger = log.With("analysis")

// WindowFunc defines the type for selecting an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case BartlettHann:
		return "BartlettHann"
	case Blackman:
		return "Blackman"
	case BlackmanNuttall:
		return "BlackmanNuttall"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	case Lanczos:
		return "Lanczos"
	case Nuttall:
		return "Nuttall"
	default:
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
}

// SpectrumAnalyzer keeps a sliding window over the most recent fftSize
// rendered samples and publishes its magnitude spectrum after every block.
type SpectrumAnalyzer struct {
	fft        *fourier.FFT
	fftSize    int
	sampleRate float64

	// Owned by the render goroutine.
	history []float32
	pos     int
	input   []float64
	coeffs  []complex128
	scratch []float64
	window  []float64
	scale   float64

	// Published spectrum, guarded by mu.
	mu        sync.RWMutex
	magnitude []float64
	frames    uint64
	dropped   uint64
}

// Compile-time checks for interface implementations.
var _ ClosableProcessor = (*SpectrumAnalyzer)(nil)
var _ FFTResultProvider = (*SpectrumAnalyzer)(nil)

// FFTSizeFor returns the smallest power-of-2 window whose bin spacing at
// sampleRate is no wider than resolutionHz, or 0 when either argument is not
// positive or the window would exceed 1<<30 points.
func FFTSizeFor(sampleRate, resolutionHz float64) int {
	if !(sampleRate > 0) || !(resolutionHz > 0) {
		return 0
	}
	n := math.Ceil(sampleRate / resolutionHz)
	if !(n <= 1<<30) {
		return 0
	}
	return bitint.NextPowerOfTwo(int(n))
}

// NewSpectrumAnalyzer returns an analyzer for fftSize-point windows.
// fftSize must be a power of 2.
func NewSpectrumAnalyzer(fftSize int, sampleRate float64, windowType WindowFunc) (*SpectrumAnalyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	coeffs := make([]float64, fftSize)
	applyWindow(coeffs, windowType)

	// FFT output size for real input is N/2 + 1 complex values.
	bins := fftSize/2 + 1

	logger.Debugf("spectrum analyzer: size %d, sample rate %.1f Hz, window %v", fftSize, sampleRate, windowType)

	return &SpectrumAnalyzer{
		fft:        fourier.NewFFT(fftSize),
		fftSize:    fftSize,
		sampleRate: sampleRate,
		history:    make([]float32, fftSize),
		input:      make([]float64, fftSize),
		coeffs:     make([]complex128, bins),
		scratch:    make([]float64, bins),
		window:     coeffs,
		scale:      2 / floats.Sum(coeffs),
		magnitude:  make([]float64, bins),
	}, nil
}

// Process appends block to the sliding window, transforms it and publishes
// the magnitudes. When a reader holds the spectrum the frame is dropped
// instead of blocking the render goroutine.
func (a *SpectrumAnalyzer) Process(block []float32) {
	if len(block) >= a.fftSize {
		copy(a.history, block[len(block)-a.fftSize:])
		a.pos = 0
	} else {
		n := copy(a.history[a.pos:], block)
		copy(a.history, block[n:])
		a.pos = (a.pos + len(block)) % a.fftSize
	}

	// Oldest sample first.
	for i := range a.fftSize {
		a.input[i] = float64(a.history[(a.pos+i)%a.fftSize]) * a.window[i]
	}
	a.fft.Coefficients(a.coeffs, a.input)

	// Normalized by the window gain so a sinusoid reads its amplitude.
	for i, c := range a.coeffs {
		a.scratch[i] = cmplx.Abs(c) * a.scale
	}

	if !a.mu.TryLock() {
		a.dropped++
		return
	}
	copy(a.magnitude, a.scratch)
	a.frames++
	a.mu.Unlock()
}

// Magnitudes returns a copy of the latest spectrum.
// NOTE: This method allocates. Use MagnitudesInto from loops.
func (a *SpectrumAnalyzer) Magnitudes() []float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]float64(nil), a.magnitude...)
}

// MagnitudesInto copies the latest spectrum into dst, which must have
// exactly FFTSize()/2+1 elements.
func (a *SpectrumAnalyzer) MagnitudesInto(dst []float64) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(dst) != len(a.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dst), len(a.magnitude))
	}
	copy(dst, a.magnitude)
	return nil
}

// Frames counts spectra published so far.
func (a *SpectrumAnalyzer) Frames() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// FrequencyForBin returns the center frequency (Hz) for a given FFT bin
// index, or 0 outside the spectrum.
func (a *SpectrumAnalyzer) FrequencyForBin(bin int) float64 {
	if bin < 0 || bin >= len(a.coeffs) {
		return 0.0
	}
	return float64(bin) * (a.sampleRate / float64(a.fftSize))
}

// Bins is the number of magnitude values, FFTSize()/2+1.
func (a *SpectrumAnalyzer) Bins() int {
	return len(a.coeffs)
}

func (a *SpectrumAnalyzer) FFTSize() int {
	return a.fftSize
}

func (a *SpectrumAnalyzer) SampleRate() float64 {
	return a.sampleRate
}

// DominantFrequency estimates the frequency of the strongest non-DC
// component, refined between bins by fitting a parabola through the log
// magnitudes of the peak and its neighbours. It returns 0 for silence.
func (a *SpectrumAnalyzer) DominantFrequency() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return dominantFrequency(a.magnitude, a.sampleRate/float64(a.fftSize))
}

func dominantFrequency(mags []float64, binWidth float64) float64 {
	if len(mags) < 3 {
		return 0
	}
	peak := 1
	for i := 2; i < len(mags)-1; i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}
	if mags[peak] <= 1e-9 {
		return 0
	}

	l, c, r := mags[peak-1], mags[peak], mags[peak+1]
	delta := 0.0
	if l > 0 && r > 0 {
		ll, lc, lr := math.Log(l), math.Log(c), math.Log(r)
		if den := ll - 2*lc + lr; den != 0 {
			delta = 0.5 * (ll - lr) / den
		}
	}
	return (float64(peak) + delta) * binWidth
}

// Close handles any necessary cleanup for the analyzer.
func (a *SpectrumAnalyzer) Close() error {
	logger.Debugf("spectrum analyzer closed after %d frames (%d dropped)", a.Frames(), a.dropped)
	return nil
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns a known default (Hann) and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window. Unknown types fall
// back to Hann.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		logger.Warnf("unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}
