package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/bounce/internal/physics"
	"github.com/san-kum/bounce/internal/sim"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	maxVoices = 16
	hitDecay  = 0.15 // seconds for a hit to fall to 1/e
)

// Pitches of collision pings, a G minor pentatonic two octaves up.
var hitFreqs = []float64{392.00, 466.16, 523.25, 587.33, 698.46}

// Processor sonifies a simulation: a pad whose filter opens with the energy
// left in the arena, plus a short ping for every contact. It is a
// sim.Observer; the audio callback runs on portaudio's thread.
type Processor struct {
	Stream *portaudio.Stream

	// Levels of the last rendered buffer, 0..1
	Bass, Mid, High float64
	MaxLevel        float64

	Time        float64
	FilterState [2]float64
	DelayLine   [2][]float64
	DelayHead   int

	mu           sync.Mutex
	energy       float64
	refEnergy    float64
	pending      int
	EnergySmooth float64

	voices   []voice
	nextNote int
	mono     []float64

	Active bool
}

type voice struct {
	freq, phase, amp float64
}

func NewProcessor() *Processor {
	delayLen := int(float64(SampleRate) * 0.6)

	return &Processor{
		MaxLevel:  0.1,
		DelayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		mono:      make([]float64, BufferSize),
	}
}

// Start opens the default stereo output.
func (a *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, a.ProcessAudio)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}

	a.Stream = stream
	a.Active = true
	return nil
}

func (a *Processor) Stop() {
	if a.Stream != nil {
		a.Stream.Stop()
		a.Stream.Close()
		a.Stream = nil
	}
	if a.Active {
		portaudio.Terminate()
	}
	a.Active = false
}

// OnStep records the arena energy and queues one ping per contact.
func (a *Processor) OnStep(info sim.StepInfo) {
	e := physics.TotalEnergy(info.Bodies)
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.refEnergy == 0 && e > 0 {
		a.refEnergy = e
	}
	a.energy = e
	a.pending += info.Contacts
	if a.pending > maxVoices {
		a.pending = maxVoices
	}
}

// Levels returns the smoothed spectrum bands of the output.
func (a *Processor) Levels() (bass, mid, high float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Bass, a.Mid, a.High
}

// Voices is the number of pings still sounding.
func (a *Processor) Voices() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voices)
}

// Triangle Wave: Smooth, flute-like, no harsh buzz
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

// ProcessAudio renders one stereo buffer. It is the portaudio callback and
// can be called directly.
func (a *Processor) ProcessAudio(out [][]float32) {
	a.mu.Lock()
	ratio := 0.0
	if a.refEnergy > 0 {
		ratio = a.energy / a.refEnergy
	}
	for ; a.pending > 0; a.pending-- {
		if len(a.voices) == maxVoices {
			a.voices = a.voices[1:]
		}
		a.voices = append(a.voices, voice{freq: hitFreqs[a.nextNote%len(hitFreqs)], amp: 0.5})
		a.nextNote++
	}
	a.mu.Unlock()

	// G2, Bb2, D3, F3, A3
	freqs := []float64{98.00, 116.54, 146.83, 174.61, 220.00}

	a.EnergySmooth = a.EnergySmooth*0.995 + ratio*0.005
	cutoff := 300.0 + 900.0*math.Min(a.EnergySmooth, 1)
	dt := 1.0 / float64(SampleRate)
	decay := math.Exp(-dt / hitDecay)

	vol := 0.252

	for i := 0; i < len(out[0]); i++ {
		sampleL := 0.0
		sampleR := 0.0

		for j, f := range freqs {
			oscL := triangle(a.Time * (f * 0.999))
			oscR := triangle(a.Time * (f * 1.001))

			g := 1.0 / float64(len(freqs))
			lfo := math.Sin(a.Time*0.2 + float64(j))

			sampleL += oscL * g * (0.7 + 0.3*lfo)
			sampleR += oscR * g * (0.7 + 0.3*lfo)
		}

		var outL, outR float64
		outL, a.FilterState[0] = lpf(sampleL, cutoff, dt, a.FilterState[0])
		outR, a.FilterState[1] = lpf(sampleR, cutoff, dt, a.FilterState[1])

		// Pings bypass the filter.
		ping := 0.0
		for k := range a.voices {
			v := &a.voices[k]
			ping += math.Sin(2*math.Pi*v.phase) * v.amp
			v.phase += v.freq * dt
			v.amp *= decay
		}
		outL += ping
		outR += ping

		// Ping Pong delay
		delayL := a.DelayLine[0][a.DelayHead]
		delayR := a.DelayLine[1][a.DelayHead]

		mixL := outL + delayL*0.3 + delayR*0.1
		mixR := outR + delayR*0.3 + delayL*0.1

		a.DelayLine[0][a.DelayHead] = mixL * 0.7
		a.DelayLine[1][a.DelayHead] = mixR * 0.7

		a.DelayHead = (a.DelayHead + 1) % len(a.DelayLine[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)
		if i < len(a.mono) {
			a.mono[i] = (mixL + mixR) * vol / 2
		}

		a.Time += dt
	}

	live := a.voices[:0]
	for _, v := range a.voices {
		if v.amp > 1e-3 {
			live = append(live, v)
		}
	}

	a.mu.Lock()
	a.voices = live
	a.analyze(len(out[0]))
	a.mu.Unlock()
}

// analyze buckets the spectrum of the last n mono samples into three bands
// with automatic gain.
func (a *Processor) analyze(n int) {
	if n > len(a.mono) {
		n = len(a.mono)
	}
	if n < 2 {
		return
	}
	windowed := make([]float64, n)
	for i := 0; i < n; i++ {
		window := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = a.mono[i] * window
	}
	spectrum := fft.FFTReal(windowed)

	// Bins are SampleRate/n Hz wide; bands split near 200 Hz and 2 kHz.
	binHz := float64(SampleRate) / float64(n)
	bassSum, midSum, highSum := 0.0, 0.0, 0.0
	for i := 1; i < n/2; i++ {
		mag := cmplx.Abs(spectrum[i])
		switch f := float64(i) * binHz; {
		case f < 200:
			bassSum += mag
		case f < 2000:
			midSum += mag
		default:
			highSum += mag
		}
	}

	peak := math.Max(bassSum/100.0, math.Max(midSum/500.0, highSum/1000.0))
	if peak > a.MaxLevel {
		a.MaxLevel = peak
	} else {
		a.MaxLevel *= 0.999
	}
	gain := 1.0
	if a.MaxLevel > 0.001 {
		gain = 1.0 / a.MaxLevel
	}
	if gain > 50.0 {
		gain = 50.0
	}

	a.Bass = a.Bass*0.9 + (math.Min(bassSum/100.0*gain, 1.0))*0.1
	a.Mid = a.Mid*0.9 + (math.Min(midSum/500.0*gain, 1.0))*0.1
	a.High = a.High*0.9 + (math.Min(highSum/1000.0*gain, 1.0))*0.1
}
