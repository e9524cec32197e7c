package analysis

import "github.com/san-kum/bounce/internal/sim"

// Event marks a tick where a body's vertical velocity changed sign.
type Event struct {
	Tick   int
	Height float64
	// Before and After are the vertical speeds either side of the event.
	Before, After float64
}

// Impacts finds the ticks where a falling body starts rising. track holds one
// sprite per tick starting at tick 0.
func Impacts(track []sim.Sprite) []Event {
	var events []Event
	for i := 1; i < len(track); i++ {
		prev, cur := track[i-1].Velocity.Y, track[i].Velocity.Y
		if prev < 0 && cur > 0 {
			events = append(events, Event{
				Tick:   i,
				Height: track[i].Position.Y,
				Before: -prev,
				After:  cur,
			})
		}
	}
	return events
}

// Apexes finds the highest point of each flight.
func Apexes(track []sim.Sprite) []Event {
	var events []Event
	for i := 1; i < len(track); i++ {
		prev, cur := track[i-1].Velocity.Y, track[i].Velocity.Y
		if prev > 0 && cur <= 0 {
			top := i - 1
			if track[i].Position.Y > track[top].Position.Y {
				top = i
			}
			events = append(events, Event{
				Tick:   top,
				Height: track[top].Position.Y,
				Before: prev,
				After:  -cur,
			})
		}
	}
	return events
}

// Restitution is the mean ratio of rebound speed to impact speed.
func Restitution(track []sim.Sprite) float64 {
	impacts := Impacts(track)
	if len(impacts) == 0 {
		return 0
	}
	sum := 0.0
	for _, e := range impacts {
		sum += e.After / e.Before
	}
	return sum / float64(len(impacts))
}

// Series extracts one axis of a track, e.g. for PowerSpectrum.
func Series(track []sim.Sprite, axis string) []float64 {
	f, ok := Axes[axis]
	if !ok {
		return nil
	}
	out := make([]float64, len(track))
	for i, s := range track {
		out[i] = f(s)
	}
	return out
}
