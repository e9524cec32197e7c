package input

import "sync"

// All targets every body when pressed into a Latch or used in a script entry.
const All = -1

// Signals is the per-tick directional state for one body.
type Signals struct {
	Up    bool `yaml:"up" json:"up"`
	Down  bool `yaml:"down" json:"down"`
	Left  bool `yaml:"left" json:"left"`
	Right bool `yaml:"right" json:"right"`
	Stop  bool `yaml:"stop" json:"stop"`
}

// Any reports whether at least one signal is active.
func (s Signals) Any() bool {
	return s.Up || s.Down || s.Left || s.Right || s.Stop
}

// Or combines two signal sets.
func (s Signals) Or(o Signals) Signals {
	return Signals{
		Up:    s.Up || o.Up,
		Down:  s.Down || o.Down,
		Left:  s.Left || o.Left,
		Right: s.Right || o.Right,
		Stop:  s.Stop || o.Stop,
	}
}

// Source is polled once per tick for every body.
type Source interface {
	Poll(id int) Signals
}

// TickEnder is implemented by sources that need to know when a tick is over.
type TickEnder interface {
	EndTick()
}

type None struct{}

func NewNone() *None { return &None{} }

func (n *None) Poll(id int) Signals { return Signals{} }

// Latch holds pressed signals for one tick. Terminal and network front ends
// deliver key presses as events rather than held state, so every press is
// latched for exactly one tick.
//
// The first Poll of a tick takes the presses gathered so far; presses that
// arrive later in the tick wait for the next one. A sticky latch instead
// reports its current state on every Poll until Release.
type Latch struct {
	mu      sync.Mutex
	all     Signals
	perBody map[int]Signals
	sticky  bool

	// taken holds the presses of the tick in progress.
	taken     bool
	takenAll  Signals
	takenBody map[int]Signals
}

func NewLatch() *Latch {
	return &Latch{perBody: make(map[int]Signals)}
}

// NewStickyLatch returns a latch that keeps its state across ticks until
// Release is called. Used by front ends that report held keys.
func NewStickyLatch() *Latch {
	l := NewLatch()
	l.sticky = true
	return l
}

func (l *Latch) Press(id int, s Signals) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == All {
		l.all = l.all.Or(s)
		return
	}
	l.perBody[id] = l.perBody[id].Or(s)
}

func (l *Latch) Set(id int, s Signals) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id == All {
		l.all = s
		return
	}
	l.perBody[id] = s
}

func (l *Latch) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = Signals{}
	clear(l.perBody)
}

func (l *Latch) Poll(id int) Signals {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sticky {
		return l.all.Or(l.perBody[id])
	}
	if !l.taken {
		l.takenAll, l.takenBody = l.all, l.perBody
		l.all, l.perBody = Signals{}, make(map[int]Signals)
		l.taken = true
	}
	return l.takenAll.Or(l.takenBody[id])
}

// EndTick drops the presses taken this tick.
func (l *Latch) EndTick() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.taken = false
	l.takenAll, l.takenBody = Signals{}, nil
}

type merged struct {
	sources []Source
}

// Merge ORs the signals of several sources.
func Merge(sources ...Source) Source {
	return &merged{sources: sources}
}

func (m *merged) Poll(id int) Signals {
	var s Signals
	for _, src := range m.sources {
		s = s.Or(src.Poll(id))
	}
	return s
}

func (m *merged) EndTick() {
	for _, src := range m.sources {
		if te, ok := src.(TickEnder); ok {
			te.EndTick()
		}
	}
}

// ParseKey maps a key name to the signals it triggers.
func ParseKey(key string) (Signals, bool) {
	switch key {
	case "w", "up":
		return Signals{Up: true}, true
	case "s", "down":
		return Signals{Down: true}, true
	case "a", "left":
		return Signals{Left: true}, true
	case "d", "right":
		return Signals{Right: true}, true
	case " ", "space":
		return Signals{Stop: true}, true
	}
	return Signals{}, false
}
