// Package scanner filters a continuous stream of decoded barcode
// payloads down to at most one accepted ISBN per scanning session.
// Cameras redeliver the same decode many times per second; without this
// gate every frame would trigger another lookup.
package scanner

import (
	"errors"
	"sync"

	"github.com/lepinkainen/shelfscan/internal/isbn"
)

// State is the session state of a Filter.
type State int

const (
	// StateIdle means no scanning session is active.
	StateIdle State = iota
	// StateScanning means frames are being consumed and no identifier
	// has been accepted yet.
	StateScanning
	// StateResolved means one identifier has been accepted; further
	// payloads are ignored until Reset. Terminal for the session.
	StateResolved
	// StateFailed means the decoder reported an unrecoverable error.
	// Terminal; no automatic retry.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrNotScanning is returned by Start when a session is already active.
var ErrNotScanning = errors.New("scanner: session already active")

// Box is the bounding rectangle of one detected symbol, in the
// decoder's coordinate space.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Filter consumes decoder frames. The accept callback fires at most
// once per session; the box observer fires for every frame while a
// session is live, independent of the accept decision, so a UI can keep
// highlighting symbols after resolution.
type Filter struct {
	mu       sync.Mutex
	state    State
	accepted string
	failure  error
	boxes    []Box

	onAccept func(string)
	onBoxes  func([]Box)
}

// New creates a Filter in the Idle state. onAccept receives the single
// accepted canonical identifier; it may be nil.
func New(onAccept func(string)) *Filter {
	return &Filter{onAccept: onAccept}
}

// ObserveBoxes registers the bounding-box side channel. The observer is
// invoked outside the filter's lock and must not be changed while a
// session is active.
func (f *Filter) ObserveBoxes(fn func([]Box)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onBoxes = fn
}

// Start begins a new scanning session.
func (f *Filter) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateScanning {
		return ErrNotScanning
	}
	f.state = StateScanning
	f.accepted = ""
	f.failure = nil
	f.boxes = nil
	return nil
}

// Reset returns the filter to Idle from any state, ending the session.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateIdle
	f.accepted = ""
	f.failure = nil
	f.boxes = nil
}

// Fail records an unrecoverable decoder error and ends the session.
func (f *Filter) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateScanning {
		return
	}
	f.state = StateFailed
	f.failure = err
}

// Frame consumes one decoder frame: the decoded payload strings and the
// bounding boxes of every detected symbol. Work per call is bounded by
// the number of symbols in this frame, and callbacks run outside the
// lock so the frame producer is never blocked on them.
func (f *Filter) Frame(payloads []string, boxes []Box) {
	f.mu.Lock()

	if f.state != StateScanning && f.state != StateResolved {
		f.mu.Unlock()
		return
	}

	f.boxes = append(f.boxes[:0], boxes...)
	observer := f.onBoxes

	var accept func(string)
	var candidate string
	if f.state == StateScanning {
		for _, payload := range payloads {
			canonical, err := isbn.Normalize(payload)
			if err != nil {
				continue
			}
			f.state = StateResolved
			f.accepted = canonical
			candidate = canonical
			accept = f.onAccept
			break
		}
	}
	f.mu.Unlock()

	if observer != nil {
		snapshot := make([]Box, len(boxes))
		copy(snapshot, boxes)
		observer(snapshot)
	}
	if accept != nil {
		accept(candidate)
	}
}

// State returns the current session state.
func (f *Filter) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Accepted returns the accepted identifier and whether one exists.
func (f *Filter) Accepted() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted, f.state == StateResolved
}

// Err returns the decoder error that moved the filter to Failed.
func (f *Filter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failure
}

// Boxes returns the bounding boxes from the most recent frame.
func (f *Filter) Boxes() []Box {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]Box, len(f.boxes))
	copy(snapshot, f.boxes)
	return snapshot
}
