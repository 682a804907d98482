package app

import (
	"sync"

	"quiz-summary-service/internal/domain"
)

// Navigator moves the requester to another route.
type Navigator interface {
	NavigateTo(path string)
}

// LoadingReporter receives the loading bracket of every summary load.
type LoadingReporter interface {
	SetLoadingComplete(done bool)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) NavigateTo(path string) { f(path) }

// LoadingReporterFunc adapts a function to LoadingReporter.
type LoadingReporterFunc func(done bool)

func (f LoadingReporterFunc) SetLoadingComplete(done bool) { f(done) }

type ViewOption func(*View)

// WithNavigator sets where denied loads redirect through.
func WithNavigator(nav Navigator) ViewOption {
	return func(v *View) { v.nav = nav }
}

// WithLoadingReporter sets the loading-state collaborator. The websocket
// handler forwards it to clients as loading messages.
func WithLoadingReporter(r LoadingReporter) ViewOption {
	return func(v *View) { v.loading = r }
}

// View holds the summary state of one mounted view. Each load opens a new
// generation; results of older generations are discarded when they arrive.
type View struct {
	nav     Navigator
	loading LoadingReporter

	mu          sync.RWMutex
	generation  uint64
	closed      bool
	state       domain.ViewState
	subscribers map[chan domain.ViewState]struct{}
}

func NewView(opts ...ViewOption) *View {
	v := &View{
		nav:         NavigatorFunc(func(string) {}),
		loading:     LoadingReporterFunc(func(bool) {}),
		state:       domain.ViewState{Status: domain.StatusIdle},
		subscribers: make(map[chan domain.ViewState]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Snapshot returns the current state.
func (v *View) Snapshot() domain.ViewState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Subscribe returns a channel of state changes, starting with the current state.
// The caller must invoke the returned cancel function to avoid leaks.
func (v *View) Subscribe() (<-chan domain.ViewState, func()) {
	ch := make(chan domain.ViewState, 8)

	v.mu.Lock()
	ch <- v.state
	if v.closed {
		v.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	v.subscribers[ch] = struct{}{}
	v.mu.Unlock()

	cancel := func() {
		v.mu.Lock()
		if _, ok := v.subscribers[ch]; ok {
			delete(v.subscribers, ch)
			close(ch)
		}
		v.mu.Unlock()
	}
	return ch, cancel
}

// Close unmounts the view. Loads still in flight are discarded and subscribers are released.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	v.generation++
	for ch := range v.subscribers {
		delete(v.subscribers, ch)
		close(ch)
	}
}

// begin opens a new generation for quizID and marks the view loading.
func (v *View) begin(quizID string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return 0, domain.ErrViewClosed
	}
	v.generation++
	v.state = domain.ViewState{QuizID: quizID, Status: domain.StatusLoading}
	v.broadcastLocked()
	return v.generation, nil
}

// settle replaces the state if gen is still current. The navigator, when a
// redirect is set, is invoked only for the current generation.
func (v *View) settle(gen uint64, state domain.ViewState) (domain.ViewState, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return state, domain.ErrViewClosed
	}
	if gen != v.generation {
		v.mu.Unlock()
		return state, domain.ErrStaleLoad
	}
	v.state = state
	v.broadcastLocked()
	v.mu.Unlock()

	if state.Redirect != "" {
		v.nav.NavigateTo(state.Redirect)
	}
	return state, nil
}

func (v *View) broadcastLocked() {
	for ch := range v.subscribers {
		select {
		case ch <- v.state:
		default:
			// drop the oldest queued state so slow readers always see the latest
			select {
			case <-ch:
			default:
			}
			ch <- v.state
		}
	}
}
