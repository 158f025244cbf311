package sessionkit

import "sync"

// Indicator is the reference-counted global busy signal. Every tracked
// request acquires it on start and releases it on every exit path; the
// visible flag flips only on the zero boundary so overlapping requests do
// not flicker it.
type Indicator struct {
	mu       sync.Mutex
	count    int
	onChange func(visible bool)
}

// NewIndicator creates an Indicator. onChange, when non-nil, is invoked
// on every visibility flip (true on the first Show, false when the count
// returns to zero). It is called with the internal lock held, so it must
// not call back into the Indicator.
func NewIndicator(onChange func(visible bool)) *Indicator {
	return &Indicator{onChange: onChange}
}

// Show increments the counter, making the indicator visible.
func (i *Indicator) Show() {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	i.count++
	if i.count == 1 && i.onChange != nil {
		i.onChange(true)
	}
}

// Hide decrements the counter, floored at zero. The indicator becomes
// invisible only when the count reaches zero.
func (i *Indicator) Hide() {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.count == 0 {
		return
	}
	i.count--
	if i.count == 0 && i.onChange != nil {
		i.onChange(false)
	}
}

// Reset forces the counter to zero. Used on navigation or teardown so an
// abandoned request cannot leave the indicator stuck.
func (i *Indicator) Reset() {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()

	wasVisible := i.count > 0
	i.count = 0
	if wasVisible && i.onChange != nil {
		i.onChange(false)
	}
}

// Visible reports whether any tracked request is in flight.
func (i *Indicator) Visible() bool {
	if i == nil {
		return false
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count > 0
}

// Depth returns the current reference count.
func (i *Indicator) Depth() int {
	if i == nil {
		return 0
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count
}
