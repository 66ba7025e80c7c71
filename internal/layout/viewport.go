package layout

import "sync"

// Viewport tracks the current width and tells watchers when the column
// count changes.
type Viewport struct {
	mu      sync.Mutex
	width   int
	columns int
	nextID  int
	watches map[int]func(columns int)
	order   []int
}

// NewViewport returns a viewport at the given width.
func NewViewport(width int) *Viewport {
	return &Viewport{
		width:   width,
		columns: ColumnsForWidth(width),
		watches: make(map[int]func(int)),
	}
}

// Width returns the current width in layout pixels.
func (v *Viewport) Width() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

// Columns returns the current column count.
func (v *Viewport) Columns() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.columns
}

// Resize records a new width. Watchers are called, in registration order,
// only when the width crosses a breakpoint. It reports whether the column
// count changed.
func (v *Viewport) Resize(width int) bool {
	v.mu.Lock()
	v.width = width
	cols := ColumnsForWidth(width)
	if cols == v.columns {
		v.mu.Unlock()
		return false
	}
	v.columns = cols
	fns := make([]func(int), 0, len(v.order))
	for _, id := range v.order {
		fns = append(fns, v.watches[id])
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(cols)
	}
	return true
}

// Watch registers fn for column changes until the subscription is closed.
func (v *Viewport) Watch(fn func(columns int)) *Subscription {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.watches[id] = fn
	v.order = append(v.order, id)
	return &Subscription{v: v, id: id}
}

// Listeners returns the number of open subscriptions.
func (v *Viewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.watches)
}

func (v *Viewport) remove(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.watches, id)
	for i, w := range v.order {
		if w == id {
			v.order = append(v.order[:i:i], v.order[i+1:]...)
			break
		}
	}
}

// Subscription is a registered resize watcher.
type Subscription struct {
	v    *Viewport
	id   int
	once sync.Once
}

// Close removes the watcher. After Close returns the watcher receives no
// further calls from subsequent resizes. Close may be called more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.v.remove(s.id) })
}
