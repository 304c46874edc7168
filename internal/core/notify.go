package core

// ChangeKind says what happened to an index.
type ChangeKind int

const (
	ChangeRebuilt ChangeKind = iota
	ChangeUpdated
	ChangeRemoved
	ChangeCleared
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeRebuilt:
		return "rebuilt"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeCleared:
		return "cleared"
	}
	return "unknown"
}

// IndexChange is delivered to observers after an index mutation.
// Paths lists the affected canonical paths; it is empty for rebuilds and clears.
type IndexChange struct {
	Kind  ChangeKind
	Paths []string
}

// observers is a list of change callbacks, called in registration order.
// Like the indexes that own it, it assumes a single writer.
type observers struct {
	fns []func(IndexChange)
}

// add registers fn and returns a function that unregisters it.
func (o *observers) add(fn func(IndexChange)) func() {
	id := len(o.fns)
	o.fns = append(o.fns, fn)
	return func() { o.fns[id] = nil }
}

func (o *observers) notify(c IndexChange) {
	for _, fn := range o.fns {
		if fn != nil {
			fn(c)
		}
	}
}
