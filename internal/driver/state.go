// internal/driver/state.go

package driver

// State is the lifecycle state of the simulator module.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Unloading
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Unloading:
		return "unloading"
	default:
		return "unknown"
	}
}

// MarshalText renders the state as its lowercase name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is what every lifecycle operation returns to its caller.
// Err holds the underlying cause when OK is false.
type Result struct {
	OK      bool
	Message string
	Err     error
}

func ok(msg string) Result { return Result{OK: true, Message: msg} }

func fail(msg string, err error) Result { return Result{Message: msg, Err: err} }
