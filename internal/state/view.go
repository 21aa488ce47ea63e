package state

// View names the top-level screen the UI should draw.
type View int

const (
	ViewPlaceholder View = iota
	ViewLoading
	ViewNotFound
	ViewEmpty
	ViewFilled
)

func (v View) String() string {
	switch v {
	case ViewPlaceholder:
		return "placeholder"
	case ViewLoading:
		return "loading"
	case ViewNotFound:
		return "not-found"
	case ViewEmpty:
		return "empty"
	case ViewFilled:
		return "filled"
	default:
		return "unknown"
	}
}

// ViewInputs are the flags DeriveView decides from.
type ViewInputs struct {
	Mounted      bool
	HasList      bool
	NotFound     bool
	Resolved     bool
	HasCandidate bool
}

// DeriveView maps inputs to exactly one view. The loader only covers the
// window where a candidate is being resolved and nothing else is on
// screen yet.
func DeriveView(in ViewInputs) View {
	switch {
	case !in.Mounted:
		return ViewPlaceholder
	case !in.Resolved && in.HasCandidate && !in.HasList && !in.NotFound:
		return ViewLoading
	case in.NotFound:
		return ViewNotFound
	case in.HasList:
		return ViewFilled
	default:
		return ViewEmpty
	}
}
