package lazy_loading

import "fmt"

type LoadStatus int

const (
	GHOST LoadStatus = iota
	LOADING
	LOADED
)

func (s LoadStatus) String() string {
	switch s {
	case GHOST:
		return "ghost"
	case LOADING:
		return "loading"
	case LOADED:
		return "loaded"
	default:
		return ""
	}
}

// Status is embedded by domain objects that support ghost loading.
// The zero value is GHOST.
type Status struct {
	loadStatus LoadStatus
}

func NewStatus(s LoadStatus) Status {
	return Status{loadStatus: s}
}

func (s Status) IsGhost() bool {
	return s.loadStatus == GHOST
}

func (s Status) IsLoaded() bool {
	return s.loadStatus == LOADED
}

func (s *Status) MarkLoading() error {
	if s.loadStatus != GHOST {
		return fmt.Errorf("assertion error: to change the status to loading it has to be in status ghost, got %s", s.loadStatus)
	}
	s.loadStatus = LOADING
	return nil
}

func (s *Status) MarkLoaded() error {
	if s.loadStatus != LOADING {
		return fmt.Errorf("assertion error: to change the status to loaded it has to be in status loading, got %s", s.loadStatus)
	}
	s.loadStatus = LOADED
	return nil
}

// Reset puts the status back to GHOST, used when a load is aborted.
func (s *Status) Reset() {
	s.loadStatus = GHOST
}
