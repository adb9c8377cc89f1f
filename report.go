package spritebuilder

type Status int

const (
	StatusOK Status = iota
	// StatusEmpty: nothing opaque left after background removal.
	StatusEmpty
	// StatusSkipped: input file missing.
	StatusSkipped
	// StatusRejected: source looked like a failed extraction.
	StatusRejected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusEmpty:
		return "EMPTY"
	case StatusSkipped:
		return "SKIP"
	case StatusRejected:
		return "WARN"
	default:
		return "ERROR"
	}
}

// statusOf classifies the outcome of one item.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case IsEmpty(err):
		return StatusEmpty
	case IsNotFound(err):
		return StatusSkipped
	case IsRejected(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// Item is the outcome for one file of a batch.
type Item struct {
	Name   string
	Status Status
	Err    error
	// NewBackup is set when this run wrote the pristine backup.
	NewBackup bool
}

// Report collects the items of one batch run.
type Report struct {
	Items []Item
	// Progress, when set, is called for every item as it completes.
	Progress func(Item)
}

func (r *Report) add(it Item) {
	r.Items = append(r.Items, it)
	if r.Progress != nil {
		r.Progress(it)
	}
}

// Count returns the number of items with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}
