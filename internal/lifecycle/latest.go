package lifecycle

// NotAvailable is recorded as the version of packages that declare no
// scrape source.
const NotAvailable = "Not Available"

// Status is the resolution state of a package's latest version.
type Status int

const (
	// Unresolved means no resolution has been attempted.
	Unresolved Status = iota
	// Resolved means a concrete version was found.
	Resolved
	// Unversioned means the package declares no scrape source or pattern.
	// Lifecycle operations proceed with version placeholders left intact.
	Unversioned
	// Failed means resolution was attempted and no version could be
	// determined. Err holds the reason.
	Failed
)

func (s Status) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	case Unversioned:
		return "unversioned"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Latest is the outcome of resolving a package's latest version.
type Latest struct {
	Status  Status
	Version string
	Err     error
}

// Usable reports whether lifecycle operations may proceed.
func (l Latest) Usable() bool {
	return l.Status == Resolved || l.Status == Unversioned
}

// String returns the version, NotAvailable for unversioned packages and an
// empty string otherwise.
func (l Latest) String() string {
	switch l.Status {
	case Resolved:
		return l.Version
	case Unversioned:
		return NotAvailable
	default:
		return ""
	}
}
