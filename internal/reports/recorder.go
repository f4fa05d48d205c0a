// Package reports keeps the in-memory list of saved report snapshots.
package reports

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"laudo/internal/domain"
)

// DateLayout renders report timestamps the way pt-BR locales show them.
const DateLayout = "02/01/2006, 15:04:05"

// Recorder holds saved reports in insertion order. It is not safe for
// concurrent use; the owning session serializes access.
type Recorder struct {
	now     func() time.Time
	newID   func() (uuid.UUID, error)
	reports []domain.SavedReport
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder returns an empty recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{now: time.Now, newID: uuid.NewV7}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save snapshots text as a new report. Blank text is ignored and reported with
// ok=false. IDs are UUIDv7: time-ordered and distinct even for saves within
// the same millisecond.
func (r *Recorder) Save(text string) (report domain.SavedReport, ok bool) {
	if strings.TrimSpace(text) == "" {
		return domain.SavedReport{}, false
	}

	createdAt := r.now()
	report = domain.SavedReport{
		ID:        r.reportID(createdAt),
		Text:      text,
		Date:      createdAt.Format(DateLayout),
		CreatedAt: createdAt,
	}
	r.reports = append(r.reports, report)
	return report, true
}

// List returns a copy of the saved reports, oldest first.
func (r *Recorder) List() []domain.SavedReport {
	out := make([]domain.SavedReport, len(r.reports))
	copy(out, r.reports)
	return out
}

// Len returns the number of saved reports.
func (r *Recorder) Len() int {
	return len(r.reports)
}

func (r *Recorder) reportID(createdAt time.Time) string {
	id, err := r.newID()
	if err == nil {
		return id.String()
	}
	// uuid.NewV7 only fails when the random source does; fall back to the
	// creation time plus the list position, which is still unique per session.
	return createdAt.Format("20060102T150405.000000000") + "-" + strconv.Itoa(len(r.reports)+1)
}
