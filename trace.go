package chainverify

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Trace ties together every upstream query made while verifying a single question.
type Trace struct {
	Id    uuid.UUID
	Start time.Time

	queries atomic.Uint32
}

func NewTrace() *Trace {
	return newTraceWithStart(time.Now())
}

func newTraceWithStart(start time.Time) *Trace {
	id, _ := uuid.NewV7()
	return &Trace{
		Id:    id,
		Start: start,
	}
}

func (t *Trace) ID() string {
	return t.Id.String()
}

func (t *Trace) ShortID() string {
	// Return only the last 7 characters. In the vast majority of cases this is unique enough.
	return t.ID()[29:]
}

// Query records that another upstream query has been made, returning its sequence number.
func (t *Trace) Query() uint32 {
	return t.queries.Add(1)
}

func (t *Trace) Queries() uint32 {
	return t.queries.Load()
}

func (t *Trace) Elapsed() time.Duration {
	return time.Since(t.Start)
}
