package records

import (
	"context"
	"time"

	"tally/internal/auth"
	"tally/internal/debug"
	appErrors "tally/internal/errors"
)

// Option configures a view.
type Option func(*viewOptions)

type viewOptions struct {
	sink func(Event)
	now  func() time.Time
}

// WithEventSink receives an Event for every completed request.
func WithEventSink(fn func(Event)) Option {
	return func(o *viewOptions) {
		o.sink = fn
	}
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *viewOptions) {
		o.now = now
	}
}

// LoadResult carries the outcome of a list request back to the view.
type LoadResult[R Record] struct {
	Records []R
	Err     error
	Started time.Time
}

// ListView fetches a collection and exposes it read-only.
//
// State is only mutated by Begin*/Complete* and the other exported methods,
// which must all be called from one goroutine (the UI event loop).
// Perform* methods only touch the endpoint and may run anywhere.
type ListView[R Record] struct {
	resource string
	lister   Lister[R]
	provider auth.Provider
	opts     viewOptions

	records Collection[R]
	fetch   FetchState
	notice  string
}

// NewListView builds a view over lister. resource names the collection in
// messages and events ("items", "users").
func NewListView[R Record](resource string, lister Lister[R], provider auth.Provider, opts ...Option) *ListView[R] {
	o := viewOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	return &ListView[R]{
		resource: resource,
		lister:   lister,
		provider: provider,
		opts:     o,
	}
}

// Resource returns the collection name.
func (v *ListView[R]) Resource() string { return v.resource }

// Records returns the current collection in order.
func (v *ListView[R]) Records() []R { return v.records.Items() }

// Collection returns the current collection value.
func (v *ListView[R]) Collection() Collection[R] { return v.records }

// FetchState returns the data-fetch state.
func (v *ListView[R]) FetchState() FetchState { return v.fetch }

// Notice returns the inline error message, empty when there is none.
func (v *ListView[R]) Notice() string { return v.notice }

// DismissNotice clears the inline error message.
func (v *ListView[R]) DismissNotice() { v.notice = "" }

// Snapshot returns {loading, error, records} for a rendering layer.
func (v *ListView[R]) Snapshot() Snapshot[R] {
	return Snapshot[R]{
		Loading: v.fetch.Loading(),
		Error:   v.notice,
		Records: v.records.Items(),
	}
}

// LoadFailedMessage is the generic message shown when a list request fails.
func (v *ListView[R]) LoadFailedMessage() string {
	return "Failed to load " + v.resource
}

// BeginLoad enters the loading state.
func (v *ListView[R]) BeginLoad() {
	v.fetch = FetchState{Phase: FetchLoading}
}

// PerformLoad issues the list request.
func (v *ListView[R]) PerformLoad(ctx context.Context) LoadResult[R] {
	started := v.opts.now()
	recs, err := v.lister.List(ctx)
	return LoadResult[R]{Records: recs, Err: err, Started: started}
}

// CompleteLoad applies a list result. On success the collection becomes
// exactly the server's list; on failure the collection is left as it was.
func (v *ListView[R]) CompleteLoad(res LoadResult[R]) error {
	if res.Err != nil {
		msg := v.LoadFailedMessage()
		v.fetch = FetchState{Phase: FetchFailed, Reason: msg}
		v.notice = msg
		v.emit(Event{Op: OpList, Err: res.Err}, res.Started)
		return res.Err
	}
	v.records = NewCollection(res.Records)
	v.fetch = FetchState{Phase: FetchLoaded}
	v.notice = ""
	v.emit(Event{Op: OpList}, res.Started)
	return nil
}

// Load runs BeginLoad, PerformLoad and CompleteLoad in sequence.
func (v *ListView[R]) Load(ctx context.Context) error {
	v.BeginLoad()
	return v.CompleteLoad(v.PerformLoad(ctx))
}

// Logout invokes the injected logout action.
func (v *ListView[R]) Logout() error {
	if v.provider == nil {
		return nil
	}
	return v.provider.Logout()
}

func (v *ListView[R]) emit(ev Event, started time.Time) {
	now := v.opts.now()
	ev.Resource = v.resource
	ev.At = now
	if !started.IsZero() {
		ev.Duration = now.Sub(started)
	}

	fields := map[string]any{
		"resource": ev.Resource,
		"op":       ev.Op,
		"outcome":  "ok",
	}
	if ev.RecordID != "" {
		fields["id"] = ev.RecordID
	}
	if ev.Err != nil {
		fields["outcome"] = "failed"
		fields["code"] = appErrors.CodeOf(ev.Err)
		fields["err"] = ev.Err.Error()
	}
	if ev.Anomaly {
		fields["anomaly"] = true
	}
	debug.Event("reconcile", fields)

	if v.opts.sink != nil {
		v.opts.sink(ev)
	}
}
