package records

import (
	"context"
	"fmt"
	"time"

	"tally/internal/auth"
	appErrors "tally/internal/errors"
)

const (
	// MsgOperationFailed is shown when a create or update request fails.
	MsgOperationFailed = "Operation failed"
	// MsgDeleteFailed is shown when a delete request fails.
	MsgDeleteFailed = "Delete failed"
)

// Submission is a create or update captured at submit time. The view may
// move on (cancel, edit another record) while it is in flight.
type Submission[D any] struct {
	Op       Op
	TargetID string
	Draft    D
	// FormGen is the form generation the submission came from.
	FormGen uint64
}

func (s Submission[D]) key() string {
	if s.Op == OpCreate {
		return string(OpCreate)
	}
	return string(s.Op) + ":" + s.TargetID
}

// SubmitResult carries the server's answer to a Submission.
type SubmitResult[R Record, D any] struct {
	Submission Submission[D]
	Record     R
	Err        error
	Started    time.Time
}

// Deletion is a confirmed delete request.
type Deletion struct {
	ID string
}

func (d Deletion) key() string { return string(OpDelete) + ":" + d.ID }

// DeleteResult carries the server's answer to a Deletion.
type DeleteResult struct {
	Deletion Deletion
	Err      error
	Started  time.Time
}

// CrudView extends ListView with create, update and delete. Each mutation
// reconciles the collection from the server's response and never guesses.
type CrudView[R Record, D Draft] struct {
	*ListView[R]

	endpoint Endpoint[R, D]
	toDraft  func(R) D

	form  FormState
	draft D
	// formGen changes whenever the form opens or closes, so a completion
	// can tell its own form from a later one with the same mode.
	formGen uint64

	pendingDelete    string
	hasPendingDelete bool

	inFlight  map[string]struct{}
	anomalies int
}

// NewCrudView builds a view over endpoint. toDraft copies a record's
// mutable fields when editing begins.
func NewCrudView[R Record, D Draft](resource string, endpoint Endpoint[R, D], provider auth.Provider, toDraft func(R) D, opts ...Option) *CrudView[R, D] {
	return &CrudView[R, D]{
		ListView: NewListView[R](resource, endpoint, provider, opts...),
		endpoint: endpoint,
		toDraft:  toDraft,
		inFlight: make(map[string]struct{}),
	}
}

// Form returns the form state.
func (v *CrudView[R, D]) Form() FormState { return v.form }

// Draft returns the staged draft.
func (v *CrudView[R, D]) Draft() D { return v.draft }

// FormGeneration identifies the current opening of the form.
func (v *CrudView[R, D]) FormGeneration() uint64 { return v.formGen }

// Anomalies returns how many successful responses could not be reconciled
// the expected way.
func (v *CrudView[R, D]) Anomalies() int { return v.anomalies }

// InFlight reports whether any mutation is outstanding.
func (v *CrudView[R, D]) InFlight() bool { return len(v.inFlight) > 0 }

// OpenCreate shows an empty create form. It only applies from Hidden and
// reports whether the transition happened.
func (v *CrudView[R, D]) OpenCreate() bool {
	if v.form.Mode != FormHidden {
		return false
	}
	var empty D
	v.form = FormState{Mode: FormCreate}
	v.draft = empty
	v.formGen++
	return true
}

// OpenEdit shows the form pre-filled from the record with id. It applies
// from any form state.
func (v *CrudView[R, D]) OpenEdit(id string) error {
	rec, ok := v.records.Find(id)
	if !ok {
		return appErrors.New(appErrors.CodeUnknownRecord, fmt.Sprintf("no %s record %q", v.resource, id), nil)
	}
	v.form = FormState{Mode: FormEdit, TargetID: id}
	v.draft = v.toDraft(rec)
	v.formGen++
	return nil
}

// SetDraft replaces the staged draft while the form is open.
func (v *CrudView[R, D]) SetDraft(d D) error {
	if !v.form.Open() {
		return appErrors.New(appErrors.CodeNoForm, "form is not open", nil)
	}
	v.draft = d
	return nil
}

// Cancel hides the form and discards the draft.
func (v *CrudView[R, D]) Cancel() {
	var empty D
	v.form = FormState{}
	v.draft = empty
	v.formGen++
}

// BeginSubmit validates the draft and captures a Submission for the
// current form mode. Nothing is sent and no state changes on error.
func (v *CrudView[R, D]) BeginSubmit() (Submission[D], error) {
	var sub Submission[D]
	switch v.form.Mode {
	case FormCreate:
		sub = Submission[D]{Op: OpCreate, Draft: v.draft, FormGen: v.formGen}
	case FormEdit:
		sub = Submission[D]{Op: OpUpdate, TargetID: v.form.TargetID, Draft: v.draft, FormGen: v.formGen}
	default:
		return sub, appErrors.New(appErrors.CodeNoForm, "form is not open", nil)
	}
	if err := v.draft.Validate(); err != nil {
		return Submission[D]{}, err
	}
	if _, busy := v.inFlight[sub.key()]; busy {
		return Submission[D]{}, appErrors.New(appErrors.CodeInFlight, "a request for this record is already in flight", nil)
	}
	v.inFlight[sub.key()] = struct{}{}
	return sub, nil
}

// PerformSubmit sends the POST or PUT for sub.
func (v *CrudView[R, D]) PerformSubmit(ctx context.Context, sub Submission[D]) SubmitResult[R, D] {
	res := SubmitResult[R, D]{Submission: sub, Started: v.opts.now()}
	switch sub.Op {
	case OpCreate:
		res.Record, res.Err = v.endpoint.Create(ctx, sub.Draft)
	case OpUpdate:
		res.Record, res.Err = v.endpoint.Update(ctx, sub.TargetID, sub.Draft)
	default:
		res.Err = appErrors.New(appErrors.CodeNoForm, fmt.Sprintf("unsupported submission %q", sub.Op), nil)
	}
	return res
}

// CompleteSubmit reconciles the collection with the server's record.
//
// Create appends the returned record. Update replaces the element with the
// returned identifier in place; if none matches the response is ignored
// and counted as an anomaly. The form closes only if it is still the one
// the submission came from. On failure the collection, form and draft are
// left untouched so the user can retry.
func (v *CrudView[R, D]) CompleteSubmit(res SubmitResult[R, D]) error {
	sub := res.Submission
	delete(v.inFlight, sub.key())

	if res.Err == nil && res.Record.RecordID() == "" {
		res.Err = appErrors.New(appErrors.CodeParseFailed, "response record has no identifier", nil)
	}
	if res.Err != nil {
		v.notice = MsgOperationFailed
		v.emit(Event{Op: sub.Op, RecordID: sub.TargetID, Err: res.Err}, res.Started)
		return res.Err
	}

	id := res.Record.RecordID()
	anomaly := false
	switch sub.Op {
	case OpCreate:
		var appended bool
		v.records, appended = v.records.Append(res.Record)
		anomaly = !appended
	case OpUpdate:
		var replaced bool
		v.records, replaced = v.records.Replace(res.Record)
		anomaly = !replaced
	}
	if anomaly {
		v.anomalies++
	}

	if v.FormShows(sub) {
		v.Cancel()
	}
	v.notice = ""
	v.emit(Event{Op: sub.Op, RecordID: id, Anomaly: anomaly}, res.Started)
	return nil
}

// Submit runs BeginSubmit, PerformSubmit and CompleteSubmit in sequence.
func (v *CrudView[R, D]) Submit(ctx context.Context) error {
	sub, err := v.BeginSubmit()
	if err != nil {
		return err
	}
	return v.CompleteSubmit(v.PerformSubmit(ctx, sub))
}

// FormShows reports whether the open form is the one sub was submitted
// from. A form reopened since then, even for the same target, is not.
func (v *CrudView[R, D]) FormShows(sub Submission[D]) bool {
	return v.form.Open() && sub.FormGen == v.formGen
}

// RequestDelete marks the record with id as awaiting confirmation. No
// request is sent until ConfirmDelete.
func (v *CrudView[R, D]) RequestDelete(id string) error {
	if v.records.Index(id) < 0 {
		return appErrors.New(appErrors.CodeUnknownRecord, fmt.Sprintf("no %s record %q", v.resource, id), nil)
	}
	v.pendingDelete = id
	v.hasPendingDelete = true
	return nil
}

// PendingDelete returns the record awaiting confirmation.
func (v *CrudView[R, D]) PendingDelete() (R, bool) {
	if !v.hasPendingDelete {
		var zero R
		return zero, false
	}
	return v.records.Find(v.pendingDelete)
}

// DeclineDelete drops the pending delete without sending anything.
func (v *CrudView[R, D]) DeclineDelete() {
	v.pendingDelete = ""
	v.hasPendingDelete = false
}

// ConfirmDelete turns the pending delete into a Deletion to perform.
func (v *CrudView[R, D]) ConfirmDelete() (Deletion, error) {
	if !v.hasPendingDelete {
		return Deletion{}, appErrors.New(appErrors.CodeNoPendingDelete, "nothing awaiting delete confirmation", nil)
	}
	d := Deletion{ID: v.pendingDelete}
	v.DeclineDelete()
	if _, busy := v.inFlight[d.key()]; busy {
		return Deletion{}, appErrors.New(appErrors.CodeInFlight, "a delete for this record is already in flight", nil)
	}
	v.inFlight[d.key()] = struct{}{}
	return d, nil
}

// PerformDelete sends the DELETE for d.
func (v *CrudView[R, D]) PerformDelete(ctx context.Context, d Deletion) DeleteResult {
	started := v.opts.now()
	return DeleteResult{Deletion: d, Err: v.endpoint.Delete(ctx, d.ID), Started: started}
}

// CompleteDelete removes the deleted record. A form editing that record is
// closed. On failure nothing changes.
func (v *CrudView[R, D]) CompleteDelete(res DeleteResult) error {
	id := res.Deletion.ID
	delete(v.inFlight, res.Deletion.key())

	if res.Err != nil {
		v.notice = MsgDeleteFailed
		v.emit(Event{Op: OpDelete, RecordID: id, Err: res.Err}, res.Started)
		return res.Err
	}

	var removed bool
	v.records, removed = v.records.Remove(id)
	if !removed {
		v.anomalies++
	}
	if target, editing := v.form.EditingTarget(); editing && target == id {
		v.Cancel()
	}
	v.notice = ""
	v.emit(Event{Op: OpDelete, RecordID: id, Anomaly: !removed}, res.Started)
	return nil
}

// Delete asks confirm before deleting the record with id. A nil confirm or
// a false answer sends nothing. deleted reports whether the server removed
// the record.
func (v *CrudView[R, D]) Delete(ctx context.Context, id string, confirm func(R) bool) (deleted bool, err error) {
	if err := v.RequestDelete(id); err != nil {
		return false, err
	}
	rec, _ := v.PendingDelete()
	if confirm == nil || !confirm(rec) {
		v.DeclineDelete()
		return false, nil
	}
	d, err := v.ConfirmDelete()
	if err != nil {
		return false, err
	}
	if err := v.CompleteDelete(v.PerformDelete(ctx, d)); err != nil {
		return false, err
	}
	return true, nil
}
