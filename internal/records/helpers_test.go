package records

import (
	"context"

	"tally/internal/api"
)

type itemsMock = api.MockEndpoint[Item, ItemDraft]

type logoutCounter struct{ n int }

func (l *logoutCounter) Headers() map[string]string { return nil }
func (l *logoutCounter) Logout() error              { l.n++; return nil }

func items(ids ...string) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item{ID: id, Title: "title " + id, Description: "desc " + id})
	}
	return out
}

func ids[R Record](rs []R) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.RecordID())
	}
	return out
}

func updatedIDs(m *itemsMock) []string {
	out := make([]string, 0, len(m.UpdateCallArgs))
	for _, arg := range m.UpdateCallArgs {
		out = append(out, arg.ID)
	}
	return out
}

// loadedView returns a view whose collection holds items 1, 2 and 3. The
// mock's ListFn is left as the caller set it.
func loadedView(t interface{ Fatalf(string, ...any) }, ep *itemsMock, opts ...Option) *CrudView[Item, ItemDraft] {
	initial := ep.ListFn
	if initial == nil {
		ep.ListFn = func(context.Context) ([]Item, error) { return items("1", "2", "3"), nil }
	}
	v := NewCrudView[Item, ItemDraft]("items", ep, &logoutCounter{}, DraftFromItem, opts...)
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	ep.ListFn = initial
	return v
}
