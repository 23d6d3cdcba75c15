package reconcile

import (
	"context"
	"strings"
	"testing"

	"github.com/eliasvk/tracksync/internal/models"
	"github.com/eliasvk/tracksync/internal/notes"
	"github.com/eliasvk/tracksync/internal/storage"
)

// fakeEditor records operations against an in-memory property map.
type fakeEditor struct {
	props map[string]any
	ops   []string // "read NAME", "create NAME", "update NAME"
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{props: make(map[string]any)}
}

func (f *fakeEditor) PropertyValue(_ context.Context, _, name string) (any, bool, error) {
	f.ops = append(f.ops, "read "+name)
	v, ok := f.props[name]
	return v, ok, nil
}

func (f *fakeEditor) CreateProperty(_ context.Context, _, name string, value any) error {
	f.ops = append(f.ops, "create "+name)
	f.props[name] = value
	return nil
}

func (f *fakeEditor) UpdateProperty(_ context.Context, _, name string, value any) error {
	f.ops = append(f.ops, "update "+name)
	f.props[name] = value
	return nil
}

func testEnv(t *testing.T, noteDates ...string) (*notes.Resolver, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range noteDates {
		if err := store.Write("daily/"+d+".md", []byte("---\ntitle: "+d+"\n---\n\nBody\n")); err != nil {
			t.Fatal(err)
		}
	}
	return notes.NewResolver(store, "daily", "2006-01-02"), store
}

func report(dateStr string, tasks ...models.TaskDuration) models.DailyReport {
	return models.DailyReport{DateStr: dateStr, Tasks: tasks}
}

func task(name string, sec int) models.TaskDuration {
	return models.TaskDuration{Name: name, TotalTimeSec: sec, TotalTimeMin: models.RoundMinutes(sec)}
}

func TestApplyCreatesProperties(t *testing.T) {
	resolver, _ := testEnv(t, "2024-05-01")
	editor := newFakeEditor()
	r := New(resolver, editor, 0, nil)

	out, err := r.Apply(context.Background(), report("2024-05-01",
		task("Writing", 1850),
		task("Coding", 600),
	))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Skipped || out.ActiveTasks != 2 || out.Written != 2 {
		t.Errorf("outcome = %+v", out)
	}
	if editor.props["Writing (min)"] != 31 {
		t.Errorf("Writing (min) = %v", editor.props["Writing (min)"])
	}
	if editor.props["Coding (min)"] != 10 {
		t.Errorf("Coding (min) = %v", editor.props["Coding (min)"])
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	resolver, _ := testEnv(t, "2024-05-01")
	editor := newFakeEditor()
	r := New(resolver, editor, 0, nil)
	rep := report("2024-05-01", task("Writing", 1850))

	first, err := r.Apply(context.Background(), rep)
	if err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if first.Written != 1 {
		t.Fatalf("first written = %d", first.Written)
	}

	second, err := r.Apply(context.Background(), rep)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if second.Written != 0 {
		t.Errorf("second written = %d, want 0", second.Written)
	}
}

func TestApplySkipsInactiveTasks(t *testing.T) {
	resolver, _ := testEnv(t, "2024-05-01")
	editor := newFakeEditor()
	r := New(resolver, editor, 0, nil)

	out, err := r.Apply(context.Background(), report("2024-05-01",
		task("Zero", 0),
		task("Blip", 29),
		task("Real", 30),
	))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.ActiveTasks != 1 || out.Written != 1 {
		t.Errorf("outcome = %+v", out)
	}
	if _, ok := editor.props["Zero (min)"]; ok {
		t.Error("zero-minute task written")
	}
	if _, ok := editor.props["Blip (min)"]; ok {
		t.Error("29-second task written")
	}
}

func TestApplyStrictSequencing(t *testing.T) {
	resolver, _ := testEnv(t, "2024-05-01")
	editor := newFakeEditor()
	// Pre-set B so its cycle is read-only.
	editor.props["B (min)"] = 2

	r := New(resolver, editor, 0, nil)
	out, err := r.Apply(context.Background(), report("2024-05-01",
		task("A", 60),
		task("B", 120),
		task("C", 180),
	))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.ActiveTasks != 3 || out.Written != 2 {
		t.Errorf("outcome = %+v", out)
	}

	// Exactly one read per active task, each followed by its own write
	// (if any) before the next read starts.
	want := []string{
		"read A (min)", "create A (min)",
		"read B (min)",
		"read C (min)", "create C (min)",
	}
	if strings.Join(editor.ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v\nwant %v", editor.ops, want)
	}
}

func TestApplyUpdatesChangedValue(t *testing.T) {
	resolver, _ := testEnv(t, "2024-05-01")
	editor := newFakeEditor()
	editor.props["Writing (min)"] = 10

	r := New(resolver, editor, 0, nil)
	out, err := r.Apply(context.Background(), report("2024-05-01", task("Writing", 1850)))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Written != 1 {
		t.Errorf("written = %d", out.Written)
	}
	if editor.ops[len(editor.ops)-1] != "update Writing (min)" {
		t.Errorf("ops = %v, want update last", editor.ops)
	}
}

func TestApplyMissingNoteSkips(t *testing.T) {
	resolver, _ := testEnv(t) // no notes at all
	editor := newFakeEditor()
	r := New(resolver, editor, 0, nil)

	out, err := r.Apply(context.Background(), report("2024-05-01", task("Writing", 1850)))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !out.Skipped {
		t.Error("expected skipped outcome")
	}
	if len(editor.ops) != 0 {
		t.Errorf("ops = %v, want none", editor.ops)
	}
}

func TestApplyEndToEndOnRealNote(t *testing.T) {
	resolver, store := testEnv(t, "2024-05-01")
	editor := notes.NewFileEditor(store)
	r := New(resolver, editor, 0, nil)

	out, err := r.Apply(context.Background(), report("2024-05-01", task("Writing", 1850)))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Written != 1 {
		t.Errorf("written = %d", out.Written)
	}

	data, err := store.Read("daily/2024-05-01.md")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Writing (min): 31") {
		t.Errorf("note missing property:\n%s", data)
	}

	// And a second pass writes nothing (string-identical file).
	before := string(data)
	if _, err := r.Apply(context.Background(), report("2024-05-01", task("Writing", 1850))); err != nil {
		t.Fatal(err)
	}
	after, _ := store.Read("daily/2024-05-01.md")
	if string(after) != before {
		t.Errorf("idempotent re-apply changed the note")
	}
}

func TestMinutesEqualStringValues(t *testing.T) {
	if !minutesEqual("31", 31) {
		t.Error("string minutes should compare equal")
	}
	if minutesEqual("32", 31) {
		t.Error("different string minutes compared equal")
	}
	if minutesEqual("thirty", 31) {
		t.Error("non-numeric string compared equal")
	}
}
