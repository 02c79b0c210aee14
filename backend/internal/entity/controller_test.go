package entity

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type teacher struct {
	ID   string
	Name string
	Kind string
}

func teacherSchema() Schema[teacher] {
	return Schema[teacher]{
		Name:  "teacher",
		Title: "Teachers",
		Fields: []Field[teacher]{
			{Key: "id", Label: "รหัสอาจารย์", Required: true,
				Get: func(t teacher) string { return t.ID }, Set: func(t *teacher, v string) { t.ID = v }},
			{Key: "name", Label: "ชื่ออาจารย์", Required: true,
				Get: func(t teacher) string { return t.Name }, Set: func(t *teacher, v string) { t.Name = v }},
			{Key: "kind", Label: "ประเภท", Required: true, InvalidValue: "เลือกประเภท", Input: InputSelect, Lookup: "kinds",
				Get: func(t teacher) string { return t.Kind }, Set: func(t *teacher, v string) { t.Kind = v }},
		},
		ID: func(t teacher) string { return t.ID },
	}
}

// fakeRemote upserts by id like the backend's add endpoints.
type fakeRemote struct {
	rows      map[string]teacher
	createErr error
	removeErr error
	loadErr   error
	loads     int
	creates   int
	lastEdit  *teacher
}

func newFakeRemote(rows ...teacher) *fakeRemote {
	f := &fakeRemote{rows: map[string]teacher{}}
	for _, r := range rows {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRemote) Capabilities() Capabilities {
	return Capabilities{Load: true, Create: true, Remove: true}
}

func (f *fakeRemote) Load(ctx context.Context) ([]teacher, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]teacher, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRemote) Create(ctx context.Context, rec teacher, editing *teacher) error {
	f.creates++
	f.lastEdit = editing
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeRemote) Remove(ctx context.Context, id string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.rows, id)
	return nil
}

type fakeOptions struct{ calls []string }

func (f *fakeOptions) Options(ctx context.Context, lookup string, form Values) ([]Option, error) {
	f.calls = append(f.calls, lookup)
	return []Option{{Value: "1", Label: "Full time"}}, nil
}

func TestCollect(t *testing.T) {
	c := New(teacherSchema(), nil)

	t.Run("Valid form returns exactly the schema keys", func(t *testing.T) {
		c.SetForm(Values{"id": " 5 ", "name": "Alice", "kind": "1", "extra": "x"})
		got, err := c.Collect()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(got) != 3 || got["id"] != "5" || got["name"] != "Alice" || got["kind"] != "1" {
			t.Errorf("Unexpected values: %v", got)
		}
	})

	t.Run("First invalid field wins", func(t *testing.T) {
		c.SetForm(Values{"id": "", "name": "", "kind": "1"})
		_, err := c.Collect()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Key != "id" {
			t.Fatalf("Expected validation error on id, got %v", err)
		}
		if ve.Error() != "กรอก/เลือก รหัสอาจารย์ ให้ครบ" {
			t.Errorf("Unexpected message: %q", ve.Error())
		}
	})

	t.Run("Sentinel counts as empty", func(t *testing.T) {
		c.SetForm(Values{"id": "5", "name": "Alice", "kind": "เลือกประเภท"})
		_, err := c.Collect()
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Key != "kind" {
			t.Errorf("Expected validation error on kind, got %v", err)
		}
	})

	t.Run("Whitespace only counts as empty", func(t *testing.T) {
		c.SetForm(Values{"id": "5", "name": "   ", "kind": "1"})
		if _, err := c.Collect(); err == nil {
			t.Error("Expected validation error")
		}
	})
}

func TestSubmitWithRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("Success reloads and shows the new row", func(t *testing.T) {
		remote := newFakeRemote()
		c := New(teacherSchema(), remote)
		if err := c.Init(ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		c.SetForm(Values{"id": "5", "name": "Alice", "kind": "1"})
		if err := c.Submit(ctx); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if remote.loads != 2 {
			t.Errorf("Expected 2 loads, got %d", remote.loads)
		}
		view := c.Render()
		if len(view.Rows) != 1 || view.Rows[0].Cells[0] != "5" || view.Rows[0].Cells[1] != "Alice" {
			t.Errorf("Expected row for id 5, got %+v", view.Rows)
		}
		if c.State().EditIndex != -1 || c.Form()["name"] != "" {
			t.Error("Expected form reset to create mode")
		}
	})

	t.Run("Failure leaves table unchanged and raises a notice", func(t *testing.T) {
		remote := newFakeRemote(teacher{ID: "1", Name: "Bob", Kind: "1"})
		c := New(teacherSchema(), remote)
		c.Init(ctx)
		remote.createErr = errors.New("duplicate teacher")

		c.SetForm(Values{"id": "5", "name": "Alice", "kind": "1"})
		if err := c.Submit(ctx); err == nil {
			t.Fatal("Expected error")
		}
		if remote.loads != 1 {
			t.Errorf("Expected no reload, got %d loads", remote.loads)
		}
		if len(c.State().Data) != 1 {
			t.Errorf("Expected 1 row, got %d", len(c.State().Data))
		}
		n := c.Render().Notice
		if n == nil || n.Level != NoticeError || n.Message != "duplicate teacher" {
			t.Errorf("Expected error notice, got %+v", n)
		}
		if c.Form()["name"] != "Alice" {
			t.Error("Expected form values kept after failure")
		}
	})

	t.Run("Validation failure makes no call", func(t *testing.T) {
		remote := newFakeRemote()
		c := New(teacherSchema(), remote)
		c.SetForm(Values{"id": "5"})
		if err := c.Submit(ctx); err == nil {
			t.Fatal("Expected validation error")
		}
		if remote.creates != 0 {
			t.Errorf("Expected no create call, got %d", remote.creates)
		}
		if n := c.Notice(); n == nil || n.Level != NoticeWarning {
			t.Errorf("Expected warning notice, got %+v", n)
		}
	})

	t.Run("Edit, save and reload keeps count", func(t *testing.T) {
		remote := newFakeRemote(teacher{ID: "1", Name: "Bob", Kind: "1"}, teacher{ID: "2", Name: "Carol", Kind: "1"})
		c := New(teacherSchema(), remote)
		c.Init(ctx)

		if err := c.Edit(1); err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		form := c.Form()
		form["name"] = "Caroline"
		c.SetForm(form)
		if err := c.Submit(ctx); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if remote.lastEdit == nil || remote.lastEdit.Name != "Carol" {
			t.Errorf("Expected editing record Carol, got %+v", remote.lastEdit)
		}
		data := c.State().Data
		if len(data) != 2 || data[1].Name != "Caroline" {
			t.Errorf("Expected Caroline at index 1 of 2, got %+v", data)
		}
	})
}

func TestEditAndCancel(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote(teacher{ID: "1", Name: "Bob", Kind: "1"})
	c := New(teacherSchema(), remote)
	c.Init(ctx)
	before := c.State().Data

	if err := c.Edit(0); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	view := c.Render()
	if view.SubmitLabel != LabelSave || !view.ShowCancel || view.Fields[1].Value != "Bob" {
		t.Errorf("Expected edit mode with Bob pre-filled, got %+v", view)
	}

	c.Cancel()
	view = c.Render()
	if view.SubmitLabel != LabelAdd || view.ShowCancel || view.EditIndex != -1 {
		t.Errorf("Expected create mode, got %+v", view)
	}
	for _, f := range view.Fields {
		if f.Value != "" {
			t.Errorf("Expected cleared input %s, got %q", f.Key, f.Value)
		}
	}
	after := c.State().Data
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("Expected data unchanged, got %+v", after)
	}

	if err := c.Edit(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestLocalMode(t *testing.T) {
	ctx := context.Background()
	c := New(teacherSchema(), nil)

	c.SetForm(Values{"id": "1", "name": "Bob", "kind": "1"})
	c.Submit(ctx)
	c.SetForm(Values{"id": "2", "name": "Carol", "kind": "1"})
	c.Submit(ctx)
	if len(c.State().Data) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(c.State().Data))
	}

	t.Run("Save overwrites in place", func(t *testing.T) {
		c.Edit(0)
		c.SetForm(Values{"id": "1", "name": "Robert", "kind": "1"})
		if err := c.Submit(ctx); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		data := c.State().Data
		if len(data) != 2 || data[0].Name != "Robert" {
			t.Errorf("Expected Robert at index 0, got %+v", data)
		}
	})

	t.Run("Removing the edited row resets the form", func(t *testing.T) {
		c.Edit(1)
		if err := c.Remove(ctx, 1); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if c.State().EditIndex != -1 || len(c.State().Data) != 1 {
			t.Errorf("Expected 1 row in create mode, got %+v", c.State())
		}
	})

	t.Run("Removing an earlier row keeps the edited record", func(t *testing.T) {
		c.SetForm(Values{"id": "3", "name": "Dan", "kind": "1"})
		c.Submit(ctx)
		c.Edit(1)
		c.Remove(ctx, 0)
		st := c.State()
		if st.EditIndex != 0 || st.Data[0].Name != "Dan" {
			t.Errorf("Expected edit index to follow Dan, got %+v", st)
		}
	})
}

func TestRemoveWithRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("Remote remove reloads", func(t *testing.T) {
		remote := newFakeRemote(teacher{ID: "1", Name: "Bob"}, teacher{ID: "2", Name: "Carol"})
		c := New(teacherSchema(), remote)
		c.Init(ctx)
		if err := c.Remove(ctx, 0); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if remote.loads != 2 || len(c.State().Data) != 1 {
			t.Errorf("Expected reload with 1 row, got loads=%d rows=%d", remote.loads, len(c.State().Data))
		}
	})

	t.Run("Remote failure keeps rows", func(t *testing.T) {
		remote := newFakeRemote(teacher{ID: "1", Name: "Bob"})
		c := New(teacherSchema(), remote)
		c.Init(ctx)
		remote.removeErr = errors.New("in use")
		if err := c.Remove(ctx, 0); err == nil {
			t.Fatal("Expected error")
		}
		if len(c.State().Data) != 1 || c.Notice() == nil {
			t.Error("Expected row kept and notice shown")
		}
	})

	threeRows := func() (*fakeRemote, *Controller[teacher]) {
		remote := newFakeRemote(
			teacher{ID: "1", Name: "Alice", Kind: "1"},
			teacher{ID: "2", Name: "Bob", Kind: "1"},
			teacher{ID: "3", Name: "Carol", Kind: "1"},
		)
		c := New(teacherSchema(), remote)
		c.Init(ctx)
		return remote, c
	}

	t.Run("Removing the edited row resets the form", func(t *testing.T) {
		_, c := threeRows()
		c.Edit(1)
		if err := c.Remove(ctx, 1); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		st := c.State()
		if st.EditIndex != -1 || c.Form()["id"] != "" {
			t.Errorf("Expected create mode with empty form, got index %d form %v", st.EditIndex, c.Form())
		}
	})

	t.Run("Removing an earlier row keeps the edit target", func(t *testing.T) {
		_, c := threeRows()
		c.Edit(2)
		if err := c.Remove(ctx, 0); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		st := c.State()
		if st.EditIndex != 1 || st.Data[st.EditIndex].ID != "3" {
			t.Errorf("Expected edit index to follow Carol, got %+v", st)
		}
	})

	t.Run("Reload failure after remote remove keeps edit target", func(t *testing.T) {
		remote, c := threeRows()
		c.Edit(2)
		remote.loadErr = errors.New("reload down")
		if err := c.Remove(ctx, 0); err == nil {
			t.Fatal("Expected reload error")
		}

		st := c.State()
		if len(st.Data) != 2 {
			t.Fatalf("Expected the deleted row dropped locally, got %d rows", len(st.Data))
		}
		if st.EditIndex != 1 || st.Data[st.EditIndex].ID != "3" {
			t.Errorf("Expected edit index on Carol, got %+v", st)
		}

		remote.loadErr = nil
		c.SetForm(Values{"id": "3", "name": "Carol B", "kind": "1"})
		if err := c.Submit(ctx); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if remote.lastEdit == nil || remote.lastEdit.ID != "3" {
			t.Errorf("Expected save to target id 3, got %+v", remote.lastEdit)
		}
	})
}

func TestRender(t *testing.T) {
	t.Run("Empty placeholder spans every column", func(t *testing.T) {
		view := New(teacherSchema(), nil).Render()
		if !view.Empty || view.EmptyColspan != 4 || view.EmptyText != LabelEmpty {
			t.Errorf("Unexpected empty view: %+v", view)
		}
		if len(view.Columns) != 3 || view.Columns[0].Label != "รหัสอาจารย์" {
			t.Errorf("Unexpected columns: %+v", view.Columns)
		}
	})

	t.Run("Lookup options are attached to selects", func(t *testing.T) {
		c := New(teacherSchema(), nil)
		src := &fakeOptions{}
		c.LoadOptions(context.Background(), src)
		view := c.Render()
		if len(src.calls) != 1 || src.calls[0] != "kinds" {
			t.Errorf("Expected one kinds lookup, got %v", src.calls)
		}
		kind := view.Fields[2]
		if kind.Placeholder != "เลือกประเภท" || len(kind.Options) != 1 {
			t.Errorf("Unexpected select field: %+v", kind)
		}
	})
}
