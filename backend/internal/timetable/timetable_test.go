package timetable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func period(day string, start, end int, code string) Entry {
	return Entry{
		Day:         day,
		Teacher:     "อ.สมชาย",
		Room:        "R101",
		SubjectName: "Programming",
		CourseCode:  code,
		Type:        "Lecture",
		HourStart:   Int(start),
		HourEnd:     Int(end),
	}
}

func TestNormalizeDay(t *testing.T) {
	t.Run("Aliases map to canonical name", func(t *testing.T) {
		for _, in := range []string{"mon", "Monday", " MON ", "1", "จ.", "จันทร์"} {
			if got := NormalizeDay(in); got != "จันทร์" {
				t.Errorf("Expected จันทร์ for %q, got %q", in, got)
			}
		}
	})

	t.Run("Idempotent on canonical names", func(t *testing.T) {
		for _, d := range DayOrder {
			if got := NormalizeDay(NormalizeDay(d)); got != d {
				t.Errorf("Expected %q, got %q", d, got)
			}
		}
	})

	t.Run("Unknown passes through", func(t *testing.T) {
		if got := NormalizeDay("Funday"); got != "Funday" {
			t.Errorf("Expected Funday, got %q", got)
		}
		if got := NormalizeDay(""); got != "" {
			t.Errorf("Expected empty, got %q", got)
		}
	})

	t.Run("Day falls back to time slot prefix", func(t *testing.T) {
		e := Entry{TimeSlot: "fri_10"}
		if got := DayOf(e); got != "ศุกร์" {
			t.Errorf("Expected ศุกร์, got %q", got)
		}
	})
}

func TestHourRange(t *testing.T) {
	tests := []struct {
		name      string
		entry     Entry
		wantStart int
		wantEnd   int
		wantOK    bool
	}{
		{"Hour_Start/Hour_End", Entry{HourStart: Int(9), HourEnd: Int(11)}, 9, 11, true},
		{"Start_Hour/End_Hour", Entry{StartHourAlt: Str("13"), EndHourAlt: Str("15")}, 13, 15, true},
		{"Hour plus duration", Entry{Hour: Int(10), DurationHours: Int(3)}, 10, 13, true},
		{"Hour only defaults to one hour", Entry{Hour: Str("14:00")}, 14, 15, true},
		{"Empty hour string is absent", Entry{Hour: Str("")}, 0, 0, false},
		{"Unparsable Hour_Start falls through", Entry{HourStart: Str("x"), Hour: Int(8)}, 8, 9, true},
		{"No start", Entry{HourEnd: Int(10)}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e, ok := HourRange(tt.entry)
			if ok != tt.wantOK || s != tt.wantStart || e != tt.wantEnd {
				t.Errorf("Expected (%d,%d,%v), got (%d,%d,%v)", tt.wantStart, tt.wantEnd, tt.wantOK, s, e, ok)
			}
		})
	}
}

func TestEntryDecodesMixedScalars(t *testing.T) {
	raw := `{"id": 7, "Day": "mon", "Hour": "9", "Hour_End": 11, "Duration_Hours": null, "Course_Code": "CS101"}`
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if e.ID.Text != "7" || !e.ID.Valid {
		t.Errorf("Expected id 7, got %+v", e.ID)
	}
	if e.DurationHours.Valid {
		t.Error("Expected null duration to be invalid")
	}
	s, end, ok := HourRange(e)
	if !ok || s != 9 || end != 11 {
		t.Errorf("Expected 9-11, got %d-%d (%v)", s, end, ok)
	}
}

func TestMergeBlocks(t *testing.T) {
	t.Run("Contiguous rows merge", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{period("จันทร์", 8, 10, "A"), period("จันทร์", 10, 12, "A")})
		got := blocks["จันทร์"]
		if len(got) != 1 || got[0].Start != 8 || got[0].End != 12 {
			t.Errorf("Expected one block 8-12, got %+v", got)
		}
	})

	t.Run("Gap starts a new block", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{period("จันทร์", 8, 10, "A"), period("จันทร์", 11, 12, "A")})
		if len(blocks["จันทร์"]) != 2 {
			t.Errorf("Expected 2 blocks, got %d", len(blocks["จันทร์"]))
		}
	})

	t.Run("Overlap extends to the max end", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{period("mon", 9, 13, "A"), period("1", 10, 11, "A")})
		got := blocks["จันทร์"]
		if len(got) != 1 || got[0].Start != 9 || got[0].End != 13 {
			t.Errorf("Expected one block 9-13, got %+v", got)
		}
	})

	t.Run("Different identity keys stay apart", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{period("จันทร์", 8, 10, "A"), period("จันทร์", 10, 12, "B")})
		if len(blocks["จันทร์"]) != 2 {
			t.Errorf("Expected 2 blocks, got %d", len(blocks["จันทร์"]))
		}
	})

	t.Run("Type is compared case-insensitively", func(t *testing.T) {
		a := period("จันทร์", 8, 9, "A")
		b := period("จันทร์", 9, 10, "A")
		b.Type = "LECTURE"
		if got := MergeBlocks([]Entry{a, b})["จันทร์"]; len(got) != 1 {
			t.Errorf("Expected 1 block, got %d", len(got))
		}
	})

	t.Run("Clipping and dropping", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{
			period("อังคาร", 7, 9, "A"),
			period("อังคาร", 5, 7, "B"),
			period("อังคาร", 22, 23, "C"),
			period("อังคาร", 20, 25, "D"),
		})
		got := blocks["อังคาร"]
		if len(got) != 2 {
			t.Fatalf("Expected 2 blocks, got %+v", got)
		}
		if got[0].Start != 8 || got[0].End != 9 {
			t.Errorf("Expected 8-9, got %d-%d", got[0].Start, got[0].End)
		}
		if got[1].Start != 20 || got[1].End != EndHour+1 {
			t.Errorf("Expected 20-22, got %d-%d", got[1].Start, got[1].End)
		}
	})

	t.Run("End before start widens to one hour", func(t *testing.T) {
		got := MergeBlocks([]Entry{period("พุธ", 10, 9, "A")})["พุธ"]
		if len(got) != 1 || got[0].End != 11 {
			t.Errorf("Expected 10-11, got %+v", got)
		}
	})

	t.Run("Unknown day skipped", func(t *testing.T) {
		blocks := MergeBlocks([]Entry{period("Funday", 8, 9, "A")})
		for _, d := range DayOrder {
			if len(blocks[d]) != 0 {
				t.Errorf("Expected no blocks on %s", d)
			}
		}
	})
}

func TestBuildGrid(t *testing.T) {
	t.Run("Header covers the display window", func(t *testing.T) {
		g := BuildGrid(nil)
		if !g.Empty {
			t.Error("Expected empty grid")
		}
		if len(g.Hours) != EndHour-StartHour+1 || g.Hours[0] != "08:00" || g.Hours[len(g.Hours)-1] != "21:00" {
			t.Errorf("Unexpected hours: %v", g.Hours)
		}
	})

	t.Run("Block spans its hours", func(t *testing.T) {
		g := BuildGrid([]Entry{period("จันทร์", 8, 10, "A"), period("จันทร์", 10, 12, "A")})
		if len(g.Rows) != len(DayOrder) {
			t.Fatalf("Expected %d rows, got %d", len(DayOrder), len(g.Rows))
		}
		monday := g.Rows[0]
		if len(monday.Cells) != 11 {
			t.Fatalf("Expected 11 cells, got %d", len(monday.Cells))
		}
		first := monday.Cells[0]
		if first.Block == nil || first.Span != 4 {
			t.Errorf("Expected block spanning 4, got %+v", first)
		}
		if first.Teacher != "สมชาย" {
			t.Errorf("Expected teacher title stripped, got %q", first.Teacher)
		}
		if first.Class != "tt-type-lecture" {
			t.Errorf("Expected tt-type-lecture, got %q", first.Class)
		}
		if monday.Cells[1].Hour != 12 || monday.Cells[1].Block != nil {
			t.Errorf("Expected empty cell at 12, got %+v", monday.Cells[1])
		}
		if len(g.Rows[1].Cells) != 14 {
			t.Errorf("Expected 14 empty cells on Tuesday, got %d", len(g.Rows[1].Cells))
		}
	})

	t.Run("Covered hours emit no cell", func(t *testing.T) {
		// Both start at 9: the later block wins the start index and the other
		// one still hides hours 10 and 11.
		g := BuildGrid([]Entry{period("จันทร์", 9, 12, "A"), period("จันทร์", 9, 10, "B")})
		monday := g.Rows[0]
		var hours []int
		for _, c := range monday.Cells {
			hours = append(hours, c.Hour)
		}
		if len(monday.Cells) != 12 || hours[1] != 9 || hours[2] != 12 {
			t.Errorf("Unexpected cell hours: %v", hours)
		}
	})
}

func TestTypeClass(t *testing.T) {
	cases := map[string]string{"Lab": "tt-type-lab", "lecture": "tt-type-lecture", "Tutorial": "tt-type-tutorial", "seminar": "tt-type-seminar", "workshop": "tt-type-default", "": "tt-type-default"}
	for in, want := range cases {
		if got := TypeClass(in); got != want {
			t.Errorf("Expected %s for %q, got %s", want, in, got)
		}
	}
}

func TestUniqueItemsAndFilter(t *testing.T) {
	entries := []Entry{
		{Teacher: " ค ", SubjectName: "Data", CourseCode: "CS2"},
		{Teacher: "ก", SubjectName: "Algorithms", CourseCode: "CS1", Room: "R1"},
		{Teacher: "ข", SubjectName: "Networks", CourseCode: "CS3"},
		{Teacher: "ก", SubjectName: "Compilers", CourseCode: "CS4", Room: "R2"},
		{Teacher: "  "},
	}

	t.Run("Unique, trimmed, Thai order", func(t *testing.T) {
		got := UniqueItems(entries, CategoryTeacher)
		want := []string{"ก", "ข", "ค"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("Filter by item matches trimmed field", func(t *testing.T) {
		if got := Filter(entries, CategoryTeacher, "ค", ""); len(got) != 1 {
			t.Errorf("Expected 1 row, got %d", len(got))
		}
	})

	t.Run("Search narrows to a subset", func(t *testing.T) {
		all := Filter(entries, CategoryTeacher, "ก", "")
		for _, q := range []string{"comp", "CS1", "r2", "zzz", ""} {
			sub := Filter(entries, CategoryTeacher, "ก", q)
			if len(sub) > len(all) {
				t.Errorf("Search %q returned more rows than unfiltered", q)
			}
			for _, s := range sub {
				found := false
				for _, a := range all {
					if a.CourseCode == s.CourseCode {
						found = true
					}
				}
				if !found {
					t.Errorf("Search %q returned %s outside the unfiltered set", q, s.CourseCode)
				}
			}
		}
		if got := Filter(entries, CategoryTeacher, "ก", "COMP"); len(got) != 1 || got[0].CourseCode != "CS4" {
			t.Errorf("Expected CS4 only, got %+v", got)
		}
	})
}

type fakeSource struct {
	entries []Entry
	err     error
	calls   int
}

func (f *fakeSource) FetchSchedule(ctx context.Context) ([]Entry, error) {
	f.calls++
	return f.entries, f.err
}

func TestViewer(t *testing.T) {
	ctx := context.Background()

	t.Run("Schedule is fetched once per instance", func(t *testing.T) {
		src := &fakeSource{entries: []Entry{period("จันทร์", 8, 9, "A")}}
		v := NewViewer(src)
		v.Open(ctx, CategoryTeacher)
		v.Open(ctx, CategoryRoom)
		if src.calls != 1 {
			t.Errorf("Expected 1 fetch, got %d", src.calls)
		}
		if items := v.Items(); len(items) != 1 || items[0] != "R101" {
			t.Errorf("Expected [R101], got %v", items)
		}
	})

	t.Run("Fetch failure yields empty list", func(t *testing.T) {
		src := &fakeSource{err: errors.New("boom")}
		v := NewViewer(src)
		v.Open(ctx, CategoryTeacher)
		v.Open(ctx, CategoryTeacher)
		if src.calls != 1 {
			t.Errorf("Expected 1 fetch, got %d", src.calls)
		}
		if sel := v.Selection(); !sel.Empty {
			t.Error("Expected empty selection")
		}
	})

	t.Run("Select item resets search and mode", func(t *testing.T) {
		v := NewViewer(&fakeSource{entries: []Entry{period("จันทร์", 8, 9, "A")}})
		v.Open(ctx, CategoryTeacher)
		v.SelectItem("อ.สมชาย")
		v.SetSearch("xyz")
		v.ToggleMode()
		v.SelectItem("อ.สมชาย")
		if v.Search() != "" || v.Mode() != ModeGrid || v.Screen() != ScreenTable {
			t.Errorf("Unexpected state: search=%q mode=%s screen=%s", v.Search(), v.Mode(), v.Screen())
		}
		tv := v.Table()
		if tv.Title != "ตารางสอน - อ.สมชาย" || tv.Grid == nil || tv.ToggleLabel != "มุมมองรายการ" {
			t.Errorf("Unexpected table view: %+v", tv)
		}
	})

	t.Run("Toggle renders list without refetch", func(t *testing.T) {
		src := &fakeSource{entries: []Entry{period("จันทร์", 8, 9, "A"), period("จันทร์", 9, 10, "A")}}
		v := NewViewer(src)
		v.Open(ctx, CategoryTeacher)
		v.SelectItem("อ.สมชาย")
		v.ToggleMode()
		tv := v.Table()
		if tv.Mode != ModeList || len(tv.Cards) != 2 || tv.Grid != nil {
			t.Errorf("Expected 2 list cards, got %+v", tv)
		}
		if src.calls != 1 {
			t.Errorf("Expected 1 fetch, got %d", src.calls)
		}
		v.Back()
		if v.Screen() != ScreenSelection {
			t.Errorf("Expected selection screen, got %s", v.Screen())
		}
	})
}

func TestExport(t *testing.T) {
	rows := []Entry{period("จันทร์", 8, 10, "A"), period("จันทร์", 10, 12, "A")}
	rows[0].Hour = Int(8)

	t.Run("CSV carries BOM and header", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCSV(&buf, rows); err != nil {
			t.Fatalf("WriteCSV failed: %v", err)
		}
		out := buf.String()
		if !strings.HasPrefix(out, "\ufeffCourse_Code,Subject_Name,Teacher,Room,Room_Type,Type,Day,Hour\n") {
			t.Errorf("Unexpected CSV head: %q", out)
		}
		if lines := strings.Count(out, "\n"); lines != 3 {
			t.Errorf("Expected 3 lines, got %d", lines)
		}
	})

	t.Run("XLSX merges block cells", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, "ตารางสอน - อ.สมชาย", BuildGrid(rows)); err != nil {
			t.Fatalf("WriteXLSX failed: %v", err)
		}
		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("OpenReader failed: %v", err)
		}
		defer f.Close()

		if v, _ := f.GetCellValue(SheetName, "B2"); v != "08:00" {
			t.Errorf("Expected 08:00 in B2, got %q", v)
		}
		if v, _ := f.GetCellValue(SheetName, "A3"); v != "จันทร์" {
			t.Errorf("Expected จันทร์ in A3, got %q", v)
		}
		merged, err := f.GetMergeCells(SheetName)
		if err != nil {
			t.Fatalf("GetMergeCells failed: %v", err)
		}
		if len(merged) != 1 || merged[0].GetStartAxis() != "B3" || merged[0].GetEndAxis() != "E3" {
			t.Errorf("Expected one merge B3:E3, got %v", merged)
		}
	})
}
