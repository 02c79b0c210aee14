package timetable

import (
	"sort"
	"strings"
)

// Block is a merged run of periods sharing a day and identity key.
type Block struct {
	Day         string `json:"day"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	CourseCode  string `json:"course_code"`
	SubjectName string `json:"subject_name"`
	Teacher     string `json:"teacher"`
	Room        string `json:"room"`
	Type        string `json:"type"`
}

// MergeBlocks groups rows per canonical day and identity key, clips them to the
// display window and coalesces touching or overlapping runs.
// Days outside DayOrder and rows without a start hour are skipped.
func MergeBlocks(rows []Entry) map[string][]Block {
	type group struct {
		keys  []string
		byKey map[string][]Block
	}
	days := make(map[string]*group, len(DayOrder))
	for _, d := range DayOrder {
		days[d] = &group{byKey: map[string][]Block{}}
	}

	for _, r := range rows {
		g, ok := days[DayOf(r)]
		if !ok {
			continue
		}
		key := IdentityKey(r)
		if _, seen := g.byKey[key]; !seen {
			g.keys = append(g.keys, key)
			g.byKey[key] = nil
		}

		sh, eh, ok := HourRange(r)
		if !ok {
			continue
		}
		if eh <= sh {
			eh = sh + 1
		}
		// Entirely before or after the window.
		if eh <= StartHour || sh > EndHour {
			continue
		}
		sh = max(sh, StartHour)
		eh = min(eh, EndHour+1)

		g.byKey[key] = append(g.byKey[key], Block{
			Day:         DayOf(r),
			Start:       sh,
			End:         eh,
			CourseCode:  r.CourseCode,
			SubjectName: r.SubjectName,
			Teacher:     r.Teacher,
			Room:        r.Room,
			Type:        strings.ToLower(r.Type),
		})
	}

	out := make(map[string][]Block, len(DayOrder))
	for _, day := range DayOrder {
		g := days[day]
		merged := []Block{}
		for _, key := range g.keys {
			merged = append(merged, coalesce(g.byKey[key])...)
		}
		out[day] = merged
	}
	return out
}

// coalesce merges sorted runs; a strict gap starts a new block.
func coalesce(xs []Block) []Block {
	if len(xs) == 0 {
		return nil
	}
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].Start < xs[j].Start })

	var out []Block
	cur := xs[0]
	for _, b := range xs[1:] {
		if b.Start <= cur.End {
			cur.End = max(cur.End, b.End)
			continue
		}
		out = append(out, cur)
		cur = b
	}
	return append(out, cur)
}
