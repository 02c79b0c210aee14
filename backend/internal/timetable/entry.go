// ============================================================================
// backend/internal/timetable/entry.go
// Schedule entry model and the normalisation helpers used by every view
// ============================================================================

package timetable

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Display window of the weekly grid (inclusive hour columns).
const (
	StartHour = 8
	EndHour   = 21
)

// DayOrder is the canonical weekday order, Monday first.
var DayOrder = []string{"จันทร์", "อังคาร", "พุธ", "พฤหัสบดี", "ศุกร์", "เสาร์", "อาทิตย์"}

// dayAliases maps a trimmed, lower-cased day representation to its canonical name.
var dayAliases = map[string]string{
	"จันทร์": "จันทร์", "จ.": "จันทร์", "mon": "จันทร์", "monday": "จันทร์", "1": "จันทร์",
	"อังคาร": "อังคาร", "อ.": "อังคาร", "tue": "อังคาร", "tuesday": "อังคาร", "2": "อังคาร",
	"พุธ": "พุธ", "พ.": "พุธ", "wed": "พุธ", "wednesday": "พุธ", "3": "พุธ",
	"พฤหัสบดี": "พฤหัสบดี", "พฤ.": "พฤหัสบดี", "thu": "พฤหัสบดี", "thursday": "พฤหัสบดี", "4": "พฤหัสบดี",
	"ศุกร์": "ศุกร์", "ศ.": "ศุกร์", "fri": "ศุกร์", "friday": "ศุกร์", "5": "ศุกร์",
	"เสาร์": "เสาร์", "ส.": "เสาร์", "sat": "เสาร์", "saturday": "เสาร์", "6": "เสาร์",
	"อาทิตย์": "อาทิตย์", "อา.": "อาทิตย์", "sun": "อาทิตย์", "sunday": "อาทิตย์", "7": "อาทิตย์",
}

// ============================================================================
// Loosely typed scalar
// ============================================================================

// Value is a JSON scalar the backend may send either as a number or a string.
// Valid is false when the field was absent or null.
type Value struct {
	Text  string
	Valid bool
}

// Int returns a Value holding n.
func Int(n int) Value { return Value{Text: strconv.Itoa(n), Valid: true} }

// Str returns a Value holding s.
func Str(s string) Value { return Value{Text: s, Valid: true} }

// UnmarshalJSON accepts numbers, strings and null.
func (v *Value) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*v = Value{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value{Text: s, Valid: true}
		return nil
	}
	*v = Value{Text: raw, Valid: true}
	return nil
}

// MarshalJSON writes the value back as a JSON string, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Text)
}

// Atoi reads the leading integer of the value: optional whitespace and sign,
// then digits. "8:00" reads as 8, "abc" does not read at all.
func (v Value) Atoi() (int, bool) {
	if !v.Valid {
		return 0, false
	}
	s := strings.TrimLeft(v.Text, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == end {
		return 0, false
	}
	n, err := strconv.Atoi(s[:digits])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ============================================================================
// Schedule entry
// ============================================================================

// Entry is one generated class period as served by /api/schedule/view/.
type Entry struct {
	ID           Value  `json:"id"`
	Day          string `json:"Day"`
	TimeSlot     string `json:"Time_Slot,omitempty"`
	Teacher      string `json:"Teacher"`
	Room         string `json:"Room"`
	RoomType     string `json:"Room_Type,omitempty"`
	StudentGroup string `json:"Student_Group,omitempty"`
	SubjectName  string `json:"Subject_Name"`
	CourseCode   string `json:"Course_Code"`
	Type         string `json:"Type"`

	Hour          Value `json:"Hour"`
	HourStart     Value `json:"Hour_Start"`
	HourEnd       Value `json:"Hour_End"`
	StartHourAlt  Value `json:"Start_Hour"`
	EndHourAlt    Value `json:"End_Hour"`
	DurationHours Value `json:"Duration_Hours"`
}

// NormalizeDay maps any known day spelling onto its canonical Thai name.
// Unknown spellings come back untouched; an empty input stays empty.
func NormalizeDay(day string) string {
	if day == "" {
		return ""
	}
	if canonical, ok := dayAliases[strings.ToLower(strings.TrimSpace(day))]; ok {
		return canonical
	}
	return day
}

// DayOf resolves the entry's weekday from Day, falling back to the
// Time_Slot prefix ("จันทร์_08" -> "จันทร์").
func DayOf(e Entry) string {
	day := e.Day
	if day == "" && e.TimeSlot != "" {
		day = strings.SplitN(e.TimeSlot, "_", 2)[0]
	}
	return NormalizeDay(day)
}

// HourRange resolves [start, end) from whichever hour fields are present.
// ok is false when no start hour can be read.
func HourRange(e Entry) (start, end int, ok bool) {
	start, ok = e.HourStart.Atoi()
	if !ok {
		start, ok = e.StartHourAlt.Atoi()
	}
	if !ok && e.Hour.Valid && e.Hour.Text != "" {
		start, ok = e.Hour.Atoi()
	}
	if !ok {
		return 0, 0, false
	}

	end, hasEnd := e.HourEnd.Atoi()
	if !hasEnd {
		end, hasEnd = e.EndHourAlt.Atoi()
	}
	if !hasEnd && e.DurationHours.Valid {
		// An unreadable duration adds nothing; merging widens it to one hour.
		d, _ := e.DurationHours.Atoi()
		end, hasEnd = start+d, true
	}
	if !hasEnd {
		end = start + 1
	}
	return start, end, true
}

// IdentityKey groups entries that belong to the same displayed block.
func IdentityKey(e Entry) string {
	return strings.Join([]string{e.CourseCode, e.SubjectName, e.Teacher, e.Room, strings.ToLower(e.Type)}, "|")
}

// TimeLabel is the list-view time text: the slot code, or "<Hour>:00".
func TimeLabel(e Entry) string {
	if e.TimeSlot != "" {
		return e.TimeSlot
	}
	return e.Hour.Text + ":00"
}
