// ============================================================================
// backend/internal/admin/records.go
// Typed records of every admin entity, decoded from backend list items
// ============================================================================

package admin

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a JSON scalar kept as text. The backend sends ids and counts as
// numbers on some endpoints and as strings on others.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	switch {
	case bytes.Equal(raw, []byte("null")):
		*t = ""
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(raw)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// number converts form text the way the browser's Number() did: blank is 0,
// anything unparsable is sent as null.
func number(t Text) any {
	s := strings.TrimSpace(string(t))
	if s == "" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return nil
}

// ============================================================================
// Lookup-style entities (status envelope, upsert by id)
// ============================================================================

type Teacher struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

type Room struct {
	ID       Text `json:"id"`
	Name     Text `json:"name"`
	Type     Text `json:"type"`
	TypeName Text `json:"type_name,omitempty"`
}

type RoomType struct {
	ID   Text `json:"id"`
	Name Text `json:"name"`
}

type StudentGroup struct {
	ID       Text `json:"id"`
	Name     Text `json:"name"`
	Type     Text `json:"type"`
	TypeName Text `json:"type_name,omitempty"`
}

type GroupType struct {
	ID   Text `json:"id"`
	Type Text `json:"type"`
}

type TimeSlot struct {
	ID    Text `json:"id"`
	Day   Text `json:"day"`
	Start Text `json:"start"`
	End   Text `json:"end"`
}

// GroupAllow links a department (group type) to a time slot it may use.
type GroupAllow struct {
	ID       Text `json:"id"`
	Dept     Text `json:"dept"`
	Slot     Text `json:"slot"`
	DeptName Text `json:"dept_name,omitempty"`
	SlotText Text `json:"slot_text,omitempty"`
}

// ============================================================================
// Course entities (dedicated list endpoints, PUT on edit)
// ============================================================================

type Subject struct {
	ID   Text `json:"id"`
	Code Text `json:"code"`
	Name Text `json:"name"`
}

// Course is a teaching assignment. The backend lists it under its teacher
// schedule table, hence the *_teacher keys.
type Course struct {
	ID             Text `json:"id"`
	Teacher        Text `json:"teacher_name_teacher"`
	SubjectCode    Text `json:"subject_code_teacher"`
	SubjectName    Text `json:"subject_name_teacher"`
	CurriculumType Text `json:"curriculum_type_teacher,omitempty"`
	RoomType       Text `json:"room_type_teacher"`
	Section        Text `json:"section_teacher"`
	StudentGroup   Text `json:"student_group_teacher,omitempty"`
	TheoryHours    Text `json:"theory_slot_amount_teacher"`
	LabHours       Text `json:"lab_slot_amount_teacher"`
}

// PreSchedule is a course pinned to a day and time before generation.
type PreSchedule struct {
	ID             Text `json:"id"`
	Teacher        Text `json:"teacher_name_pre"`
	SubjectCode    Text `json:"subject_code_pre"`
	SubjectName    Text `json:"subject_name_pre"`
	RoomType       Text `json:"room_type_pre"`
	Type           Text `json:"type_pre,omitempty"`
	CurriculumType Text `json:"curriculum_type_pre"`
	Hours          Text `json:"hours_pre,omitempty"`
	GroupNo        Text `json:"group_no_pre,omitempty"`
	Day            Text `json:"day_pre"`
	Start          Text `json:"start_time_pre"`
	Stop           Text `json:"stop_time_pre"`
	Room           Text `json:"room_name_pre"`
}

// Activity blocks a weekly period for everyone (assemblies, sports hours).
type Activity struct {
	ID    Text `json:"id"`
	Name  Text `json:"act_name_activities"`
	Day   Text `json:"day_activities"`
	Start Text `json:"start_time_activities"`
	Stop  Text `json:"stop_time_activities"`
}
