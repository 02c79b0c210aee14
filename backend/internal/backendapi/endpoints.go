package backendapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope describes how one list endpoint wraps its items. The backend is
// not uniform, so every endpoint carries its own envelope.
type Envelope struct {
	// Keys are tried in order; the first present, non-null key holds the list.
	Keys []string
	// RequireStatus rejects bodies whose "status" is not "success".
	RequireStatus bool
	// AllowBare accepts a top-level JSON array.
	AllowBare bool
}

// Items extracts the raw list from a response body. A wrapped body without
// any of the keys yields an empty list.
func (e Envelope) Items(body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if !e.AllowBare {
			return nil, fmt.Errorf("unexpected bare array")
		}
		return trimmed, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}
	for _, key := range e.Keys {
		raw, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		return raw, nil
	}
	return json.RawMessage("[]"), nil
}

var (
	statusItems   = Envelope{Keys: []string{"items"}, RequireStatus: true}
	bareOrResults = Envelope{Keys: []string{"results", "items"}, AllowBare: true}
)

// ListEndpoint is a GET route returning a list.
type ListEndpoint struct {
	Name     string
	Path     string
	Envelope Envelope
}

// Resource is one CRUD resource. Update and Delete paths hold an {id}
// placeholder; an empty Update means the create route upserts.
type Resource struct {
	Name   string
	List   ListEndpoint
	Create string
	Update string
	Delete string
	// StatusEnvelope is true when mutations answer {status: "success"}.
	StatusEnvelope bool
}

// Admin resources.
var (
	TeacherResource = Resource{
		Name:           "teacher",
		List:           ListEndpoint{Name: "teacher.list", Path: "/api/teacher/list/", Envelope: statusItems},
		Create:         "/api/teacher/add/",
		Delete:         "/api/teacher/delete/{id}/",
		StatusEnvelope: true,
	}
	RoomResource = Resource{
		Name:           "room",
		List:           ListEndpoint{Name: "room.list", Path: "/api/room/list/", Envelope: statusItems},
		Create:         "/api/room/add/",
		Delete:         "/api/room/delete/{id}/",
		StatusEnvelope: true,
	}
	RoomTypeResource = Resource{
		Name:           "roomtype",
		List:           ListEndpoint{Name: "roomtype.list", Path: "/api/roomtype/list/", Envelope: statusItems},
		Create:         "/api/roomtype/add/",
		Delete:         "/api/roomtype/delete/{id}/",
		StatusEnvelope: true,
	}
	StudentGroupResource = Resource{
		Name:           "studentgroup",
		List:           ListEndpoint{Name: "studentgroup.list", Path: "/api/studentgroup/list/", Envelope: statusItems},
		Create:         "/api/studentgroup/add/",
		Delete:         "/api/studentgroup/delete/{id}/",
		StatusEnvelope: true,
	}
	GroupTypeResource = Resource{
		Name:           "grouptype",
		List:           ListEndpoint{Name: "grouptype.list", Path: "/api/grouptype/list/", Envelope: statusItems},
		Create:         "/api/grouptype/add/",
		Delete:         "/api/grouptype/delete/{id}/",
		StatusEnvelope: true,
	}
	TimeSlotResource = Resource{
		Name:           "timeslot",
		List:           ListEndpoint{Name: "timeslot.list", Path: "/api/timeslot/list/", Envelope: statusItems},
		Create:         "/api/timeslot/add/",
		Delete:         "/api/timeslot/delete/{id}/",
		StatusEnvelope: true,
	}
	GroupAllowResource = Resource{
		Name:           "groupallow",
		List:           ListEndpoint{Name: "groupallow.list", Path: "/api/groupallow/list/", Envelope: statusItems},
		Create:         "/api/groupallow/add/",
		Delete:         "/api/groupallow/delete/{id}/",
		StatusEnvelope: true,
	}
	SubjectResource = Resource{
		Name:   "subject",
		List:   ListEndpoint{Name: "subject.list", Path: "/api/subjects/", Envelope: bareOrResults},
		Create: "/api/subjects/",
		Update: "/api/subjects/{id}/",
		Delete: "/api/subjects/{id}/",
	}
	CourseResource = Resource{
		Name:           "course",
		List:           ListEndpoint{Name: "course.list", Path: "/api/teacher/", Envelope: Envelope{Keys: []string{"teachers"}, RequireStatus: true}},
		Create:         "/api/course/add/",
		Update:         "/api/course/update/{id}/",
		Delete:         "/api/course/delete/{id}/",
		StatusEnvelope: true,
	}
	PreScheduleResource = Resource{
		Name:           "pre",
		List:           ListEndpoint{Name: "pre.list", Path: "/api/pre/", Envelope: Envelope{Keys: []string{"pre_schedules"}, RequireStatus: true}},
		Create:         "/api/pre/add/",
		Update:         "/api/pre/update/{id}/",
		Delete:         "/api/pre/delete/{id}/",
		StatusEnvelope: true,
	}
	ActivityResource = Resource{
		Name:           "activity",
		List:           ListEndpoint{Name: "activity.list", Path: "/api/activities/", Envelope: Envelope{Keys: []string{"activities"}, RequireStatus: true}},
		Create:         "/api/activity/add/",
		Update:         "/api/activity/update/{id}/",
		Delete:         "/api/activity/delete/{id}/",
		StatusEnvelope: true,
	}
)

// Schedule endpoints.
var (
	ScheduleView = ListEndpoint{
		Name:     "schedule.view",
		Path:     "/api/schedule/view/",
		Envelope: Envelope{Keys: []string{"schedules"}, RequireStatus: true},
	}
	ScheduleGeneratePath = "/api/schedule/generate/"
)
