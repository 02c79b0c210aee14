package backendapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"schedule_web/backend/internal/entity"
)

// Lookup is a list endpoint feeding a select input, with the item keys that
// hold the option value and label (first present key wins).
type Lookup struct {
	Endpoint ListEndpoint
	Value    []string
	Label    []string
	// Query derives request parameters from the current form; ok=false
	// means the lookup cannot run yet and yields no options.
	Query func(form entity.Values) (q url.Values, ok bool)
}

var (
	idName    = Lookup{Value: []string{"value", "id"}, Label: []string{"label", "name"}}
	valueText = Lookup{Value: []string{"value"}, Label: []string{"text", "label"}}
)

func lookup(base Lookup, name, path string, env Envelope) Lookup {
	base.Endpoint = ListEndpoint{Name: "lookup." + name, Path: path, Envelope: env}
	return base
}

// Lookups maps lookup names used by entity schemas to backend endpoints.
var Lookups = map[string]Lookup{
	"teachers":         lookup(idName, "teachers", "/api/teachers/", bareOrResults),
	"teacher-names":    lookup(Lookup{Value: []string{"name", "label"}, Label: []string{"name", "label"}}, "teacher-names", "/api/teachers/", bareOrResults),
	"subject-codes":    lookup(Lookup{Value: []string{"code"}, Label: []string{"code"}}, "subject-codes", "/api/subjects/", bareOrResults),
	"subject-names":    lookup(Lookup{Value: []string{"name"}, Label: []string{"name"}}, "subject-names", "/api/subjects/", bareOrResults),
	"room-names":       lookup(Lookup{Value: []string{"name", "id", "value"}, Label: []string{"name", "label"}}, "room-names", "/api/room/list/", statusItems),
	"room-types":       lookup(idName, "room-types", "/api/lookups/room-types/", bareOrResults),
	"student-groups":   lookup(idName, "student-groups", "/api/lookups/student-groups/", bareOrResults),
	"group-types":      lookup(Lookup{Value: []string{"id"}, Label: []string{"type", "name"}}, "group-types", "/api/grouptype/list/", statusItems),
	"subject-types":    lookup(idName, "subject-types", "/api/lookups/subject-types/", bareOrResults),
	"department-types": lookup(idName, "department-types", "/api/lookups/department-types/", bareOrResults),
	"curriculum-types": lookup(idName, "curriculum-types", "/api/lookups/curriculum-types/", bareOrResults),
	"days": lookup(valueText, "days", "/api/meta/days/",
		Envelope{Keys: []string{"days", "results", "items"}, AllowBare: true}),
	"start-times": func() Lookup {
		l := lookup(valueText, "start-times", "/api/meta/start-times/",
			Envelope{Keys: []string{"start_times", "results", "items"}, AllowBare: true})
		l.Query = func(form entity.Values) (url.Values, bool) {
			day := form["day"]
			if day == "" {
				return nil, false
			}
			return url.Values{"day": {day}}, true
		}
		return l
	}(),
	"stop-times": func() Lookup {
		l := lookup(valueText, "stop-times", "/api/meta/stop-times/",
			Envelope{Keys: []string{"stop_times", "results", "items"}, AllowBare: true})
		l.Query = func(form entity.Values) (url.Values, bool) {
			day, start := form["day"], form["start"]
			if day == "" || start == "" {
				return nil, false
			}
			return url.Values{"day": {day}, "start": {start}}, true
		}
		return l
	}(),
}

// Options resolves a lookup into select options, going through the lookup
// cache when one is configured.
func (c *Client) Options(ctx context.Context, name string, form entity.Values) ([]entity.Option, error) {
	l, ok := Lookups[name]
	if !ok {
		return nil, fmt.Errorf("unknown lookup %q", name)
	}
	var query url.Values
	if l.Query != nil {
		q, ready := l.Query(form)
		if !ready {
			return nil, nil
		}
		query = q
	}

	key := name + "?" + query.Encode()
	if opts, hit := c.cache.Get(ctx, key); hit {
		return opts, nil
	}

	var items []json.RawMessage
	if err := c.List(ctx, l.Endpoint, query, &items); err != nil {
		return nil, err
	}
	opts := make([]entity.Option, 0, len(items))
	for _, raw := range items {
		if opt, ok := l.option(raw); ok {
			opts = append(opts, opt)
		}
	}
	c.cache.Set(ctx, key, opts)
	return opts, nil
}

// option maps one lookup item; plain scalars are both value and label.
func (l Lookup) option(raw json.RawMessage) (entity.Option, bool) {
	if s, ok := scalar(raw); ok {
		return entity.Option{Value: s, Label: s}, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return entity.Option{}, false
	}
	value := firstScalar(obj, l.Value)
	label := firstScalar(obj, l.Label)
	if label == "" {
		label = value
	}
	return entity.Option{Value: value, Label: label}, true
}

func firstScalar(obj map[string]json.RawMessage, keys []string) string {
	for _, k := range keys {
		if raw, ok := obj[k]; ok {
			if s, ok := scalar(raw); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// scalar renders a JSON string or number as text.
func scalar(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10), true
		}
		return strings.TrimSpace(n.String()), true
	}
	return "", false
}
