package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/gateway/session"
	"schedule_web/backend/internal/gateway/util"
	"schedule_web/backend/internal/timetable"
)

const generateTimeout = 55 * time.Second

const (
	msgGenerated      = "สร้างตารางสอนสำเร็จแล้ว!"
	msgGenerateFailed = "เกิดข้อผิดพลาด: "
)

// Generator asks the backend to build a new schedule.
type Generator interface {
	GenerateSchedule(ctx context.Context) error
}

// TimetableHandler drives the session's timetable viewer.
type TimetableHandler struct {
	// Generator is nil when running without the backend.
	Generator Generator
	Templates *Templates
}

// -- Helpers --

func sessionFrom(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusInternalServerError, "Session unavailable")
	}
	return sess, ok
}

// viewURL links back to the table screen in its current state.
func viewURL(v *timetable.Viewer) string {
	q := url.Values{}
	q.Set("item", v.Item())
	if v.Search() != "" {
		q.Set("q", v.Search())
	}
	q.Set("mode", string(v.Mode()))
	return "/timetable/view?" + q.Encode()
}

// applyView moves the viewer onto the table screen described by the query.
// Choosing a different item resets search and mode before q and mode apply.
// It reports false when no item is chosen.
func applyView(ctx context.Context, v *timetable.Viewer, query url.Values) bool {
	if !v.Loaded() {
		v.Open(ctx, v.Category())
	}

	item := query.Get("item")
	if item == "" {
		item = v.Item()
	}
	if item == "" {
		return false
	}
	if item != v.Item() || v.Screen() != timetable.ScreenTable {
		v.SelectItem(item)
	}
	if query.Has("q") {
		v.SetSearch(query.Get("q"))
	}
	if m := query.Get("mode"); m != "" {
		v.SetMode(timetable.Mode(m))
	}
	return true
}

// -- Handlers --

// ShowSelection handles GET /timetable
func (h *TimetableHandler) ShowSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	category := sess.Viewer.Category()
	if c := r.URL.Query().Get("category"); c != "" {
		category = timetable.ParseCategory(c)
	}
	sess.Viewer.Open(ctx, category)
	view := sess.Viewer.Selection()
	notice := sess.TakeFlash()
	sess.Unlock()

	h.Templates.Render(w, http.StatusOK, "selection.html", Page{
		Title:  "ตารางสอน",
		Menu:   Menu("timetable"),
		Notice: notice,
		Body:   view,
	})
}

// ShowTable handles GET /timetable/view
func (h *TimetableHandler) ShowTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	if !applyView(ctx, sess.Viewer, r.URL.Query()) {
		sess.Unlock()
		http.Redirect(w, r, "/timetable", http.StatusSeeOther)
		return
	}
	view := sess.Viewer.Table()
	sess.Unlock()

	h.Templates.Render(w, http.StatusOK, "table.html", Page{
		Title: view.Title,
		Menu:  Menu("timetable"),
		Body:  view,
	})
}

// Back handles POST /timetable/back
func (h *TimetableHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	sess.Lock()
	sess.Viewer.Back()
	category := sess.Viewer.Category()
	sess.Unlock()

	http.Redirect(w, r, "/timetable?category="+url.QueryEscape(string(category)), http.StatusSeeOther)
}

// Toggle handles POST /timetable/toggle
func (h *TimetableHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	sess.Lock()
	if sess.Viewer.Item() == "" {
		sess.Unlock()
		http.Redirect(w, r, "/timetable", http.StatusSeeOther)
		return
	}
	sess.Viewer.ToggleMode()
	target := viewURL(sess.Viewer)
	sess.Unlock()

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Generate handles POST /timetable/generate. On success the viewer is
// replaced so the next open fetches the new schedule.
func (h *TimetableHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if h.Generator == nil {
		util.WriteJSONError(w, http.StatusServiceUnavailable, "Backend Unavailable: schedule generation needs the scheduling backend.")
		return
	}

	requestedBy := util.AdminSubject(r.Context())
	if requestedBy != "" {
		log.Printf("INFO: schedule generation requested by %s", requestedBy)
	}

	// 1. Run the generator outside the session lock; it can take a while
	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()
	err := h.Generator.GenerateSchedule(ctx)

	// 2. Record the outcome on the session
	sess.Lock()
	if err != nil {
		log.Printf("WARN: schedule generation failed: %v", err)
		message := err.Error()
		var apiErr *backendapi.APIError
		if errors.As(err, &apiErr) {
			message = apiErr.Message
		}
		sess.Flash(entity.NoticeError, msgGenerateFailed+message)
	} else {
		sess.ResetViewer()
		sess.Flash(entity.NoticeSuccess, msgGenerated)
	}
	sess.Unlock()

	// 3. Respond
	if util.WantsJSON(r) {
		if err != nil {
			util.HandleBackendError(w, err)
			return
		}
		resp := map[string]interface{}{
			"success": true,
			"message": msgGenerated,
		}
		if requestedBy != "" {
			resp["requested_by"] = requestedBy
		}
		util.WriteJSON(w, http.StatusOK, resp)
		return
	}
	http.Redirect(w, r, "/timetable", http.StatusSeeOther)
}

// GetGrid handles GET /api/timetable/grid. Without an item it returns the
// selection screen instead.
func (h *TimetableHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	if !applyView(ctx, sess.Viewer, r.URL.Query()) {
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"screen":    timetable.ScreenSelection,
			"selection": sess.Viewer.Selection(),
		})
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"screen":  timetable.ScreenTable,
		"table":   sess.Viewer.Table(),
	})
}

// exportRows returns the chosen item and its filtered rows.
func exportRows(w http.ResponseWriter, r *http.Request) (string, []timetable.Entry, bool) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return "", nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	if !applyView(ctx, sess.Viewer, r.URL.Query()) {
		util.WriteJSONError(w, http.StatusNotFound, "No timetable item selected")
		return "", nil, false
	}
	return sess.Viewer.Item(), sess.Viewer.Filtered(), true
}

func attachment(w http.ResponseWriter, item, ext, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		`attachment; filename="timetable.`+ext+`"; filename*=UTF-8''`+url.PathEscape("timetable_"+item+"."+ext))
}

// ExportCSV handles GET /timetable/export.csv
func (h *TimetableHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	item, rows, ok := exportRows(w, r)
	if !ok {
		return
	}
	attachment(w, item, "csv", "text/csv; charset=utf-8")
	if err := timetable.WriteCSV(w, rows); err != nil {
		log.Printf("ERROR: writing CSV export: %v", err)
	}
}

// ExportXLSX handles GET /timetable/export.xlsx
func (h *TimetableHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	item, rows, ok := exportRows(w, r)
	if !ok {
		return
	}
	attachment(w, item, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := timetable.WriteXLSX(w, "ตารางสอน - "+item, timetable.BuildGrid(rows)); err != nil {
		log.Printf("ERROR: writing XLSX export: %v", err)
	}
}
