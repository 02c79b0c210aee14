package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"schedule_web/backend/internal/admin"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/gateway/session"
	"schedule_web/backend/internal/gateway/util"
)

const actionTimeout = 30 * time.Second

// AdminHandler drives the session's entity controllers.
type AdminHandler struct {
	// Options resolves select lookups; nil when running without the backend.
	Options   entity.OptionSource
	Templates *Templates
}

// -- Helpers --

// sessionPage resolves the caller's session and the controller named in the
// route. On failure the response has already been written.
func sessionPage(w http.ResponseWriter, r *http.Request) (*session.Session, entity.Page, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		util.WriteJSONError(w, http.StatusInternalServerError, "Session unavailable")
		return nil, nil, false
	}
	name := chi.URLParam(r, "entity")
	page, ok := sess.Pages[name]
	if !ok {
		util.WriteJSONError(w, http.StatusNotFound, "Unknown entity: "+name)
		return nil, nil, false
	}
	return sess, page, true
}

// readForm collects the submitted inputs from a JSON object or a form post.
func readForm(r *http.Request) (entity.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, err
		}
		values := make(entity.Values, len(raw))
		for k, v := range raw {
			switch x := v.(type) {
			case nil:
				values[k] = ""
			case string:
				values[k] = x
			default:
				b, _ := json.Marshal(x)
				values[k] = string(b)
			}
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(entity.Values, len(r.PostForm))
	for k := range r.PostForm {
		values[k] = r.PostForm.Get(k)
	}
	return values, nil
}

func rowIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

// ensureLoaded runs the first list load for a page. A failed load is kept
// as the page notice.
func ensureLoaded(ctx context.Context, page entity.Page) {
	if !page.Loaded() {
		_ = page.Init(ctx)
	}
}

// respond finishes a mutating action: JSON callers get the view model or the
// mapped error, browsers are redirected back to the page.
func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, page entity.Page, err error) {
	if util.WantsJSON(r) {
		if err != nil {
			util.HandleBackendError(w, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, page.Render())
		return
	}
	if errors.Is(err, entity.ErrIndexOutOfRange) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/admin/"+page.Name(), http.StatusSeeOther)
}

// -- Handlers --

// Index handles GET /admin by opening the first page.
func (h *AdminHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/"+admin.Entries[0].Name, http.StatusSeeOther)
}

// ShowPage handles GET /admin/{entity}
func (h *AdminHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	ensureLoaded(ctx, page)
	page.LoadOptions(ctx, h.Options)
	view := page.Render()
	sess.Unlock()

	h.Templates.Render(w, http.StatusOK, "admin.html", Page{
		Title:  view.Title,
		Menu:   Menu(view.Name),
		Notice: view.Notice,
		Body:   view,
	})
}

// GetView handles GET /api/admin/{entity}
func (h *AdminHandler) GetView(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	ensureLoaded(ctx, page)
	page.LoadOptions(ctx, h.Options)
	view := page.Render()
	sess.Unlock()

	util.WriteJSON(w, http.StatusOK, view)
}

// Submit handles POST /admin/{entity}/submit
func (h *AdminHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	values, err := readForm(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	ensureLoaded(ctx, page)
	page.SetForm(values)
	err = page.Submit(ctx)
	h.respond(w, r, page, err)
}

// UpdateForm handles POST /admin/{entity}/form. It keeps the inputs without
// submitting so dependent selects reload against them.
func (h *AdminHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	values, err := readForm(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	page.SetForm(values)
	page.LoadOptions(ctx, h.Options)
	h.respond(w, r, page, nil)
}

// Edit handles POST /admin/{entity}/edit/{index}
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}
	i, err := rowIndex(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid row index")
		return
	}

	sess.Lock()
	defer sess.Unlock()
	h.respond(w, r, page, page.Edit(i))
}

// Cancel handles POST /admin/{entity}/cancel
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	sess.Lock()
	defer sess.Unlock()
	page.Cancel()
	h.respond(w, r, page, nil)
}

// Remove handles POST /admin/{entity}/remove/{index}
func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}
	i, err := rowIndex(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid row index")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	ensureLoaded(ctx, page)
	h.respond(w, r, page, page.Remove(ctx, i))
}

// Refresh handles POST /admin/{entity}/refresh
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, page, ok := sessionPage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	defer cancel()

	sess.Lock()
	defer sess.Unlock()
	if !page.Loaded() {
		h.respond(w, r, page, page.Init(ctx))
		return
	}
	h.respond(w, r, page, page.Refresh(ctx))
}
