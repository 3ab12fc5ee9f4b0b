// Package web serves the server-rendered profile pages.
package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/profile-playground/internal/platform/logging"
	appmiddleware "github.com/janisto/profile-playground/internal/platform/middleware"
	"github.com/janisto/profile-playground/internal/platform/respond"
	"github.com/janisto/profile-playground/internal/platform/validate"
	"github.com/janisto/profile-playground/internal/profile"
	"github.com/janisto/profile-playground/internal/service/profilesync"
	"github.com/janisto/profile-playground/internal/store"
)

// Page paths.
const (
	PathRoot     = "/"
	PathForm     = "/profile-form"
	PathProfile  = "/profile"
	PathDelete   = "/profile/delete"
	PathNotFound = "/404"
)

// Handler renders the pages over one Syncer.
type Handler struct {
	syncer *profilesync.Syncer
}

// New returns a page Handler.
func New(s *profilesync.Syncer) *Handler {
	return &Handler{syncer: s}
}

// Register mounts the pages and their static assets on r. Pages get a
// Content-Security-Policy that admits the same-origin stylesheet and script.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Security(appmiddleware.PageContentSecurityPolicy))
		r.Get(PathRoot, h.root)
		r.Get(PathForm, h.showForm)
		r.Post(PathForm, h.submitForm)
		r.Get(PathProfile, h.showProfile)
		r.Post(PathProfile, h.updateProfile)
		r.Get(PathDelete, h.confirmDelete)
		r.Post(PathDelete, h.deleteProfile)
		r.Get(PathNotFound, h.notFound)
		r.Handle("/static/*", staticHandler())
	})
}

// NotFound redirects unmatched paths to the not-found page. Paths under an apiPrefixes
// entry get a problem details 404 instead.
func NotFound(apiPrefixes ...string) http.HandlerFunc {
	problem := respond.NotFoundHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		for _, p := range apiPrefixes {
			if r.URL.Path == strings.TrimSuffix(p, "/") || strings.HasPrefix(r.URL.Path, p) {
				problem(w, r)
				return
			}
		}
		respond.WriteRedirect(w, r, PathNotFound, http.StatusFound)
	}
}

// formView feeds the "fields" template.
type formView struct {
	Action    string
	Name      string
	Email     string
	Age       string
	Errors    map[string]string
	CanSubmit bool
	CancelURL string
}

func newFormView(action string, in profile.Input, errs map[string]string) *formView {
	return &formView{
		Action:    action,
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.AgeText(),
		Errors:    errs,
		CanSubmit: profile.CanSubmit(in),
	}
}

type pageView struct {
	Title       string
	CurrentUser string
	Notices     []store.Notice
	Profile     *profile.Profile
	Error       string
	Form        *formView
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	respond.WriteRedirect(w, r, PathForm, http.StatusFound)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "form.html", pageView{
		Title: "Profile Form",
		Form:  newFormView(PathForm, profile.Input{}, nil),
	})
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	in, ok := parseInput(w, r)
	if !ok {
		return
	}

	outcome, err := h.syncer.Submit(r.Context(), in)
	var ve *validate.ValidationError
	switch {
	case errors.As(err, &ve):
		h.render(w, r, http.StatusUnprocessableEntity, "form.html", pageView{
			Title: "Profile Form",
			Form:  newFormView(PathForm, in, profile.FieldErrors(err)),
		})
	case err != nil:
		h.render(w, r, http.StatusBadGateway, "form.html", pageView{
			Title: "Profile Form",
			Form:  newFormView(PathForm, in, nil),
		})
	default:
		applog.LogInfo(r.Context(), "profile form submitted", zap.Stringer("outcome", outcome))
		respond.WriteRedirect(w, r, PathProfile, http.StatusSeeOther)
	}
}

func (h *Handler) showProfile(w http.ResponseWriter, r *http.Request) {
	_ = h.syncer.Load(r.Context())
	snap := h.syncer.Store().Snapshot()

	view := pageView{Title: "Profile", Profile: snap.Profile, Error: snap.Error}
	status := http.StatusOK
	switch {
	case snap.Error != "":
		status = http.StatusBadGateway
	case snap.Profile != nil && r.URL.Query().Get("edit") != "":
		view.Form = newFormView(PathProfile, snap.Profile.Input(), nil)
		view.Form.CancelURL = PathProfile
	}
	h.render(w, r, status, "profile.html", view)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	in, ok := parseInput(w, r)
	if !ok {
		return
	}

	_, err := h.syncer.Update(r.Context(), in)
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		form := newFormView(PathProfile, in, profile.FieldErrors(err))
		form.CancelURL = PathProfile
		h.render(w, r, http.StatusUnprocessableEntity, "profile.html", pageView{
			Title:   "Profile",
			Profile: h.syncer.Store().Profile(),
			Form:    form,
		})
		return
	}
	respond.WriteRedirect(w, r, PathProfile, http.StatusSeeOther)
}

func (h *Handler) confirmDelete(w http.ResponseWriter, r *http.Request) {
	_ = h.syncer.Load(r.Context())
	p := h.syncer.Store().Profile()
	if p == nil {
		respond.WriteRedirect(w, r, PathProfile, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "confirm.html", pageView{Title: "Delete Profile", Profile: p})
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	confirmed := r.PostFormValue("confirm") == "yes"

	deleted, _ := h.syncer.Delete(r.Context(), confirmed)
	if deleted {
		respond.WriteRedirect(w, r, PathRoot, http.StatusSeeOther)
		return
	}
	respond.WriteRedirect(w, r, PathProfile, http.StatusSeeOther)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound.html", pageView{Title: "Page Not Found"})
}

func parseInput(w http.ResponseWriter, r *http.Request) (profile.Input, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return profile.Input{}, false
	}
	return profile.NewInput(r.PostFormValue("name"), r.PostFormValue("email"), r.PostFormValue("age")), true
}

// render executes a page into a buffer so a template failure still yields a clean 500.
// It consumes the queued notices and fills the nav bar.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, view pageView) {
	view.CurrentUser = h.currentUser(r.Context())
	view.Notices = h.syncer.Store().TakeNotices()

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		applog.LogError(r.Context(), "render page failed", err, zap.String("template", name))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) currentUser(ctx context.Context) string {
	name, _ := h.syncer.CurrentUser(ctx)
	return name
}
