package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sureka400/Ecolens-AI/internal/adapter/ecolens"
	"github.com/Sureka400/Ecolens-AI/internal/dashboard"
	"github.com/Sureka400/Ecolens-AI/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
)

const sessionCookie = "ecolens_session"

// SessionExpiredNotice is shown when a form is posted without a live session.
const SessionExpiredNotice = "Your session expired. Please try again."

// existingSession returns the caller's dashboard without starting one.
func (s *Server) existingSession(r *http.Request) (*dashboard.Dashboard, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// actionSession returns the caller's dashboard for a form action. Without one
// the browser is sent back to the page, which starts a session.
func (s *Server) actionSession(w http.ResponseWriter, r *http.Request) (*dashboard.Dashboard, bool) {
	d, ok := s.existingSession(r)
	if !ok {
		redirect(w, r, dashboard.TabOverview, SessionExpiredNotice)
	}
	return d, ok
}

// session returns the caller's dashboard, starting a new session when the
// cookie is missing or refers to an evicted one. Only the page calls it.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *dashboard.Dashboard {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	d, created := s.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    d.ID(),
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		s.logger.Info("session started", "session", d.ID())
	}
	return d
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed", "template", name, "error", err)
	}
}

// redirect sends the browser back to tab, carrying an optional notice.
func redirect(w http.ResponseWriter, r *http.Request, tab dashboard.Tab, notice string) {
	q := url.Values{"tab": {string(tab)}}
	if notice != "" {
		q.Set("notice", notice)
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}

// notice turns an action error into a message for the page. Backend failures
// become fallback rather than an error response.
func notice(err error, fallback string) string {
	switch {
	case errors.Is(err, dashboard.ErrEmptyQuery),
		errors.Is(err, dashboard.ErrEmptyEmail),
		errors.Is(err, dashboard.ErrRateLimited),
		errors.Is(err, dashboard.ErrNoReport),
		errors.Is(err, dashboard.ErrAnalyzing),
		errors.Is(err, dashboard.ErrUnknownLayer):
		return err.Error()
	case errors.Is(err, domain.ErrInvalidCoordinates):
		return "Those coordinates are not valid."
	}
	var statusErr *ecolens.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return "Location not found."
	}
	return fallback
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	d := s.session(w, r)
	if tab, ok := dashboard.ParseTab(r.URL.Query().Get("tab")); ok {
		d.Shell().SetTab(tab)
	}
	s.render(w, "page", s.views.Page(d, r.URL.Query().Get("notice")))
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	d, ok := s.existingSession(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	name := chi.URLParam(r, "panel")
	data, ok := s.views.Panel(d, name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "panel-"+name, data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	d, ok := s.existingSession(r)
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no session"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, d.State())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	if _, err := d.Search(r.Context(), r.FormValue("q")); err != nil {
		redirect(w, r, dashboard.TabOverview, notice(err, "Could not look up that location. Please try again."))
		return
	}
	redirect(w, r, dashboard.TabOverview, "")
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	lat, latErr := strconv.ParseFloat(r.FormValue("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.FormValue("lon"), 64)
	if latErr != nil || lonErr != nil {
		redirect(w, r, dashboard.TabOverview, notice(domain.ErrInvalidCoordinates, ""))
		return
	}
	if _, err := d.Detect(r.Context(), lat, lon); err != nil {
		redirect(w, r, dashboard.TabOverview, notice(err, "Could not use your location."))
		return
	}
	redirect(w, r, dashboard.TabOverview, "")
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	id, err := strconv.Atoi(r.FormValue("id"))
	if err == nil {
		_, err = d.SelectRecent(id)
	}
	if err != nil {
		redirect(w, r, dashboard.TabOverview, notice(err, "That search is no longer available."))
		return
	}
	redirect(w, r, dashboard.TabOverview, "")
}

func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	if err := d.SetLayer(r.FormValue("layer")); err != nil {
		redirect(w, r, dashboard.TabMap, notice(err, ""))
		return
	}
	redirect(w, r, dashboard.TabMap, "")
}

func (s *Server) handleActionStep(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	switch chi.URLParam(r, "direction") {
	case "next":
		d.NextAction()
	case "prev":
		d.PrevAction()
	default:
		http.NotFound(w, r)
		return
	}
	redirect(w, r, dashboard.TabActions, "")
}

func (s *Server) handleActionGoTo(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	i, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	d.GoToAction(i)
	redirect(w, r, dashboard.TabActions, "")
}

func (s *Server) handleSimulationToggle(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	d.ToggleSimulation()
	redirect(w, r, dashboard.TabActions, "")
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	report, err := d.GenerateReport(r.Context())
	if err != nil {
		redirect(w, r, dashboard.TabOverview, notice(err, "Report generation failed. Please try again."))
		return
	}
	redirect(w, r, dashboard.TabOverview, fmt.Sprintf("Report #%d is ready to download.", report.ID))
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	id, loc, err := d.Report()
	if err != nil {
		redirect(w, r, dashboard.TabOverview, notice(err, ""))
		return
	}

	file, err := s.reports.DownloadReport(r.Context(), id, ecolens.ReportFilename(loc.Name, id))
	if err != nil {
		s.logger.Warn("report download failed", "session", d.ID(), "report_id", id, "error", err)
		redirect(w, r, dashboard.TabOverview, notice(err, "Report download failed. Please try again."))
		return
	}
	defer file.Body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if _, err := io.Copy(w, file.Body); err != nil {
		s.logger.Warn("report stream interrupted", "session", d.ID(), "report_id", id, "error", err)
		return
	}
	d.ReportDownloaded(id)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	d, ok := s.actionSession(w, r)
	if !ok {
		return
	}
	if err := d.Join(r.Context(), r.FormValue("email")); err != nil {
		redirect(w, r, d.Shell().Tab(), notice(err, "Signup failed. Please try again."))
		return
	}
	redirect(w, r, d.Shell().Tab(), "")
}
