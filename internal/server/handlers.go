package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/theirongolddev/echolon/internal/config"
	"github.com/theirongolddev/echolon/internal/model"
	"github.com/theirongolddev/echolon/internal/pipeline"
	"github.com/theirongolddev/echolon/internal/report"
	"github.com/theirongolddev/echolon/internal/session"
	"github.com/theirongolddev/echolon/internal/source"
	"github.com/theirongolddev/echolon/internal/vault"
)

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/upload", s.handleUpload)
			r.Post("/import", s.handleImport)
			r.Get("/summary", s.handleSummary)
			r.Get("/benchmark", s.handleBenchmark)
			r.Get("/periods", s.handlePeriods)
			r.Get("/insights", s.handleInsights)
			r.Get("/goals", s.handleGoals)
			r.Put("/goals", s.handlePutGoals)
			r.Get("/scenario", s.handleScenario)
			r.Get("/notes", s.handleNotes)
			r.Put("/notes", s.handlePutNotes)
			r.Get("/charts/{kind}.png", s.handleChart)
			r.Get("/report.pdf", s.handleReportPDF)
		})
	})
	return r
}

type ctxKey struct{}

// requireSession resolves {id} to a live session and stores it on the
// request context.
func (s *Service) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := uuid.Parse(id); err != nil {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
		st, err := s.sessions.Get(id)
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found or expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, st)))
	})
}

func sessionFrom(r *http.Request) *session.State {
	st, _ := r.Context().Value(ctxKey{}).(*session.State)
	return st
}

// sessionView is the table and settings a session request computes over.
type sessionView struct {
	table    *model.Table
	industry string
	bench    config.Benchmarks
	warnings []string
}

func (s *Service) view(st *session.State) sessionView {
	v := sessionView{table: st.Table, warnings: st.Warnings}
	if v.table == nil {
		base, w := s.baseTable()
		v.table = base
		v.warnings = append(append([]string(nil), w...), st.Warnings...)
	}
	v.industry = st.Industry
	if v.industry == "" {
		v.industry = s.cfg.Industry
	}
	v.bench = config.ResolveBenchmarks(s.cfg.Settings, v.industry, v.table.LastDate(), s.cfg.BenchmarkFile)
	return v
}

func (s *Service) buildReport(st *session.State, executive string) report.Report {
	v := s.view(st)
	return report.Build(v.table, report.Options{
		Industry:   v.industry,
		Benchmarks: v.bench,
		Scenario:   st.Scenario,
		Goals:      st.Goals,
		Pace:       s.cfg.Settings.Scenario.DailyPace,
		Executive:  executive,
		Warnings:   v.warnings,
	})
}

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresIn int       `json:"expires_in_sec"`
	Industry  string    `json:"industry,omitempty"`
	Uploaded  bool      `json:"uploaded"`
}

func (s *Service) sessionResponse(st *session.State) sessionResponse {
	return sessionResponse{
		ID:        st.ID,
		CreatedAt: st.CreatedAt,
		ExpiresIn: int(s.sessions.TTL().Seconds()),
		Industry:  st.Industry,
		Uploaded:  st.Table != nil,
	}
}

func (s *Service) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	goals := s.cfg.Settings.Goals.Targets()
	if s.cfg.Vault != nil {
		remote, err := s.cfg.Vault.Goals(r.Context())
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("vault goals unavailable")
		case len(remote) > 0:
			goals = remote
		}
	}

	st := s.sessions.Create(goals)
	if industry := r.URL.Query().Get("industry"); industry != "" {
		if updated, err := s.sessions.Update(st.ID, func(st *session.State) {
			st.Industry = config.NormalizeIndustry(industry)
		}); err == nil {
			st = updated
		}
	}
	writeJSON(w, http.StatusCreated, s.sessionResponse(st))
}

func (s *Service) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

type loadResponse struct {
	Session  sessionResponse `json:"session"`
	Source   string          `json:"source"`
	Demo     bool            `json:"demo"`
	Rows     int             `json:"rows"`
	Mapping  model.Mapping   `json:"mapping"`
	Unmapped []model.Field   `json:"unmapped,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// storeTable replaces the session table. A nil table clears the upload so
// the session falls back to the shared table.
func (s *Service) storeTable(w http.ResponseWriter, r *http.Request, t *model.Table, warnings []string) {
	st, err := s.sessions.Update(sessionFrom(r).ID, func(st *session.State) {
		st.Table = t
		st.Warnings = warnings
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	v := s.view(st)
	resp := loadResponse{
		Session:  s.sessionResponse(st),
		Source:   v.table.Source,
		Demo:     v.table.Demo,
		Rows:     v.table.Len(),
		Mapping:  v.table.Mapping,
		Unmapped: source.Unmapped(v.table.Mapping),
		Warnings: v.warnings,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("reading upload: %v", err))
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, `no "file" parts in upload`)
		return
	}

	var (
		tables      []*model.Table
		warnings    []string
		parseErrors int
	)
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", fh.Filename, err))
			continue
		}
		res := source.ParseCSV(f, fh.Filename)
		_ = f.Close()
		if res.Err != nil {
			warnings = append(warnings, res.Err.Error())
			continue
		}
		parseErrors += res.ParseErrors
		tables = append(tables, res.Table)
	}
	if parseErrors > 0 {
		warnings = append(warnings, fmt.Sprintf("%d cells could not be parsed and were skipped", parseErrors))
	}

	merged := pipeline.Merge(tables...)
	if !pipeline.Usable(merged) {
		warnings = append(warnings, "no usable metric columns found; showing demo data")
		merged = nil
	}

	s.log.Info().Str("session", sessionFrom(r).ID).Int("files", len(files)).Int("parsed", len(tables)).Msg("upload")
	s.storeTable(w, r, merged, warnings)
}

type importRequest struct {
	SheetURL string `json:"sheet_url"`
	APIURL   string `json:"api_url"`
	Industry string `json:"industry"`
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding request: %v", err))
		return
	}
	if req.SheetURL == "" && req.APIURL == "" {
		writeError(w, http.StatusBadRequest, "sheet_url or api_url is required")
		return
	}
	if exposedAddr(s.cfg.Addr) {
		for _, raw := range []string{req.SheetURL, req.APIURL} {
			if raw == "" {
				continue
			}
			if err := checkImportTarget(r.Context(), raw); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
	}

	res := pipeline.LoadOrDemo(r.Context(), pipeline.Options{
		SheetURL: req.SheetURL,
		APIURL:   req.APIURL,
		Seed:     s.cfg.Settings.General.Seed,
		Periods:  s.cfg.Settings.General.Periods,
		Fetcher:  s.cfg.Fetcher,
	})
	if req.Industry != "" {
		_, _ = s.sessions.Update(sessionFrom(r).ID, func(st *session.State) {
			st.Industry = config.NormalizeIndustry(req.Industry)
		})
	}

	t := res.Table
	if t != nil && t.Demo {
		t = nil
	}
	s.storeTable(w, r, t, res.Warnings)
}

// exposedAddr reports whether the listen address accepts connections from
// other hosts.
func exposedAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "localhost" {
		return false
	}
	ip := net.ParseIP(host)
	return ip == nil || !ip.IsLoopback()
}

// checkImportTarget refuses import URLs whose host resolves to a loopback,
// private, link-local or unspecified address.
func checkImportTarget(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("invalid import URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported import URL scheme %q", u.Scheme)
	}
	host := u.Hostname()
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", host, err)
	}
	for _, a := range addrs {
		if internalIP(a.IP) {
			return fmt.Errorf("import host %s resolves to non-public address %s", host, a.IP)
		}
	}
	return nil
}

func internalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}

type summaryResponse struct {
	Source    string            `json:"source"`
	Demo      bool              `json:"demo"`
	Industry  string            `json:"industry"`
	Summary   report.SummaryDoc `json:"summary"`
	Executive string            `json:"executive_summary"`
	Warnings  []string          `json:"warnings,omitempty"`
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	rep := s.buildReport(sessionFrom(r), "")
	writeJSON(w, http.StatusOK, summaryResponse{
		Source:    rep.Source,
		Demo:      rep.Demo,
		Industry:  rep.Industry,
		Summary:   rep.SummaryDoc(),
		Executive: rep.Executive,
		Warnings:  rep.Warnings,
	})
}

type benchmarkResponse struct {
	Industry    string                      `json:"industry"`
	Comparisons []model.BenchmarkComparison `json:"comparisons"`
	Outpaced    int                         `json:"outpaced"`
	Compared    int                         `json:"compared"`
}

func (s *Service) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	rep := s.buildReport(sessionFrom(r), "")
	writeJSON(w, http.StatusOK, benchmarkResponse{
		Industry:    rep.Industry,
		Comparisons: nonNil(rep.Benchmarks),
		Outpaced:    rep.Periods.Outpaced,
		Compared:    rep.Periods.Total,
	})
}

func (s *Service) handlePeriods(w http.ResponseWriter, r *http.Request) {
	rep := s.buildReport(sessionFrom(r), "")
	writeJSON(w, http.StatusOK, rep.PeriodDocs())
}

type insightsResponse struct {
	Executive string          `json:"executive_summary"`
	Insights  []model.Insight `json:"insights"`
	AI        bool            `json:"ai"`
	Warning   string          `json:"warning,omitempty"`
}

func (s *Service) handleInsights(w http.ResponseWriter, r *http.Request) {
	rep := s.buildReport(sessionFrom(r), "")
	resp := insightsResponse{Executive: rep.Executive, Insights: nonNil(rep.Insights)}

	if s.cfg.Summarizer != nil && r.URL.Query().Get("ai") != "0" {
		text, err := pipeline.SummaryOrFallback(r.Context(), s.cfg.Summarizer,
			rep.Summary, rep.Benchmarks, rep.Periods, rep.Insights)
		if err != nil {
			s.log.Warn().Err(err).Msg("ai summary failed")
			resp.Warning = "live summary unavailable; showing rule-based summary"
		} else {
			resp.AI = true
		}
		resp.Executive = text
	}
	writeJSON(w, http.StatusOK, resp)
}

type goalsResponse struct {
	Goals       []model.GoalProgress `json:"goals"`
	Suggestions []string             `json:"suggestions"`
	Warning     string               `json:"warning,omitempty"`
}

func (s *Service) handleGoals(w http.ResponseWriter, r *http.Request) {
	rep := s.buildReport(sessionFrom(r), "")
	writeJSON(w, http.StatusOK, goalsResponse{
		Goals:       nonNil(rep.Goals),
		Suggestions: nonNil(rep.Suggestions),
	})
}

func (s *Service) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var targets []model.GoalTarget
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&targets); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding goals: %v", err))
		return
	}
	for _, g := range targets {
		if g.Target <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("goal %q needs a positive target", g.Metric))
			return
		}
	}

	st, err := s.sessions.Update(sessionFrom(r).ID, func(st *session.State) {
		st.Goals = targets
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var warning string
	if s.cfg.Vault != nil {
		if err := s.cfg.Vault.PutGoals(r.Context(), targets); err != nil {
			s.log.Warn().Err(err).Msg("vault goals sync failed")
			warning = "goals kept for this session only; vault unavailable"
		}
	}

	rep := s.buildReport(st, "")
	writeJSON(w, http.StatusOK, goalsResponse{
		Goals:       nonNil(rep.Goals),
		Suggestions: nonNil(rep.Suggestions),
		Warning:     warning,
	})
}

// scenarioInput reads slider values from the query, falling back to the
// session's last scenario for missing parameters.
func scenarioInput(r *http.Request, prev model.ScenarioInput) (model.ScenarioInput, error) {
	in := prev
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"ad_spend", &in.AdSpendPct},
		{"price", &in.PricePct},
		{"churn", &in.ChurnDelta},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return in, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = v
	}
	return pipeline.Clamp(in), nil
}

type scenarioResponse struct {
	Result     model.ScenarioResult  `json:"result"`
	Projection []model.ScenarioPoint `json:"projection"`
}

func (s *Service) handleScenario(w http.ResponseWriter, r *http.Request) {
	in, err := scenarioInput(r, sessionFrom(r).Scenario)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.sessions.Update(sessionFrom(r).ID, func(st *session.State) {
		st.Scenario = in
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	rep := s.buildReport(st, "")
	writeJSON(w, http.StatusOK, scenarioResponse{
		Result:     rep.Scenario,
		Projection: nonNil(rep.Projection),
	})
}

type notesResponse struct {
	Text    string       `json:"text"`
	Vault   []model.Note `json:"vault,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

func (s *Service) handleNotes(w http.ResponseWriter, r *http.Request) {
	resp := notesResponse{Text: sessionFrom(r).Notes}
	if s.cfg.Vault != nil {
		notes, err := s.cfg.Vault.Notes(r.Context())
		if err != nil {
			s.log.Warn().Err(err).Msg("vault notes unavailable")
			resp.Warning = vaultWarning(err)
		}
		resp.Vault = notes
	}
	writeJSON(w, http.StatusOK, resp)
}

type notesRequest struct {
	Text   string `json:"text"`
	Urgent bool   `json:"urgent"`
	Due    string `json:"due"`
	Sync   bool   `json:"sync"`
}

func (s *Service) handlePutNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decoding notes: %v", err))
		return
	}

	st, err := s.sessions.Update(sessionFrom(r).ID, func(st *session.State) {
		st.Notes = req.Text
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := notesResponse{Text: st.Notes}
	if req.Sync && strings.TrimSpace(req.Text) != "" {
		if s.cfg.Vault == nil {
			resp.Warning = "vault not configured; notes kept for this session only"
		} else {
			_, err := s.cfg.Vault.PostNote(r.Context(), model.Note{Text: req.Text, Urgent: req.Urgent, Due: req.Due})
			if err != nil {
				s.log.Warn().Err(err).Msg("vault note sync failed")
				resp.Warning = vaultWarning(err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func vaultWarning(err error) string {
	if errors.Is(err, vault.ErrUnauthorized) {
		return "vault rejected the credentials; notes kept for this session only"
	}
	return "vault unavailable; notes kept for this session only"
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	known := false
	for _, k := range report.ChartKinds {
		if k == kind {
			known = true
			break
		}
	}
	if !known {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown chart %q", kind))
		return
	}

	png, err := report.Chart(s.buildReport(sessionFrom(r), ""), kind)
	if errors.Is(err, report.ErrNoChartData) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Service) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.WritePDF(&buf, s.buildReport(sessionFrom(r), "")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="echolon-report.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// writeJSON encodes v before writing the status so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error": "encoding response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
