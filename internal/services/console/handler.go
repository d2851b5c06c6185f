package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	apperrors "github.com/louisbranch/lolworlds/internal/platform/errors"
	"github.com/louisbranch/lolworlds/internal/platform/timeouts"
	"github.com/louisbranch/lolworlds/internal/services/stats/chart"
	"github.com/louisbranch/lolworlds/internal/services/stats/report"
	"github.com/louisbranch/lolworlds/internal/services/stats/storage"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "lolworlds_session"

// StatementRunner executes one role-checked data modification statement.
type StatementRunner interface {
	ExecStatement(ctx context.Context, statement string) (int64, error)
}

// Dependencies wires the console handler.
type Dependencies struct {
	Auth       *Authenticator
	Store      storage.ReadStore
	Statements StatementRunner
	// SecureCookies marks the session cookie Secure; set it behind TLS.
	SecureCookies bool
}

type handler struct {
	auth          *Authenticator
	store         storage.ReadStore
	reports       *report.Runner
	statements    StatementRunner
	secureCookies bool
}

// NewHandler builds the console HTTP handler.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.Auth == nil {
		return nil, errors.New("authenticator is required")
	}
	if deps.Store == nil {
		return nil, errors.New("read store is required")
	}
	if deps.Statements == nil {
		return nil, errors.New("statement runner is required")
	}
	h := &handler{
		auth:          deps.Auth,
		store:         deps.Store,
		reports:       report.NewRunner(deps.Store),
		statements:    deps.Statements,
		secureCookies: deps.SecureCookies,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /login", h.handleLoginForm)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /{$}", h.withSession(func(w http.ResponseWriter, r *http.Request, _ Session) {
		http.Redirect(w, r, "/queries", http.StatusSeeOther)
	}))
	mux.HandleFunc("GET /queries", h.withSession(h.handleQueries))
	mux.HandleFunc("GET /queries/{id}", h.withSession(h.handleQueries))
	mux.HandleFunc("GET /graphs", h.withSession(h.handleGraphs))
	mux.HandleFunc("GET /graphs/champion-avg-kills.svg", h.withSession(h.handleChartSVG))
	mux.HandleFunc("GET /players", h.withSession(h.handlePlayerStats))
	mux.HandleFunc("GET /modify", h.withSession(h.handleModifyForm))
	mux.HandleFunc("POST /modify", h.withSession(h.handleModify))
	return mux, nil
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, session Session)

func (h *handler) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			h.redirectToLogin(w, r)
			return
		}
		session, err := h.auth.Verify(cookie.Value)
		if err != nil {
			h.clearSessionCookie(w)
			h.redirectToLogin(w, r)
			return
		}
		next(w, r, session)
	}
}

func (h *handler) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, layout(layoutView{Title: "Login", Content: loginPage(loginView{Role: RoleRegular})}), "Login")
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, r, loginView{}, apperrors.Wrap(apperrors.CodeLoginInvalid, "Invalid login form.", err))
		return
	}
	view := loginView{Username: r.PostForm.Get("username"), Role: Role(r.PostForm.Get("role"))}
	session, err := h.auth.Login(view.Username, r.PostForm.Get("password"), r.PostForm.Get("role"))
	if err != nil {
		h.renderLoginError(w, r, view, err)
		return
	}
	token, err := h.auth.Sign(session)
	if err != nil {
		log.Printf("sign session: %v", err)
		h.renderLoginError(w, r, view, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	log.Printf("login %s as %s", session.Username, session.Role)
	http.Redirect(w, r, "/queries", http.StatusSeeOther)
}

func (h *handler) renderLoginError(w http.ResponseWriter, r *http.Request, view loginView, err error) {
	view.Error = errorMessage(err)
	renderPage(w, r, statusOf(err), layout(layoutView{Title: "Login", Content: loginPage(view)}), "Login")
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *handler) handleQueries(w http.ResponseWriter, r *http.Request, session Session) {
	view := queriesView{Reports: report.Catalog(), Selected: r.PathValue("id")}
	status := http.StatusOK
	if view.Selected != "" {
		table, err := h.reports.Run(r.Context(), view.Selected)
		if err != nil {
			status = statusOf(err)
			view.Error = errorMessage(err)
		} else {
			view.Table = &table
		}
	}
	h.render(w, r, status, session, tabQueries, "Queries", queriesPage(view))
}

func (h *handler) handleGraphs(w http.ResponseWriter, r *http.Request, session Session) {
	view := graphsView{}
	status := http.StatusOK
	averages, err := h.reports.ChampionAverages(r.Context(), report.DefaultChartLimit)
	if err != nil {
		status = statusOf(err)
		view.Error = errorMessage(err)
	} else {
		view.Chart = chart.ChampionAvgKills(averages)
	}
	h.render(w, r, status, session, tabGraphs, "Graphs", graphsPage(view))
}

func (h *handler) handleChartSVG(w http.ResponseWriter, r *http.Request, _ Session) {
	averages, err := h.reports.ChampionAverages(r.Context(), report.DefaultChartLimit)
	if err != nil {
		http.Error(w, errorMessage(err), statusOf(err))
		return
	}
	renderComponent(r.Context(), w, "image/svg+xml", chart.ChampionAvgKills(averages))
}

func (h *handler) handlePlayerStats(w http.ResponseWriter, r *http.Request, session Session) {
	query := r.URL.Query()
	view := playerStatsView{Filter: strings.TrimSpace(query.Get("filter"))}
	status := http.StatusOK
	if raw := strings.TrimSpace(query.Get("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 0 {
			view.Error = fmt.Sprintf("Invalid page size %q.", raw)
			h.render(w, r, http.StatusBadRequest, session, tabPlayerStats, "Player stats", playerStatsPage(view))
			return
		}
		view.PageSize = size
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Query)
	defer cancel()
	page, err := h.store.ListPlayerStats(ctx, storage.PlayerStatQuery{
		Filter:    view.Filter,
		PageSize:  view.PageSize,
		PageToken: query.Get("page_token"),
	})
	if err != nil {
		status = statusOf(err)
		view.Error = errorMessage(err)
	} else {
		view.Page = page
	}
	h.render(w, r, status, session, tabPlayerStats, "Player stats", playerStatsPage(view))
}

func (h *handler) handleModifyForm(w http.ResponseWriter, r *http.Request, session Session) {
	h.render(w, r, http.StatusOK, session, tabModify, "Modify", modifyPage(modifyView{Role: session.Role}))
}

func (h *handler) handleModify(w http.ResponseWriter, r *http.Request, session Session) {
	view := modifyView{Role: session.Role}
	if err := r.ParseForm(); err != nil {
		view.Error = "Invalid form."
		h.render(w, r, http.StatusBadRequest, session, tabModify, "Modify", modifyPage(view))
		return
	}
	view.Statement = r.PostForm.Get("statement")
	stmt, err := PrepareStatement(session.Role, view.Statement)
	if err != nil {
		view.Error = errorMessage(err)
		h.render(w, r, statusOf(err), session, tabModify, "Modify", modifyPage(view))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Query)
	defer cancel()
	affected, err := h.statements.ExecStatement(ctx, stmt.SQL)
	if err != nil {
		log.Printf("%s %s statement failed: %v", session.Username, stmt.Verb, err)
		view.Error = "Error executing statement: " + errorMessage(err)
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			// Rejected SQL is the common case here.
			status = http.StatusBadRequest
		}
		h.render(w, r, status, session, tabModify, "Modify", modifyPage(view))
		return
	}
	log.Printf("%s ran %s statement, %d row(s) affected", session.Username, stmt.Verb, affected)
	view.Affected = &affected
	h.render(w, r, http.StatusOK, session, tabModify, "Modify", modifyPage(view))
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, session Session, active tab, title string, content templ.Component) {
	renderPage(w, r, status, layout(layoutView{
		Title:   title,
		Session: &session,
		Active:  active,
		Content: content,
	}), title)
}

// statusOf maps domain and storage errors to HTTP statuses.
func statusOf(err error) int {
	return codeOf(err).HTTPStatus()
}

// codeOf classifies err, translating storage sentinels into domain codes.
func codeOf(err error) apperrors.Code {
	switch {
	case errors.Is(err, storage.ErrForeignKey):
		return apperrors.CodeForeignKeyViolated
	case errors.Is(err, storage.ErrConstraint):
		return apperrors.CodeConstraintViolated
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.CodeNotFound
	}
	return apperrors.CodeOf(err)
}

func errorMessage(err error) string {
	if apperrors.CodeOf(err) != apperrors.CodeUnknown {
		return apperrors.MessageOf(err)
	}
	return err.Error()
}
