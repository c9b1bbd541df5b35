package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/stockdesk/stockdesk/internal/shared"
	"github.com/stockdesk/stockdesk/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
	loginLimit     int
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
		loginLimit:     10,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.With(httprate.LimitByIP(h.loginLimit, time.Minute)).Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.With(httprate.LimitByIP(h.loginLimit, time.Minute)).Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type credentialsForm struct {
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=6,max=100"`
}

type authPageData struct {
	Form   credentialsForm
	Errors map[string]string
}

var fieldMessages = map[string]string{
	"Username": "Username must be between 3 and 50 characters",
	"Password": "Password must be between 6 and 100 characters",
}

func (h *Handler) validate(form credentialsForm) map[string]string {
	errs := make(map[string]string)
	err := h.validator.Struct(form)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["general"] = "Invalid input"
		return errs
	}
	for _, fieldErr := range fieldErrs {
		errs[fieldErr.Field()] = fieldMessages[fieldErr.Field()]
	}
	return errs
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/login.html", "Log in", http.StatusOK, authPageData{Errors: map[string]string{}})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	errs := h.validate(form)
	status := http.StatusBadRequest
	if len(errs) == 0 {
		tok, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			if sess == nil {
				h.logger.Error("session missing during login")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess.SignIn(tok.Subject, tok.Value, tok.ExpiresAt)
			h.csrfManager.Rotate(sess)
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + tok.Subject})
			h.logger.Info("user logged in", slog.String("username", tok.Subject))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, ErrInvalidCredentials):
			status = http.StatusUnauthorized
			errs["general"] = "Incorrect username or password"
		default:
			status = http.StatusBadGateway
			h.logger.Error("login", slog.String("username", form.Username), slog.Any("error", err))
			errs["general"] = "Login is unavailable right now, please try again"
		}
	}
	form.Password = ""
	h.render(w, r, "pages/login.html", "Log in", status, authPageData{Form: form, Errors: errs})
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/register.html", "Register", http.StatusOK, authPageData{Errors: map[string]string{}})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := credentialsForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	errs := h.validate(form)
	status := http.StatusBadRequest
	if len(errs) == 0 {
		err := h.service.Register(r.Context(), form.Username, form.Password)
		switch {
		case err == nil:
			if sess != nil {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Account created, please log in"})
			}
			http.Redirect(w, r, shared.LoginPath, http.StatusSeeOther)
			return
		case errors.Is(err, ErrUsernameTaken):
			status = http.StatusConflict
			errs["Username"] = "Username already registered"
		default:
			status = http.StatusBadGateway
			h.logger.Error("register", slog.String("username", form.Username), slog.Any("error", err))
			errs["general"] = "Registration is unavailable right now, please try again"
		}
	}
	form.Password = ""
	h.render(w, r, "pages/register.html", "Register", status, authPageData{Form: form, Errors: errs})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.logger.Info("user logged out", slog.String("username", sess.Username()))
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, shared.LoginPath, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, status int, data authPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	viewData := view.TemplateData{Title: title, CSRFToken: csrfToken, CurrentPath: r.URL.Path, Data: data}
	if sess != nil {
		viewData.Flashes = sess.PopFlashes()
		viewData.Username = sess.Username()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Execute(w, name, viewData); err != nil {
		h.logger.Error("render "+name, slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleRegisterForTest exposes the register POST handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
