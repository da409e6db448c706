package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/middleware/metrics"
	"billhub/internal/services"
	"billhub/internal/session"
)

type loginPage struct {
	page
	Phone    string
	Remember bool
	// Notice is shown inline when the form is re-rendered.
	Notice *core.Notification
}

func (s *Server) tiers(r *http.Request) session.Tiers {
	device, tab := sessionIDs(r.Context())
	return s.deps.Hub.Tiers(device, tab)
}

// releaseGuard tears down the idle guard of a page that went away.
func (s *Server) releaseGuard(pageID string) {
	if pageID == "" {
		return
	}
	s.deps.Hub.Release(pageID)
	metricsGuards(s)
}

// installGuard arms an idle guard for the page being rendered and returns
// its page id. Expiry clears the tiers of the requesting device and tab.
func (s *Server) installGuard(r *http.Request) string {
	device, tab := sessionIDs(r.Context())
	pageID := uuid.NewString()
	s.deps.Hub.Install(pageID, device, tab)
	metricsGuards(s)
	return pageID
}

func metricsGuards(s *Server) { metrics.SetActiveGuards(s.deps.Hub.Len()) }

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := loginPage{page: s.basePage(r)}
	data.Phone, data.Remember = session.Remembered(r.Context(), s.tiers(r))
	data.HelpURL = s.helpURL(data.L.T("help.msg.general", data.Phone))
	s.render(w, r, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := services.LoginInput{
		Phone:    sanitizeInput(r.PostForm.Get("phone")),
		Password: r.PostForm.Get("password"),
		Remember: r.PostForm.Get("remember") != "",
	}

	user, err := s.deps.Auth.Login(ctx, in)
	if err != nil {
		s.loginFailed(w, r, in, err)
		return
	}

	if err := session.SignIn(ctx, s.tiers(r), user.Phone, in.Remember); err != nil {
		s.reqLog(r).ErrorContext(ctx, "Failed to store identity", log.FieldError, err, log.FieldOperation, log.OpLogin)
		metrics.RecordLogin("error")
		s.loginFailed(w, r, in, err)
		return
	}
	metrics.RecordLogin("success")
	s.reqLog(r).InfoContext(ctx, "User signed in", log.FieldOperation, log.OpLogin, "remember", in.Remember)

	s.flash(r, core.NotificationSuccess, localizer(ctx).T("login.success"))
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, in services.LoginInput, err error) {
	l := localizer(r.Context())
	notice := core.Notification{Kind: core.NotificationError, Message: l.T("login.error")}
	status := http.StatusUnauthorized

	var fe *services.FieldError
	switch {
	case errors.As(err, &fe) && fe.Field == "Phone":
		notice = core.Notification{Kind: core.NotificationWarning, Message: l.T("login.phoneRequired")}
		status = http.StatusUnprocessableEntity
		metrics.RecordLogin("invalid")
	case errors.As(err, &fe):
		notice = core.Notification{Kind: core.NotificationWarning, Message: l.T("login.passwordRequired")}
		status = http.StatusUnprocessableEntity
		metrics.RecordLogin("invalid")
	case errors.Is(err, services.ErrPhoneNotRegistered):
		notice.Message = l.T("login.notRegistered")
		metrics.RecordLogin("unknown_phone")
	case errors.Is(err, services.ErrInvalidCredentials):
		notice.Message = l.T("login.wrongPassword")
		metrics.RecordLogin("wrong_password")
	default:
		status = http.StatusInternalServerError
		s.reqLog(r).ErrorContext(r.Context(), "Login failed", log.FieldError, err, log.FieldOperation, log.OpLogin)
	}

	data := loginPage{page: s.basePage(r), Phone: in.Phone, Remember: in.Remember, Notice: &notice}
	data.HelpURL = s.helpURL(l.T("help.msg.general", in.Phone))
	s.render(w, r, status, "login.html", data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.releaseGuard(r.PostFormValue(pageField))

	notice := core.Notification{Kind: core.NotificationSuccess, Message: localizer(ctx).T("home.logoutSuccess")}
	nav := session.NavigatorFunc(func(path string) {
		http.Redirect(w, r, path, http.StatusSeeOther)
	})
	session.EndSession(ctx, s.tiers(r), nav, notice, session.EntryPath, s.reqLog(r))
	s.reqLog(r).InfoContext(ctx, "User signed out", log.FieldOperation, log.OpLogout)
}

// requireUser resolves the identity, durable tier first, and loads the user.
// Anyone without one is sent to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		phone, err := session.Identity(ctx, s.tiers(r))
		if err != nil {
			if !errors.Is(err, session.ErrNoIdentity) {
				s.reqLog(r).ErrorContext(ctx, "Failed to read identity", log.FieldError, err)
			}
			http.Redirect(w, r, session.EntryPath, http.StatusSeeOther)
			return
		}

		user, err := s.deps.Auth.User(ctx, phone)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				_ = session.ClearIdentity(ctx, s.tiers(r))
			} else {
				s.reqLog(r).ErrorContext(ctx, "Failed to load user", log.FieldError, err)
			}
			http.Redirect(w, r, session.EntryPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxUser, &user)))
	})
}

func currentUser(ctx context.Context) *core.User {
	u, _ := ctx.Value(ctxUser).(*core.User)
	return u
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
