package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/handler/http/response"
	"github.com/ledgerline/identity-core/internal/pkg/oauth"
)

const stateCookieName = "oauth_state"

type AuthHandler interface {
	Signup(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	Profile(w http.ResponseWriter, r *http.Request)
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
}

// NewAuthHandler builds the auth endpoints. googleService may be nil when
// federated login is not configured.
func NewAuthHandler(authService auth.AuthService, googleService oauth.GoogleService, frontendURL string) AuthHandler {
	return &AuthHandlerImpl{
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
	}
}

// Signup implements AuthHandler.
func (a *AuthHandlerImpl) Signup(w http.ResponseWriter, r *http.Request) {
	var signupReq auth.SignupRequest

	if err := json.NewDecoder(r.Body).Decode(&signupReq); err != nil {
		slog.Warn("Signup decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := a.authService.Signup(r.Context(), signupReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, auth.TokenResponse{
		Message:   "Account created successfully",
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      auth.NewSessionUserResponse(result.User, result.Company),
	})
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Warn("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.OK(w, auth.TokenResponse{
		Message:   "Login successful",
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt,
		User:      auth.NewProfileResponse(result.Profile),
	})
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrUnauthenticated)
		return
	}

	if err := a.authService.Logout(r.Context(), principal); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Logged out successfully")
}

type profileResponse struct {
	User auth.SessionUserResponse `json:"user"`
}

// Profile implements AuthHandler.
func (a *AuthHandlerImpl) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrUnauthenticated)
		return
	}

	response.OK(w, profileResponse{User: auth.NewProfileResponse(principal.Profile)})
}

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := a.googleService.GenerateState()
	if err != nil {
		response.HandleError(w, fmt.Errorf("generate oauth state: %w", err))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallbackGoogle implements AuthHandler.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		slog.Warn("Error in OAuth callback", "error", errorValue)
		redirectWithError(errorValue)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		slog.Warn("State cookie missing", "error", err)
		redirectWithError("state_cookie_not_found")
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		slog.Warn("OAuth state mismatch")
		redirectWithError("state_mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		redirectWithError("code_empty")
		return
	}

	token, err := a.googleService.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("Failed to exchange oauth code", "error", err)
		redirectWithError("token_verification_failed")
		return
	}

	googleUser, err := a.googleService.VerifyUser(r.Context(), token)
	if err != nil {
		slog.Error("Failed to verify google user", "error", err)
		redirectWithError("user_verification_failed")
		return
	}
	if !googleUser.VerifiedEmail {
		redirectWithError("email_not_verified")
		return
	}

	result, err := a.authService.LoginWithGoogle(r.Context(), googleUser.Email)
	if err != nil {
		slog.Warn("Google login rejected", "error", err)
		redirectWithError("login_failed")
		return
	}

	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_at=%d",
		a.frontendURL,
		url.QueryEscape(result.Session.Token),
		result.Session.ExpiresAt,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}
