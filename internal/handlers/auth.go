package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/alimgiray/orgscope/internal/middleware"
	"github.com/alimgiray/orgscope/internal/models"
	"github.com/alimgiray/orgscope/internal/services"
	"github.com/alimgiray/orgscope/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600

	placeholderSubject  = "placeholder-user"
	placeholderUsername = "placeholder"
)

type AuthHandler struct {
	userService      *services.UserService
	githubService    *services.GitHubService
	issuer           *middleware.TokenIssuer
	frontendURL      string
	placeholderLogin bool
}

// NewAuthHandler creates the auth handler. githubService is nil when OAuth is not configured.
func NewAuthHandler(
	userService *services.UserService,
	githubService *services.GitHubService,
	issuer *middleware.TokenIssuer,
	frontendURL string,
	placeholderLogin bool,
) *AuthHandler {
	return &AuthHandler{
		userService:      userService,
		githubService:    githubService,
		issuer:           issuer,
		frontendURL:      strings.TrimRight(frontendURL, "/"),
		placeholderLogin: placeholderLogin,
	}
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	if h.githubService == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "GitHub login is not configured")
		return
	}

	state := uuid.New().String()
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/auth/github", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.githubService.GetAuthURL(state))
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	if h.githubService == nil {
		middleware.AbortWithError(c, http.StatusNotFound, "GitHub login is not configured")
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.redirectToFrontend(c, "error", "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth/github", "", false, true)

	code := c.Query("code")
	if code == "" {
		h.redirectToFrontend(c, "error", "no_code")
		return
	}

	// Exchange code for token
	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		logger.WithError(err).Warn("GitHub token exchange failed")
		h.redirectToFrontend(c, "error", "token_exchange_failed")
		return
	}

	// Get user info from GitHub
	githubUser, err := h.githubService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		logger.WithError(err).Warn("Fetching GitHub user failed")
		h.redirectToFrontend(c, "error", "user_info_failed")
		return
	}

	user, err := h.userService.UpsertGitHubUser(githubUser)
	if err != nil {
		logger.WithError(err).WithField("login", githubUser.Login).Error("Saving user failed")
		h.redirectToFrontend(c, "error", "user_save_failed")
		return
	}

	jwt, err := h.issuer.Issue(user.ID.String(), user.Username)
	if err != nil {
		logger.WithError(err).Error("Issuing token failed")
		h.redirectToFrontend(c, "error", "token_issue_failed")
		return
	}

	logger.WithField("login", user.Username).Info("User signed in with GitHub")
	h.redirectToFrontend(c, "token", jwt)
}

// ValidateToken reports on the bearer token that passed the auth guard.
// Tokens of signed in GitHub users come back with the stored profile.
func (h *AuthHandler) ValidateToken(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		middleware.AbortWithError(c, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	user := gin.H{
		"id":       claims.Subject,
		"username": claims.Username,
	}

	stored, err := h.userService.GetUserByID(claims.Subject)
	switch {
	case err == nil:
		user["name"] = stored.Name
		user["username"] = stored.Username
		user["email"] = stored.Email
		user["profilePicture"] = stored.ProfilePicture
	case errors.Is(err, models.ErrNotFound):
		// Placeholder tokens have no stored user
	default:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"user":      user,
		"expiresAt": claims.ExpiresAt,
		"message":   "Token is valid",
	})
}

// PlaceholderLogin issues a token without GitHub, for exercising the API locally
func (h *AuthHandler) PlaceholderLogin(c *gin.Context) {
	if !h.placeholderLogin {
		middleware.AbortWithError(c, http.StatusNotFound, "Placeholder login is disabled")
		return
	}

	token, err := h.issuer.Issue(placeholderSubject, placeholderUsername)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func (h *AuthHandler) redirectToFrontend(c *gin.Context, key, value string) {
	query := url.Values{}
	query.Set(key, value)
	c.Redirect(http.StatusFound, h.frontendURL+"/login?"+query.Encode())
}
