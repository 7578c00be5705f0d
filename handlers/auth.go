package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"azv-admin-api/middleware"
	"azv-admin-api/models"
	"azv-admin-api/pkg/events"
	"azv-admin-api/pkg/notify"
	"azv-admin-api/repository"
	"azv-admin-api/types"
	"azv-admin-api/upstream"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "session"

type AuthHandler struct {
	backend  *upstream.Client
	sessions *repository.SessionsRepository
	notifier notify.Notifier
	secret   []byte
}

func NewAuthHandler(backend *upstream.Client, sessions *repository.SessionsRepository, notifier notify.Notifier, secret string) *AuthHandler {
	return &AuthHandler{backend: backend, sessions: sessions, notifier: notifier, secret: []byte(secret)}
}

// Login signs the manager in at the backend, keeps the backend token in a session and
// hands the dashboard a JWT naming that session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	phone := digits(req.Phone)
	if phone == "" {
		badRequest(c, "phone must contain digits")
		return
	}

	cred, err := h.backend.Login(c.Request.Context(), phone, req.Password)
	if err != nil {
		if ue, ok := upstream.AsError(err); ok && (ue.Unauthorized() || ue.Validation()) {
			c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeUnauthorized, ue.Message))
			return
		}
		respondError(c, err)
		return
	}

	session, err := h.sessions.Create(c.Request.Context(), phone, cred)
	if err != nil {
		respondError(c, err)
		return
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": session.ID,
		"sub": session.Manager,
		"iat": session.CreatedAt.Unix(),
		"exp": session.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"token":     signed,
		"manager":   session.Manager,
		"expiresAt": session.ExpiresAt,
	}))
}

// Logout drops the session and with it the backend credential.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := currentSession(c)
	if err := h.sessions.Delete(c.Request.Context(), session.ID); err != nil {
		respondError(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.CloseSession(session.Manager, session.ID, events.NewSessionClosed())
	}
	slog.Info("manager signed out", "manager", session.Manager, "age", sessionAge(session))
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Signed out"}))
}

func (h *AuthHandler) Me(c *gin.Context) {
	session := currentSession(c)
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"manager":   session.Manager,
		"createdAt": session.CreatedAt,
		"expiresAt": session.ExpiresAt,
	}))
}

// AuthMiddleware validates the bearer JWT and loads its session. Websocket clients,
// which cannot set headers, may pass the token as ?access_token=.
func AuthMiddleware(secret string, sessions *repository.SessionsRepository) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(c, types.ErrorCodeInvalidToken, "Invalid authorization header")
				return
			}
			raw = parts[1]
		} else if c.Request.Method == http.MethodGet {
			raw = c.Query("access_token")
		}
		if raw == "" {
			unauthorized(c, types.ErrorCodeUnauthorized, "Authorization header required")
			return
		}

		token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			unauthorized(c, types.ErrorCodeInvalidToken, "Invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, types.ErrorCodeInvalidToken, "Invalid token claims")
			return
		}
		sid, _ := claims["sid"].(string)
		if sid == "" {
			unauthorized(c, types.ErrorCodeInvalidToken, "sid not found in token")
			return
		}

		session, err := sessions.Get(c.Request.Context(), sid)
		if errors.Is(err, repository.ErrSessionNotFound) {
			unauthorized(c, types.ErrorCodeUnauthorized, "Session expired")
			return
		}
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(sessionKey, session)
		c.Set(middleware.SessionIDKey, session.ID)
		c.Set(middleware.ManagerKey, session.Manager)
		c.Next()
	}
}

func unauthorized(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.NewErrorResponse(code, msg))
}

// currentSession is only valid behind AuthMiddleware.
func currentSession(c *gin.Context) *models.Session {
	return c.MustGet(sessionKey).(*models.Session)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sessionAge is how long a session has been alive, for logging.
func sessionAge(s *models.Session) time.Duration {
	return time.Since(s.CreatedAt).Round(time.Second)
}
