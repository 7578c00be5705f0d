package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gorilla "github.com/gorilla/websocket"
)

type meBody struct {
	Manager   string    `json:"manager"`
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
}

func (s *HandlersSuite) TestLoginStripsPhoneAndOpensSession() {
	token := s.login()

	logins := s.backend.seen("/api/manager/login/")
	s.Require().Len(logins, 1)
	s.Contains(string(logins[0].Body), `"phone":"`+testManager+`"`)

	resp := s.get("/me", token)
	s.Equal(http.StatusOK, resp.StatusCode)
	me := decodeBody[meBody](s, resp)
	s.Equal(testManager, me.Data.Manager)
	s.Empty(me.Data.Token, "the backend token never leaves the BFF")
	s.WithinDuration(time.Now().Add(time.Hour), me.Data.ExpiresAt, time.Minute)
}

func (s *HandlersSuite) TestLoginRejectedByBackend() {
	resp := s.call(http.MethodPost, "/login", "", map[string]string{"phone": testManager, "password": "wrong"})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody[any](s, resp)
	s.Equal("UNAUTHORIZED", body.Error.Code)
	s.Equal("Неверный телефон или пароль", body.Error.Message)
}

func (s *HandlersSuite) TestLoginValidation() {
	resp := s.call(http.MethodPost, "/login", "", map[string]string{"phone": "---", "password": "x"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.call(http.MethodPost, "/login", "", `{"phone": "7999"}`)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Empty(s.backend.seen("/api/manager/login/"))
}

func (s *HandlersSuite) TestProtectedRoutesNeedToken() {
	resp := s.get("/api/branches", "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.get("/api/branches", "not-a-jwt")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("INVALID_TOKEN", decodeBody[any](s, resp).Error.Code)
}

func (s *HandlersSuite) TestTokenSignedWithOtherAlgorithmIsRejected() {
	forged := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sid": "whatever",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := forged.SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	resp := s.get("/me", raw)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *HandlersSuite) TestLogoutEndsSession() {
	token := s.login()
	s.Equal(http.StatusOK, s.call(http.MethodPost, "/logout", token, nil).StatusCode)

	resp := s.get("/me", token)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Session expired", decodeBody[any](s, resp).Error.Message)
}

func (s *HandlersSuite) TestExpiredSessionIsRejected() {
	token := s.login()
	s.redis.FastForward(2 * time.Hour)
	s.Equal(http.StatusUnauthorized, s.get("/me", token).StatusCode)
}

func (s *HandlersSuite) TestRejectedBackendCredentialKeepsSession() {
	token := s.login()
	s.backend.failOn("/api/coffeeshops/", http.StatusUnauthorized, `{"detail": "Invalid token."}`)

	resp := s.get("/api/branches", token)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("UNAUTHORIZED", decodeBody[any](s, resp).Error.Code)

	s.Equal(http.StatusOK, s.get("/me", token).StatusCode)
}

func (s *HandlersSuite) dialWS(token string) *gorilla.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws?access_token=" + token
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	s.Require().Eventually(func() bool {
		return s.hub.Connected()[testManager] > 0
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func (s *HandlersSuite) TestLogoutClosesSessionSockets() {
	token := s.login()
	conn := s.dialWS(token)

	s.Equal(http.StatusOK, s.call(http.MethodPost, "/logout", token, nil).StatusCode)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	s.Require().NoError(err)
	s.Contains(string(msg), "session.closed")
}
