package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/account"
	"github.com/PaulBabatuyi/chater/internal/auth"
	"github.com/PaulBabatuyi/chater/internal/data"
	"github.com/PaulBabatuyi/chater/internal/middleware"
	"github.com/PaulBabatuyi/chater/internal/normalize"
)

// sessionResponse is the user plus the token clients send back as bearer.
type sessionResponse struct {
	data.PublicUser
	Hash string `json:"hash"`
}

// registrate creates an account and signs it in.
func (s *Server) registrate(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid json"))
		return
	}

	sess, err := s.accounts.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.startSession(c, sess)
}

// login checks credentials and returns a fresh token.
func (s *Server) login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid json"))
		return
	}

	sess, err := s.accounts.Login(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.startSession(c, sess)
}

// logout clears the session cookies. Tokens are stateless and stay valid
// until they expire.
func (s *Server) logout(c *gin.Context) {
	for _, name := range []string{"id", "email", "name", middleware.TokenCookie} {
		c.SetCookie(name, "", -1, "/", "", s.cookieSecure, true)
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) startSession(c *gin.Context, sess *account.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(s.cookieTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	cookies := map[string]string{
		"id":                   sess.User.ID,
		"email":                sess.User.Email,
		"name":                 sess.User.Name,
		middleware.TokenCookie: sess.Token,
	}
	for name, value := range cookies {
		c.SetCookie(name, value, maxAge, "/", "", s.cookieSecure, true)
	}
	c.JSON(http.StatusOK, sessionResponse{PublicUser: sess.User, Hash: sess.Token})
}

// user returns one user by id.
func (s *Server) user(c *gin.Context) {
	u, err := s.accounts.GetUser(c.Request.Context(), c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// users returns the users named in the ids query parameter.
func (s *Server) users(c *gin.Context) {
	list, err := s.accounts.GetUsers(c.Request.Context(), normalize.IDs(c.Query("ids")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// search finds users by a case-sensitive name substring.
func (s *Server) search(c *gin.Context) {
	list, err := s.accounts.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
