package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/middleware"
)

type contentRequest struct {
	Content string `json:"content"`
}

func (s *Server) publicDialog(c *gin.Context) {
	d, err := s.messenger.PublicDialog(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) findPrivateDialog(c *gin.Context) {
	me := middleware.CurrentUser(c)
	d, err := s.messenger.FindPrivateDialog(c.Request.Context(), me.ID, c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) createPrivateDialog(c *gin.Context) {
	me := middleware.CurrentUser(c)
	d, err := s.messenger.GetOrCreatePrivateDialog(c.Request.Context(), me.ID, c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) privateDialogs(c *gin.Context) {
	me := middleware.CurrentUser(c)
	ds, err := s.messenger.ListPrivateDialogs(c.Request.Context(), me.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) dialog(c *gin.Context) {
	d, err := s.messenger.GetDialog(c.Request.Context(), c.Query("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// messages returns a history page. date is an exclusive cursor in unix seconds.
func (s *Server) messages(c *gin.Context) {
	var before float64
	if raw := c.Query("date"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			s.fail(c, badRequest("date must be a unix timestamp"))
			return
		}
		before = v
	}

	ms, err := s.messenger.ListMessages(c.Request.Context(), c.Query("id"), before)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}

func (s *Server) postPublicMessage(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid json"))
		return
	}

	me := middleware.CurrentUser(c)
	m, err := s.messenger.PostPublicMessage(c.Request.Context(), me.ID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) postPrivateMessage(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid json"))
		return
	}

	me := middleware.CurrentUser(c)
	m, err := s.messenger.PostMessage(c.Request.Context(), c.Query("id"), me.ID, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
