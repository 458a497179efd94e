package main

import (
	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/apperr"
)

// fail writes err as a JSON error body with the status of its kind.
// Unclassified errors are logged and reported as a bare 500.
func (s *Server) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		s.log.Error("request failed",
			"path", c.Request.URL.Path,
			"request_id", c.GetString("X-Request-ID"),
			"err", err,
		)
	}
	c.AbortWithStatusJSON(apperr.Status(kind), gin.H{"error": apperr.Message(err)})
}

func badRequest(msg string) error { return apperr.Validation(msg) }
