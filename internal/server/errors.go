package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cafe-orders/internal/domain"
)

var statusByCode = map[string]int{
	"product_not_found":   http.StatusNotFound,
	"order_not_found":     http.StatusNotFound,
	"product_unavailable": http.StatusConflict,
	"invalid_transition":  http.StatusConflict,
	"forbidden":           http.StatusForbidden,
	"invalid_status":      http.StatusBadRequest,
	"invalid_role":        http.StatusBadRequest,
	"invalid_draft":       http.StatusBadRequest,
	"unknown_table":       http.StatusBadRequest,
	"invalid_credentials": http.StatusUnauthorized,
	"unauthorized":        http.StatusUnauthorized,
}

func (s *Server) err(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": gin.H{
		"code":      code,
		"message":   msg,
		"requestId": c.GetString(ctxRequestID),
	}})
}

// fail writes a domain error with its wire code; unknown errors become 500.
func (s *Server) fail(c *gin.Context, err error) {
	code := domain.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		s.log.Error("request failed", "path", c.Request.URL.Path, "err", err, "requestId", c.GetString(ctxRequestID))
		s.err(c, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	s.err(c, status, code, err.Error())
}
