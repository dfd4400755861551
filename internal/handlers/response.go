package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/yungbote/studymatch-backend/internal/apierr"
)

// respondError maps typed service errors onto their HTTP status and code;
// anything untyped is a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
  if apiErr, ok := apierr.As(err); ok {
    body := gin.H{"error": apiErr.Error(), "code": apiErr.Code}
    for k, v := range apiErr.Meta {
      body[k] = v
    }
    c.JSON(apiErr.Status, body)
    return
  }
  c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
