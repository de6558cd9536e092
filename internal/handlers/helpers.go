package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/servicehub/internal/models"
)

// baseURL is the scheme://host links are built from. A configured public
// URL wins over what the request says; production refuses to start
// without one.
func baseURL(c *gin.Context, public string) string {
	if public != "" {
		return public
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		switch p := strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0])); p {
		case "http", "https":
			scheme = p
		}
	}
	return scheme + "://" + c.Request.Host
}

func validationBody(verr *models.ValidationError) gin.H {
	body := gin.H{"error": verr.Message}
	if len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	return body
}
