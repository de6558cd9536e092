package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/services"
)

const VerifySuccessMessage = "Thank you for verifying your email!"

// ConfirmEmail consumes the token from ?token= and renders the activation
// page.
func ConfirmEmail(v *services.VerificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := v.ConfirmToken(c.Request.Context(), c.Query("token"))
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrInvalidToken.Error()})
				return
			}
			_ = c.Error(err)
			return
		}

		page, err := v.ActivationPage(user)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

func ResendConfirmation(v *services.VerificationService, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := v.ResendConfirmation(c.Request.Context(), req.Email, baseURL(c, publicBaseURL))
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, validationBody(verr))
			case errors.Is(err, models.ErrNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"error": "No unconfirmed account for this email"})
			default:
				_ = c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Confirmation email sent"})
	}
}

func VerifySuccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, VerifySuccessMessage)
	}
}
