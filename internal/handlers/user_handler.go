package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/servicehub/internal/helpers"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/services"
)

const createUserFailed = "Error creating user"

// CreateUser accepts multipart/form-data (with an optional "image" file) or
// a JSON body.
func CreateUser(u *services.UserService, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.RegisterInput
		if err := c.ShouldBind(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "cMsg": createUserFailed})
			return
		}

		image, err := c.FormFile("image")
		if err != nil {
			if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "cMsg": createUserFailed})
				return
			}
		}

		user, err := u.CreateUser(c.Request.Context(), in, image, baseURL(c, publicBaseURL))
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				body := validationBody(verr)
				body["cMsg"] = createUserFailed
				c.JSON(http.StatusBadRequest, body)
			case errors.Is(err, models.ErrConflict), errors.Is(err, services.ErrImageUpload):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "cMsg": createUserFailed})
			default:
				_ = c.Error(err)
			}
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func AuthenticateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "message": "invalid request payload"})
			return
		}

		user, err := u.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
			case errors.Is(err, models.ErrInvalidCredentials):
				c.JSON(http.StatusBadRequest, gin.H{"message": models.InvalidCredentialsMessage})
			default:
				_ = c.Error(err)
			}
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func ListUsers(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := u.ListUsers(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func GetUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := u.GetUser(c.Request.Context(), helpers.StringTrim(c.Param("id")))
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUser answers 404 for a malformed id and 400 for an id that matches
// nothing.
func UpdateUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := helpers.StringTrim(c.Param("id"))
		if _, err := models.ParseUserID(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		var fields map[string]interface{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := u.UpdateUser(c.Request.Context(), id, fields)
		if err != nil {
			var verr *models.ValidationError
			switch {
			case errors.As(err, &verr):
				body := validationBody(verr)
				body["allowed_fields"] = services.UpdatableFields()
				c.JSON(http.StatusBadRequest, body)
			case errors.Is(err, models.ErrInvalidID):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				_ = c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func DeleteUser(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := u.DeleteUser(c.Request.Context(), helpers.StringTrim(c.Param("id")))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidID):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, models.ErrNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				_ = c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
