package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/internal/interface/middleware"
	"github.com/oksasatya/go-account-service/pkg/response"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

type UserHandler struct {
	Accounts  *application.AccountService
	Logger    logrus.FieldLogger
	MaxUpload int64
}

func NewUserHandler(accounts *application.AccountService, logger logrus.FieldLogger, maxUpload int64) *UserHandler {
	return &UserHandler{Accounts: accounts, Logger: logger, MaxUpload: maxUpload}
}

type registerForm struct {
	FullName string `form:"fullname"`
	Email    string `form:"email"`
	Username string `form:"username"`
	Password string `form:"password"`
}

type updateAccountRequest struct {
	FullName string `json:"fullname" binding:"required,notblank"`
	Email    string `json:"email" binding:"required,email"`
}

// Register POST /api/v1/users/register (multipart)
func (h *UserHandler) Register(c *gin.Context) {
	h.limitBody(c, 2)
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.uploadError(c, err)
			return
		}
		response.Abort(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	avatar, ac, err := formUpload(c, "avatar", h.MaxUpload)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	cover, cc, err := formUpload(c, "coverImage", h.MaxUpload)
	if err != nil {
		closeAll(ac)
		h.uploadError(c, err)
		return
	}
	defer closeAll(ac, cc)

	user, err := h.Accounts.Register(c.Request.Context(), application.RegisterInput{
		FullName:   form.FullName,
		Email:      form.Email,
		Username:   form.Username,
		Password:   form.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, user, "User registered successfully")
}

// CurrentUser GET /api/v1/users/current-user (auth)
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, err := h.Accounts.GetCurrentUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount PATCH /api/v1/users/update-account (auth)
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Abort(c, http.StatusBadRequest, "all fields are required", validation.ToDetails(err))
		return
	}
	user, err := h.Accounts.UpdateAccountDetails(c.Request.Context(), middleware.UserID(c), application.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar PATCH /api/v1/users/avatar (auth, multipart "avatar")
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.Accounts.UpdateAvatar, "Avatar image uploaded successfully")
}

// UpdateCoverImage PATCH /api/v1/users/cover-image (auth, multipart "coverImage")
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.Accounts.UpdateCoverImage, "Cover image uploaded successfully")
}

type imageUpdater func(ctx context.Context, userID string, f *application.Upload) (*application.UserView, error)

func (h *UserHandler) updateImage(c *gin.Context, field string, update imageUpdater, msg string) {
	h.limitBody(c, 1)
	f, closer, err := formUpload(c, field, h.MaxUpload)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	defer closeAll(closer)

	user, err := update(c.Request.Context(), middleware.UserID(c), f)
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, user, msg)
}

// Search GET /api/v1/users/search?q=&size= (auth)
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Accounts.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.Fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, users, "")
}

// limitBody caps the request body at files uploads plus 1 MiB of form fields.
func (h *UserHandler) limitBody(c *gin.Context, files int64) {
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, files*h.MaxUpload+1<<20)
	}
}

func (h *UserHandler) uploadError(c *gin.Context, err error) {
	var tooBig *http.MaxBytesError
	if errors.Is(err, errFileTooLarge) || errors.As(err, &tooBig) {
		response.Abort(c, http.StatusRequestEntityTooLarge, "file too large", gin.H{"max_bytes": h.MaxUpload})
		return
	}
	response.Abort(c, http.StatusBadRequest, "invalid multipart form", nil)
}
