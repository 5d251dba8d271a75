package adminapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/internal/webserver"
	"github.com/stockerhq/stocker/pkg/common"
)

type registerPayload struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	Realname string `json:"realname" validate:"omitempty,max=100"`
	About    string `json:"about" validate:"omitempty,max=2000"`
}

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profilePayload struct {
	Realname string `json:"realname" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	About    string `json:"about" validate:"omitempty,max=2000"`
}

// registerAccountRoutes registers authentication and profile routes.
// Register and login are public; the rest require a token.
func registerAccountRoutes() {
	webserver.ApiPOST("/auth/register", registerUser)
	webserver.ApiPOST("/auth/login", loginUser)
	webserver.ApiPOST("/auth/logout", logoutUser)
	webserver.ApiGET("/account/profile", getProfile)
	webserver.ApiPUT("/account/profile", updateProfile)
	webserver.ApiPOST("/account/avatar", uploadAvatar)
}

func registerUser(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	username := strings.TrimSpace(payload.Username)

	var exists int64
	GetDB(c).Model(&domain.SysUser{}).Where("username = ?", username).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "USERNAME_EXISTS", "Please choose another username", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("registration failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "REGISTER_FAILED", "Couldn't register user. Try again", nil)
	}

	user := domain.SysUser{
		ID:        common.UUIDint64(),
		Username:  username,
		Password:  string(hashed),
		Email:     strings.TrimSpace(payload.Email),
		Realname:  strings.TrimSpace(payload.Realname),
		About:     payload.About,
		Level:     domain.UserLevelNormal,
		Status:    common.ENABLED,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// The whole registration commits or rolls back as one unit.
	if err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		zap.L().Error("registration failed", zap.String("username", username), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "REGISTER_FAILED", "Couldn't register user. Try again", nil)
	}

	return ok(c, user)
}

func loginUser(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.SysUser
	err := GetDB(c).Where("username = ?", strings.TrimSpace(payload.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Please try again. Your credentials are wrong", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}
	if user.Status != common.ENABLED {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}

	token, err := webserver.NewToken(&user, webserver.GetConfig(c).Web.JwtSecret)
	if err != nil {
		zap.L().Error("token generation failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}

	GetDB(c).Model(&domain.SysUser{}).Where("id = ?", user.ID).
		Update("last_login", time.Now())

	GetDB(c).Create(&domain.SysOpLog{
		ID:       common.UUIDint64(),
		Username: user.Username,
		OprIp:    c.RealIP(),
		Action:   "login",
		OptTime:  time.Now(),
	})

	return ok(c, map[string]interface{}{"token": token, "user": user})
}

// logoutUser records the action; token disposal happens on the client.
func logoutUser(c echo.Context) error {
	writeOpLog(c, "logout", "")
	return ok(c, nil)
}

func getProfile(c echo.Context) error {
	var user domain.SysUser
	err := GetDB(c).Where("id = ?", webserver.CurrentUserID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}
	return ok(c, user)
}

func updateProfile(c echo.Context) error {
	var payload profilePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	var user domain.SysUser
	err := GetDB(c).Where("id = ?", webserver.CurrentUserID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	user.Realname = strings.TrimSpace(payload.Realname)
	user.Email = strings.TrimSpace(payload.Email)
	user.About = payload.About
	user.UpdatedAt = time.Now()

	if err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		return tx.Save(&user).Error
	}); err != nil {
		zap.L().Error("profile update failed", zap.String("username", user.Username), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "PROFILE_UPDATE_FAILED", "Couldn't update profile", nil)
	}

	return ok(c, user)
}

func uploadAvatar(c echo.Context) error {
	var user domain.SysUser
	err := GetDB(c).Where("id = ?", webserver.CurrentUserID(c)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Avatar file is required", nil)
	}
	src, err := file.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read avatar file", err.Error())
	}
	defer src.Close()

	uploadDir := filepath.Join(webserver.GetConfig(c).GetUploadDir(), "avatars")
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store avatar", err.Error())
	}
	dstPath := filepath.Join(uploadDir, fmt.Sprintf("%d_%s", user.ID, filepath.Base(file.Filename)))
	dst, err := os.Create(dstPath)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store avatar", err.Error())
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fail(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store avatar", err.Error())
	}

	user.Avatar = dstPath
	user.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user", err.Error())
	}

	return ok(c, user)
}
