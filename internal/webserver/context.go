package webserver

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stockerhq/stocker/config"
	"github.com/stockerhq/stocker/internal/domain"
	"gorm.io/gorm"
)

const (
	contextDBKey     = "stocker_db"
	contextConfigKey = "stocker_config"
)

// JwtClaims carries the authenticated user through a request. Subject holds
// the user ID as a decimal string (snowflake IDs overflow JSON numbers).
type JwtClaims struct {
	Username string `json:"username"`
	Level    string `json:"level"`
	jwt.RegisteredClaims
}

func newJwtClaims(c echo.Context) jwt.Claims {
	return new(JwtClaims)
}

// NewToken issues a signed token for the user, valid for 24 hours.
func NewToken(user *domain.SysUser, secret string) (string, error) {
	claims := &JwtClaims{
		Username: user.Username,
		Level:    user.Level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(contextDBKey).(*gorm.DB)
}

// GetConfig returns the application configuration for this request.
func GetConfig(c echo.Context) *config.AppConfig {
	return c.Get(contextConfigKey).(*config.AppConfig)
}

// Claims returns the verified JWT claims, or nil on unauthenticated routes.
func Claims(c echo.Context) *JwtClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*JwtClaims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUserID returns the authenticated user's ID, or 0.
func CurrentUserID(c echo.Context) int64 {
	claims := Claims(c)
	if claims == nil {
		return 0
	}
	id, _ := strconv.ParseInt(claims.Subject, 10, 64)
	return id
}

// IsStaff reports whether the request carries the elevated role.
func IsStaff(c echo.Context) bool {
	claims := Claims(c)
	return claims != nil && claims.Level == domain.UserLevelStaff
}
