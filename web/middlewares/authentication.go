package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/checkinblaze/checkinblaze/security"
	"github.com/checkinblaze/checkinblaze/web/common"
)

const principalKey = "principal"

func parseClaims(tokenStr string, jwtSecret []byte) (*security.IdentityClaims, error) {
	claims := &security.IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// Authentication validates the Bearer token and places the caller's
// Principal into the request context. Handlers never re-validate identity.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Browser clients carry the token in a cookie instead.
			cookie, err := c.Cookie("checkinblaze.AuthCookie")
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			tokenStr = parts[1]
		}

		claims, err := parseClaims(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("token has no subject"))
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller set by Authentication.
func PrincipalFrom(c *gin.Context) (security.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return security.Principal{}, false
	}
	p, ok := v.(security.Principal)
	return p, ok
}
