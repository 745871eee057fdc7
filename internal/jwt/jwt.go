package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Login tokens ride in an HttpOnly cookie. The middleware renews a token once
// it is older than its renewal interval, so these lifetimes are upper bounds
// on an idle session, not on a login.
const (
	cookieName       = "JWT"
	sessionLifetime  = 24 * time.Hour
	rememberLifetime = 4 * 7 * 24 * time.Hour
)

type UserToken struct {
	UserID   int64 `json:"userID"`
	Remember bool  `json:"rem"`
	jwt.RegisteredClaims
}

var (
	jwtSecret []byte
	isHttps   bool
)

func Setup(key string, https bool) {
	jwtSecret = []byte(key)
	isHttps = https
}

// CreateToken signs a fresh token for the user and wraps it in the cookie the
// browser sends back on every API call. Without rememberMe the cookie is
// session-scoped and carries no Expires attribute.
func CreateToken(rememberMe bool, userID int64) (http.Cookie, error) {
	lifetime := sessionLifetime
	if rememberMe {
		lifetime = rememberLifetime
	}

	now := time.Now().UTC()
	expiresAt := now.Add(lifetime)

	claims := UserToken{
		UserID:   userID,
		Remember: rememberMe,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(jwtSecret)
	if err != nil {
		return http.Cookie{}, err
	}

	cookie := http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   isHttps,
		SameSite: http.SameSiteLaxMode,
	}
	if rememberMe {
		cookie.Expires = expiresAt
	}
	return cookie, nil
}

// DeleteCookie expires the login cookie; used when the account behind a
// still-valid token no longer exists.
func DeleteCookie() http.Cookie {
	return http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	}
}

// VerifyToken checks the signature and expiry. Only HS512 is accepted; a
// token claiming any other algorithm fails verification outright.
func VerifyToken(tokenString string) (UserToken, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserToken{},
		func(*jwt.Token) (any, error) { return jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	)
	if err != nil {
		return UserToken{}, err
	}

	claims, ok := token.Claims.(*UserToken)
	if !ok {
		return UserToken{}, errors.New("unexpected claims type")
	}
	return *claims, nil
}
