package session

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/desertthunder/travelers/internal/models"
)

// TokensFromCookies collects the backend's session cookies into a token pair.
//
// It reports false when neither accessToken nor refreshToken is present, in which case there is no session worth
// asking the backend about. The expiry is taken from the access token's exp claim when it is a JWT.
func TokensFromCookies(cookies []*http.Cookie) (*oauth2.Token, bool) {
	tok := &oauth2.Token{}
	for _, c := range cookies {
		switch c.Name {
		case models.CookieAccessToken:
			tok.AccessToken = c.Value
		case models.CookieRefreshToken:
			tok.RefreshToken = c.Value
		}
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, false
	}

	if exp, ok := AccessTokenExpiry(tok.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok, true
}

// AccessTokenExpiry decodes the exp claim without verifying the signature; the backend remains the only judge of
// validity.
func AccessTokenExpiry(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// NeedsRefresh reports whether the access token is missing or known to be expired while a refresh token is held.
func NeedsRefresh(tok *oauth2.Token) bool {
	return tok != nil && tok.RefreshToken != "" && !tok.Valid()
}
