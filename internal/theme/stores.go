package theme

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/travelers/internal/models"
)

// NewCookie returns the theme cookie: one year, whole site, SameSite=Lax.
func NewCookie(theme models.Theme, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     models.CookieTheme,
		Value:    theme.String(),
		Path:     "/",
		MaxAge:   models.ThemeCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// JarCookie keeps the theme cookie in a client-side cookie jar for the site at URL.
type JarCookie struct {
	Jar http.CookieJar
	URL *url.URL
}

func (c JarCookie) Load() (string, bool, error) {
	for _, cookie := range c.Jar.Cookies(c.URL) {
		if cookie.Name == models.CookieTheme {
			return cookie.Value, true, nil
		}
	}
	return "", false, nil
}

func (c JarCookie) Save(theme models.Theme) error {
	c.Jar.SetCookies(c.URL, []*http.Cookie{NewCookie(theme, c.URL.Scheme == "https")})
	return nil
}

// RequestCookie reads the theme cookie from an incoming request and writes it to the response.
type RequestCookie struct {
	Request *http.Request
	Writer  http.ResponseWriter
	Secure  bool
}

func (c RequestCookie) Load() (string, bool, error) {
	cookie, err := c.Request.Cookie(models.CookieTheme)
	if err != nil {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

func (c RequestCookie) Save(theme models.Theme) error {
	http.SetCookie(c.Writer, NewCookie(theme, c.Secure))
	return nil
}

// KeyValue is the local store the theme key lives in.
type KeyValue interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// LocalKey keeps the theme under the "theme" key of a [KeyValue].
type LocalKey struct {
	KV KeyValue
}

func (l LocalKey) Load() (string, bool, error) {
	return l.KV.Get(models.LocalKeyTheme)
}

func (l LocalKey) Save(theme models.Theme) error {
	return l.KV.Set(models.LocalKeyTheme, theme.String())
}

// Attribute is a [Document] that records the applied theme, standing in for a data-theme attribute.
type Attribute struct {
	mu    sync.Mutex
	value models.Theme
}

func (a *Attribute) ApplyTheme(theme models.Theme) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = theme
}

// Value returns the last applied theme, empty when none was applied.
func (a *Attribute) Value() models.Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}
