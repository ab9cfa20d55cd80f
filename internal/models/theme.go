package models

// Theme is the display preference persisted in the cookie, the local store and the backend.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	// DefaultTheme is the static fallback used when no source holds a valid value.
	DefaultTheme = ThemeLight
)

// Storage keys and names shared by every host.
const (
	CookieTheme        = "theme"
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	LocalKeyTheme      = "theme"
	LocalKeySession    = "auth-storage"
	ThemeAttribute     = "data-theme"
	ThemeCookieMaxAge  = 60 * 60 * 24 * 365
)

// ParseTheme reports whether s names a valid theme.
func ParseTheme(s string) (Theme, bool) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, true
	}
	return "", false
}

// Valid reports whether t is one of the two enum values.
func (t Theme) Valid() bool {
	_, ok := ParseTheme(string(t))
	return ok
}

// Opposite returns the other theme; invalid values flip to dark since they render as light.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string { return string(t) }
