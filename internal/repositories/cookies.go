package repositories

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"

	"github.com/desertthunder/travelers/internal/shared"
)

// CookieStore is an [http.CookieJar] that mirrors every accepted cookie into the cookies table.
//
// Rows are keyed by (origin, name, path) where origin is scheme://host of the URL that set the cookie.
// Session cookies (no Expires, no Max-Age) are persisted too: the terminal client has no "browser close".
type CookieStore struct {
	mu     sync.Mutex
	db     *sql.DB
	jar    *cookiejar.Jar
	logger *log.Logger
	now    func() time.Time
}

// NewCookieStore creates a jar and loads every unexpired persisted cookie into it.
func NewCookieStore(db *sql.DB, logger *log.Logger) (*CookieStore, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &CookieStore{db: db, logger: logger, now: time.Now}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

// Load replaces the in-memory jar with the persisted cookies, dropping expired rows.
func (s *CookieStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *CookieStore) load() error {
	jar, err := newJar()
	if err != nil {
		return err
	}

	rows, err := s.db.Query(`
		SELECT id, origin, name, value, domain, path, expires_at, secure, http_only, same_site
		FROM cookies
	`)
	if err != nil {
		return fmt.Errorf("failed to query cookies: %w", err)
	}

	now := s.now()
	byOrigin := map[string][]*http.Cookie{}
	expired := []string{}
	for rows.Next() {
		var (
			id, origin string
			expiresAt  sql.NullTime
			sameSite   int
			c          http.Cookie
		)
		if err := rows.Scan(&id, &origin, &c.Name, &c.Value, &c.Domain, &c.Path, &expiresAt, &c.Secure, &c.HttpOnly, &sameSite); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expiresAt.Valid {
			if !expiresAt.Time.After(now) {
				expired = append(expired, id)
				continue
			}
			c.Expires = expiresAt.Time
		}
		c.SameSite = http.SameSite(sameSite)
		byOrigin[origin] = append(byOrigin[origin], &c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate cookies: %w", err)
	}
	rows.Close()

	for origin, cookies := range byOrigin {
		u, err := url.Parse(origin)
		if err != nil {
			s.logger.Warn("skipping cookies for unparsable origin", "origin", origin, "error", err)
			continue
		}
		jar.SetCookies(u, cookies)
	}

	for _, id := range expired {
		if _, err := s.db.Exec(`DELETE FROM cookies WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to prune expired cookie: %w", err)
		}
	}

	s.jar = jar
	return nil
}

// SetCookies implements [http.CookieJar]. Persistence failures are logged; the jar is always updated.
func (s *CookieStore) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jar.SetCookies(u, cookies)
	for _, c := range cookies {
		if err := s.persist(u, c); err != nil {
			s.logger.Warn("failed to persist cookie", "name", c.Name, "error", err)
		}
	}
}

// Cookies implements [http.CookieJar].
func (s *CookieStore) Cookies(u *url.URL) []*http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jar.Cookies(u)
}

// Get returns the value of the named cookie that would be sent to u.
func (s *CookieStore) Get(u *url.URL, name string) (string, bool) {
	for _, c := range s.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Clear forgets every cookie set by the origin of u.
func (s *CookieStore) Clear(u *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM cookies WHERE origin = ?`, originOf(u)); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return s.load()
}

// StoredCookie is one persisted row.
type StoredCookie struct {
	Origin   string
	Name     string
	Value    string
	Path     string
	Expires  time.Time // zero for a session cookie
	Secure   bool
	HTTPOnly bool
}

// List returns the persisted cookies ordered by origin, name and path. Expired rows are left out.
func (s *CookieStore) List() ([]StoredCookie, error) {
	rows, err := s.db.Query(`
		SELECT origin, name, value, path, expires_at, secure, http_only
		FROM cookies
		ORDER BY origin, name, path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	now := s.now()
	var cookies []StoredCookie
	for rows.Next() {
		var (
			c         StoredCookie
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&c.Origin, &c.Name, &c.Value, &c.Path, &expiresAt, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie: %w", err)
		}
		if expiresAt.Valid {
			if !expiresAt.Time.After(now) {
				continue
			}
			c.Expires = expiresAt.Time
		}
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookies: %w", err)
	}
	return cookies, nil
}

// Count returns the number of persisted rows.
func (s *CookieStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cookies: %w", err)
	}
	return n, nil
}

func (s *CookieStore) persist(u *url.URL, c *http.Cookie) error {
	origin := originOf(u)
	path := c.Path
	if path == "" || !strings.HasPrefix(path, "/") {
		path = defaultPath(u.Path)
	}

	now := s.now()
	var expiresAt sql.NullTime
	switch {
	case c.MaxAge < 0:
		return s.remove(origin, c.Name, path)
	case c.MaxAge > 0:
		expiresAt = sql.NullTime{Time: now.Add(time.Duration(c.MaxAge) * time.Second).UTC(), Valid: true}
	case !c.Expires.IsZero():
		if !c.Expires.After(now) {
			return s.remove(origin, c.Name, path)
		}
		expiresAt = sql.NullTime{Time: c.Expires.UTC(), Valid: true}
	}

	query := `
		INSERT INTO cookies (id, origin, name, value, domain, path, expires_at, secure, http_only, same_site, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(origin, name, path) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			same_site = excluded.same_site,
			updated_at = excluded.updated_at
	`
	_, err := s.db.Exec(query,
		shared.GenerateID(), origin, c.Name, c.Value, c.Domain, path, expiresAt,
		c.Secure, c.HttpOnly, int(c.SameSite), now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cookie: %w", err)
	}
	return nil
}

func (s *CookieStore) remove(origin, name, path string) error {
	if _, err := s.db.Exec(`DELETE FROM cookies WHERE origin = ? AND name = ? AND path = ?`, origin, name, path); err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// defaultPath is the RFC 6265 default-path of a request path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
