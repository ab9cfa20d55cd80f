package server

import (
	"encoding/json"
	"net/http"
)

// apiError mirrors the backend's error envelope.
type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// relayCookies copies backend Set-Cookie headers to w with the Domain attribute dropped so the browser scopes
// them to this server. Unparsable headers are copied verbatim.
func relayCookies(w http.ResponseWriter, header http.Header) {
	for _, line := range header.Values("Set-Cookie") {
		c, err := http.ParseSetCookie(line)
		if err != nil {
			w.Header().Add("Set-Cookie", line)
			continue
		}
		c.Domain = ""
		if v := c.String(); v != "" {
			w.Header().Add("Set-Cookie", v)
		}
	}
}

// setCookies writes already parsed backend cookies to w.
func setCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		cp := *c
		cp.Domain = ""
		http.SetCookie(w, &cp)
	}
}
