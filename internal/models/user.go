package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidProfile is returned when a payload does not resolve to a user with a non-empty id.
var ErrInvalidProfile = errors.New("invalid user profile")

// maxUnwrapDepth bounds how far envelopes are followed ({data: {user: {...}}} is depth 2).
const maxUnwrapDepth = 3

// UserProfile is the canonical user record. ID is never empty once produced by [NormalizeUser].
type UserProfile struct {
	ID             string `json:"_id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	Description    string `json:"description,omitempty"`
	ArticlesAmount int    `json:"articlesAmount,omitempty"`
	Theme          Theme  `json:"theme,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// DisplayName falls back to the email, then the id.
func (u *UserProfile) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// NormalizeUser decodes data and resolves it to a canonical [UserProfile].
//
// Accepted shapes:
//   - a user object carrying "_id" or "id" (string or number); "_id" wins;
//   - { "status", "message", "data": <user> };
//   - { "data": { "user": <user> } } or { "user": <user> }.
//
// Any other input, including a user whose id is empty, yields [ErrInvalidProfile].
func NormalizeUser(data []byte) (*UserProfile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return NormalizeUserValue(v)
}

// NormalizeUserValue is [NormalizeUser] for an already decoded JSON value.
func NormalizeUserValue(v any) (*UserProfile, error) {
	raw := unwrapUser(v, 0)
	if raw == nil {
		return nil, ErrInvalidProfile
	}

	u := &UserProfile{
		ID:          idOf(raw),
		Name:        stringField(raw, "name"),
		Email:       stringField(raw, "email"),
		AvatarURL:   stringField(raw, "avatarUrl"),
		Description: stringField(raw, "description"),
		CreatedAt:   stringField(raw, "createdAt"),
		UpdatedAt:   stringField(raw, "updatedAt"),
	}
	if t, ok := ParseTheme(stringField(raw, "theme")); ok {
		u.Theme = t
	}
	switch n := raw["articlesAmount"].(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			u.ArticlesAmount = int(i)
		}
	case float64:
		u.ArticlesAmount = int(n)
	}

	return u, nil
}

func unwrapUser(v any, depth int) map[string]any {
	m, ok := v.(map[string]any)
	if !ok || depth > maxUnwrapDepth {
		return nil
	}
	if idOf(m) != "" {
		return m
	}
	for _, key := range []string{"data", "user"} {
		if inner, ok := m[key]; ok {
			if u := unwrapUser(inner, depth+1); u != nil {
				return u
			}
		}
	}
	return nil
}

func idOf(m map[string]any) string {
	for _, key := range []string{"_id", "id"} {
		switch id := m[key].(type) {
		case string:
			if s := strings.TrimSpace(id); s != "" {
				return s
			}
		case json.Number:
			return id.String()
		case float64:
			return fmt.Sprintf("%.0f", id)
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
