package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var tokenParser = jwt.NewParser()

// DecodeClaims returns the payload of a JWT without verifying its signature.
// The backend re-validates the token on every call; the gateway only reads
// claims to route the session.
func DecodeClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := tokenParser.ParseUnverified(token, claims); err != nil {
		if !errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of token.
func TokenExpiry(token string) (time.Time, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	return claimsExpiry(claims)
}

func claimsExpiry(claims jwt.MapClaims) (time.Time, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}
	return exp.Time, nil
}

// TokenValid reports whether token decodes and expires strictly after now.
// It never panics; malformed tokens are simply invalid.
func TokenValid(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return false
	}
	return exp.After(now)
}

// CollectRoles gathers realm roles followed by client roles, de-duplicated
// case-insensitively with the first spelling kept. Clients are visited in
// name order so the result is deterministic.
func CollectRoles(claims jwt.MapClaims) []string {
	var roles []string
	seen := make(map[string]bool)
	add := func(values []string) {
		for _, r := range values {
			key := strings.ToUpper(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			roles = append(roles, r)
		}
	}

	if realm, ok := claims["realm_access"].(map[string]any); ok {
		add(stringSlice(realm["roles"]))
	}

	if resources, ok := claims["resource_access"].(map[string]any); ok {
		clients := make([]string, 0, len(resources))
		for name := range resources {
			clients = append(clients, name)
		}
		sort.Strings(clients)
		for _, name := range clients {
			if client, ok := resources[name].(map[string]any); ok {
				add(stringSlice(client["roles"]))
			}
		}
	}
	return roles
}

var (
	countyCodes   = stringSet("CTA", "CTB", "CTC")
	countyPathExp = regexp.MustCompile(`^.*/(CTA|CTB|CTC).*$`)
)

// CountyFromClaims extracts the county code from group membership, falling
// back to county-like attributes. Returns "" when none is present.
func CountyFromClaims(claims jwt.MapClaims) string {
	if c := countyFromGroups(stringSlice(claims["groups"])); c != "" {
		return c
	}
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		if c := countyFromGroups(stringSlice(realm["groups"])); c != "" {
			return c
		}
	}

	for _, key := range []string{"county", "location", "userCounty"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return strings.ToUpper(v)
		}
	}
	if attrs, ok := claims["attributes"].(map[string]any); ok {
		for _, key := range []string{"county", "location"} {
			if vals := stringSlice(attrs[key]); len(vals) > 0 && vals[0] != "" {
				return strings.ToUpper(vals[0])
			}
		}
	}
	return ""
}

func countyFromGroups(groups []string) string {
	for _, g := range groups {
		upper := strings.ToUpper(g)
		if !countyCodes[upper] && !strings.Contains(g, "/CTA") && !strings.Contains(g, "/CTB") && !strings.Contains(g, "/CTC") {
			continue
		}
		county := countyPathExp.ReplaceAllString(upper, "$1")
		if countyCodes[county] {
			return county
		}
		return ""
	}
	return ""
}

// UserFromToken builds the session principal from an access token.
// fallbackUsername is used when the token has no preferred_username.
func UserFromToken(token, fallbackUsername string) (*User, error) {
	claims, err := DecodeClaims(token)
	if err != nil {
		return nil, err
	}
	exp, err := claimsExpiry(claims)
	if err != nil {
		return nil, err
	}

	roles := CollectRoles(claims)
	username, _ := claims["preferred_username"].(string)
	if username == "" {
		username = fallbackUsername
	}
	sub, _ := claims["sub"].(string)

	return &User{
		Username:    username,
		Roles:       roles,
		Role:        DashboardForRoles(roles),
		UserID:      sub,
		County:      CountyFromClaims(claims),
		TokenExpiry: exp.UTC(),
	}, nil
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
