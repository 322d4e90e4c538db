// Package token mints session tokens and builds the attendee registration link.
package token

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Mint returns the token identifying one session-creation event. The token
// pairs the course code with the creation instant in milliseconds, so it stays
// human-traceable when debugging a session. Two sessions minted for the same
// course in the same millisecond collide; that is an accepted non-goal.
func Mint(courseCode string, at time.Time) string {
	return fmt.Sprintf("%s-%d", strings.TrimSpace(courseCode), at.UnixMilli())
}

// RegistrationLink builds the attendee-facing URL that gets rendered into a
// QR code. The session id is the primary lookup key; the token, course code
// and venue coordinates are redundant fields kept for older clients.
func RegistrationLink(baseURL, sessionID, sessionToken, courseCode string, lat, lng float64) string {
	query := url.Values{}
	query.Set("sessionId", sessionID)
	query.Set("sessionToken", sessionToken)
	query.Set("courseCode", courseCode)
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	return strings.TrimRight(baseURL, "/") + "/attendance?" + query.Encode()
}
