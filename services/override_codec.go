package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The unlock override used to live inside the evaluation description as a
// trailing token, optionally preceded by a @<percent> grade-weight suffix:
//
//	"Examen parcial@25 @@OVERRIDE:3:1714066800000"
//
// New grants go to the typed columns on the evaluations table; this codec
// keeps legacy descriptions readable and guarantees that edits to the
// human-authored body never corrupt a token that is still embedded.

const overrideTokenPrefix = "@@OVERRIDE:"

var overrideTokenPattern = regexp.MustCompile(`\s*(@@OVERRIDE:(\d+):(\d+))\s*$`)

// DescriptionParts is the result of splitting an evaluation description into
// its human-authored body and the two optional encoded suffixes.
type DescriptionParts struct {
	Body          string
	PercentSuffix string // numeric text after the last "@", "" when absent
	OverrideToken string // full "@@OVERRIDE:..." token, "" when absent
}

// DecomposeDescription splits a description into body, grade-weight suffix
// and override token. The token is matched first as a suffix; the percent is
// recognized only on the remaining text, as the last @-delimited segment when
// it parses as a number.
func DecomposeDescription(description string) DescriptionParts {
	parts := DescriptionParts{Body: description}

	if m := overrideTokenPattern.FindStringSubmatchIndex(description); m != nil {
		parts.OverrideToken = description[m[2]:m[3]]
		parts.Body = description[:m[0]]
	}

	if idx := strings.LastIndex(parts.Body, "@"); idx >= 0 {
		suffix := parts.Body[idx+1:]
		if _, err := strconv.ParseFloat(suffix, 64); err == nil && suffix != "" {
			parts.PercentSuffix = suffix
			parts.Body = parts.Body[:idx]
		}
	}

	return parts
}

// ComposeDescription is the inverse of DecomposeDescription: body and percent
// joined by "@", then the override token separated by whitespace.
func ComposeDescription(body, percentSuffix, overrideToken string) string {
	s := body
	if percentSuffix != "" {
		s += "@" + percentSuffix
	}
	if overrideToken != "" {
		if s != "" {
			s += " "
		}
		s += overrideToken
	}
	return s
}

// FormatOverrideToken mints a token recording who granted the override and when.
func FormatOverrideToken(adminID int, grantedAt time.Time) string {
	return fmt.Sprintf("%s%d:%d", overrideTokenPrefix, adminID, grantedAt.UnixMilli())
}

// ParseOverrideToken extracts the granting admin and grant instant from a
// token produced by FormatOverrideToken.
func ParseOverrideToken(token string) (adminID int, grantedAt time.Time, ok bool) {
	m := overrideTokenPattern.FindStringSubmatch(token)
	if m == nil || m[1] != token {
		return 0, time.Time{}, false
	}
	adminID, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, time.Time{}, false
	}
	millis, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return 0, time.Time{}, false
	}
	return adminID, time.UnixMilli(millis), true
}

// GrantOverrideDescription discards any pre-existing token and appends a
// freshly minted one. Re-granting simply re-stamps.
func GrantOverrideDescription(description string, adminID int, now time.Time) string {
	parts := DecomposeDescription(description)
	return ComposeDescription(parts.Body, parts.PercentSuffix, FormatOverrideToken(adminID, now))
}

// RevokeOverrideDescription drops the token, keeping body and grade-weight
// suffix intact. Revoking an untokened description returns it unchanged.
func RevokeOverrideDescription(description string) string {
	parts := DecomposeDescription(description)
	return ComposeDescription(parts.Body, parts.PercentSuffix, "")
}

// HasLegacyOverrideToken reports whether a description still carries an
// embedded token that has not been migrated to the typed columns.
func HasLegacyOverrideToken(description string) bool {
	return DecomposeDescription(description).OverrideToken != ""
}
