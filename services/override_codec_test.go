package services

import (
	"testing"
	"time"
)

func TestDecomposeDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        DescriptionParts
	}{
		{
			"plain body",
			"Examen parcial de álgebra",
			DescriptionParts{Body: "Examen parcial de álgebra"},
		},
		{
			"body with percent",
			"Examen parcial@25",
			DescriptionParts{Body: "Examen parcial", PercentSuffix: "25"},
		},
		{
			"body with percent and token",
			"Examen parcial@25 @@OVERRIDE:3:1714066800000",
			DescriptionParts{Body: "Examen parcial", PercentSuffix: "25", OverrideToken: "@@OVERRIDE:3:1714066800000"},
		},
		{
			"token only",
			"@@OVERRIDE:3:1714066800000",
			DescriptionParts{OverrideToken: "@@OVERRIDE:3:1714066800000"},
		},
		{
			"at-sign that is not a percent",
			"Consultas a prof@escuela.edu",
			DescriptionParts{Body: "Consultas a prof@escuela.edu"},
		},
		{
			"decimal percent",
			"Quiz@12.5",
			DescriptionParts{Body: "Quiz", PercentSuffix: "12.5"},
		},
		{
			"empty description",
			"",
			DescriptionParts{},
		},
		{
			"malformed token stays in body",
			"Tarea @@OVERRIDE:abc:def",
			DescriptionParts{Body: "Tarea @@OVERRIDE:abc:def"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecomposeDescription(tt.description); got != tt.want {
				t.Errorf("DecomposeDescription(%q) = %+v, want %+v", tt.description, got, tt.want)
			}
		})
	}
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	bodies := []string{
		"",
		"Examen parcial",
		"Trabajo práctico: entregar antes del viernes",
		"Consultas a prof@escuela.edu",
		"Nota (ver [rúbrica] adjunta)",
	}
	percents := []string{"", "0", "25", "100", "12.5"}
	tokens := []string{"", "@@OVERRIDE:3:1714066800000", "@@OVERRIDE:99:0"}

	for _, b := range bodies {
		for _, p := range percents {
			for _, tok := range tokens {
				composed := ComposeDescription(b, p, tok)
				got := DecomposeDescription(composed)
				want := DescriptionParts{Body: b, PercentSuffix: p, OverrideToken: tok}
				if got != want {
					t.Errorf("round trip of (%q, %q, %q): composed %q, decomposed %+v", b, p, tok, composed, got)
				}
			}
		}
	}
}

func TestGrantOverrideDescription(t *testing.T) {
	now := time.UnixMilli(1714066800000)

	got := GrantOverrideDescription("Examen parcial@25", 3, now)
	want := "Examen parcial@25 @@OVERRIDE:3:1714066800000"
	if got != want {
		t.Errorf("GrantOverrideDescription = %q, want %q", got, want)
	}

	// Re-granting replaces the old token instead of stacking a second one.
	regranted := GrantOverrideDescription(got, 7, now.Add(time.Hour))
	parts := DecomposeDescription(regranted)
	if parts.Body != "Examen parcial" || parts.PercentSuffix != "25" {
		t.Fatalf("re-grant corrupted body: %+v", parts)
	}
	adminID, grantedAt, ok := ParseOverrideToken(parts.OverrideToken)
	if !ok || adminID != 7 || !grantedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("re-granted token = %q (admin %d at %v, ok=%v)", parts.OverrideToken, adminID, grantedAt, ok)
	}
}

func TestRevokeOverrideDescription(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"Examen parcial@25 @@OVERRIDE:3:1714066800000", "Examen parcial@25"},
		{"Examen parcial @@OVERRIDE:3:1714066800000", "Examen parcial"},
		{"Examen parcial@25", "Examen parcial@25"}, // no token: unchanged
		{"", ""},
	}
	for _, tt := range tests {
		if got := RevokeOverrideDescription(tt.description); got != tt.want {
			t.Errorf("RevokeOverrideDescription(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestParseOverrideToken(t *testing.T) {
	adminID, grantedAt, ok := ParseOverrideToken("@@OVERRIDE:3:1714066800000")
	if !ok || adminID != 3 || grantedAt.UnixMilli() != 1714066800000 {
		t.Errorf("ParseOverrideToken = (%d, %v, %v)", adminID, grantedAt, ok)
	}

	for _, bad := range []string{"", "@@OVERRIDE:", "@@OVERRIDE:x:y", "OVERRIDE:3:1"} {
		if _, _, ok := ParseOverrideToken(bad); ok {
			t.Errorf("ParseOverrideToken(%q) unexpectedly ok", bad)
		}
	}
}
