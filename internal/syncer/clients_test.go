package syncer

import (
	"testing"
	"time"
)

func TestParseSignInLayouts(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "rfc3339", value: "2024-03-01T09:30:00Z", want: "2024-03-01T09:30:00Z"},
		{name: "rfc3339 offset", value: "2024-03-01T09:30:00+02:00", want: "2024-03-01T07:30:00Z"},
		{name: "sql datetime", value: "2023-05-01 10:00:00", want: "2023-05-01T10:00:00Z"},
		{name: "rails utc", value: "2023-05-01 10:00:00 UTC", want: "2023-05-01T10:00:00Z"},
		{name: "numeric zone", value: "2023-05-01 10:00:00 +0200", want: "2023-05-01T08:00:00Z"},
		{name: "numeric zone colon", value: "2023-05-01 10:00:00 -05:00", want: "2023-05-01T15:00:00Z"},
		{name: "date only", value: "2023-05-01", want: "2023-05-01T00:00:00Z"},
		{name: "long month", value: "May 1, 2023 10:00", want: "2023-05-01T10:00:00Z"},
		{name: "rfc1123z", value: "Mon, 01 May 2023 10:00:00 +0000", want: "2023-05-01T10:00:00Z"},
		{name: "relative", value: "yesterday", want: "2026-10-18T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSignIn(tt.value, now)
			if got == nil {
				t.Fatalf("parseSignIn(%q) returned nil", tt.value)
			}
			if got.Format(time.RFC3339) != tt.want {
				t.Fatalf("parseSignIn(%q) = %s, want %s", tt.value, got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func TestParseSignInRejectsPartialMatches(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	for _, value := range []string{"", "   ", "not a date", "2023-05-01 10:00:00 somewhere", "last seen yesterday evening maybe"} {
		if got := parseSignIn(value, now); got != nil {
			t.Fatalf("parseSignIn(%q) = %s, want nil", value, got.Format(time.RFC3339))
		}
	}
}
