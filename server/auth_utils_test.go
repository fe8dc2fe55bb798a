package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestTokenMaxAge(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { NowTimeFunc = time.Now })

	tests := []struct {
		name string
		tok  *oauth2.Token
		want int
	}{
		{"expires_in number", (&oauth2.Token{Expiry: now.Add(time.Hour)}).WithExtra(map[string]any{"expires_in": float64(3600)}), 3600},
		{"expires_in json number", (&oauth2.Token{}).WithExtra(map[string]any{"expires_in": json.Number("120")}), 120},
		{"expires_in string", (&oauth2.Token{}).WithExtra(map[string]any{"expires_in": "90"}), 90},
		{"expiry only", &oauth2.Token{Expiry: now.Add(3600*time.Second - 300*time.Millisecond)}, 3600},
		{"expired", &oauth2.Token{Expiry: now.Add(-time.Minute)}, 0},
		{"no lifetime", &oauth2.Token{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tokenMaxAge(tt.tok))
		})
	}
}
