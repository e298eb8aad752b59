package utils

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: "30s", want: 30 * time.Second},
		{name: "bare number is seconds", input: "90", want: 90 * time.Second},
		{name: "minutes", input: "10m", want: 10 * time.Minute},
		{name: "hours and minutes", input: "2h30m", want: 2*time.Hour + 30*time.Minute},
		{name: "long units", input: "3 days", want: 72 * time.Hour},
		{name: "spelled out", input: "1 hour and 30 minutes", want: 90 * time.Minute},
		{name: "weeks", input: "2w", want: 14 * 24 * time.Hour},
		{name: "not a duration", input: "abc", wantErr: true},
		{name: "unit only", input: "h", wantErr: true},
		{name: "unknown unit", input: "5y", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0s", wantErr: true},
		{name: "trailing garbage", input: "30s!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
