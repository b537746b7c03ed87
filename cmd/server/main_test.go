package main

import (
	"strings"
	"testing"
)

func TestRun_ReturnsConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown zone", map[string]string{"TZ_LOCATION": "Mars/Olympus_Mons"}, "TZ_LOCATION"},
		{"missing jwt secret", map[string]string{"TZ_LOCATION": "UTC", "JWT_SECRET": ""}, "JWT_SECRET"},
		{"bad database driver", map[string]string{"TZ_LOCATION": "UTC", "JWT_SECRET": "s", "DB_DRIVER": "oracle"}, "oracle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := run()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}
