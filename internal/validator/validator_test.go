package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type sample struct {
	Priority string `binding:"omitempty,priority"`
	Status   string `binding:"omitempty,task_status"`
	Theme    string `binding:"omitempty,theme"`
	Due      string `binding:"omitempty,calendar_date"`
	Month    string `binding:"omitempty,month"`
	Username string `binding:"omitempty,username"`
}

func TestRegister(t *testing.T) {
	Register()

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"all_valid", sample{Priority: "high", Status: "Completed", Theme: "dark", Due: "2025-06-01", Month: "2025-06", Username: "alice"}, false},
		{"empty_is_ok", sample{}, false},
		{"bad_priority", sample{Priority: "urgent"}, true},
		{"status_is_case_sensitive", sample{Status: "completed"}, true},
		{"bad_theme", sample{Theme: "solarized"}, true},
		{"bad_date", sample{Due: "01/06/2025"}, true},
		{"bad_month", sample{Month: "2025-13"}, true},
		{"short_username", sample{Username: "al"}, true},
		{"username_with_space", sample{Username: "al ice"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.in)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}
