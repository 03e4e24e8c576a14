package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestNeedsState(t *testing.T) {
	parser, err := kong.New(&CLI, kong.Vars{"version": "test", "config_path": "config.yaml"})
	if err != nil {
		t.Fatalf("kong.New() error = %v", err)
	}

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"init"}, false},
		{[]string{"keyring", "status"}, false},
		{[]string{"keyring", "set", "postgres://alice@localhost/shareplan"}, false},
		{[]string{"friend", "list", "alice"}, false},
		{[]string{"friend", "sync"}, true},
		{[]string{"template", "list"}, true},
		{[]string{"schedule", "show", "abc"}, true},
		{[]string{"event", "add", "abc", "Standup", "09:00", "09:30", "--user", "alice"}, true},
		{[]string{"edit", "--user", "alice"}, true},
		{[]string{"doctor"}, false},
		{[]string{"validate"}, true},
		{[]string{"inspect", "storage-path"}, false},
		{[]string{"inspect", "dump-schedule", "abc"}, true},
	}
	for _, tt := range tests {
		kctx, err := parser.Parse(tt.args)
		if err != nil {
			t.Fatalf("Parse(%v) error = %v", tt.args, err)
		}
		if got := needsState(kctx.Selected()); got != tt.want {
			t.Errorf("needsState(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
