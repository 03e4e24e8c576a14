package identity

import (
	"errors"
	"reflect"
	"testing"
)

func TestFriendIDs_Symmetric(t *testing.T) {
	d := NewDirectory(map[string][]string{
		"alice": {"carol", "bob"},
		"dave":  {"alice", "dave"},
	}, nil)

	tests := []struct {
		user string
		want []string
	}{
		{"alice", []string{"bob", "carol", "dave"}},
		{"bob", []string{"alice"}},
		{"dave", []string{"alice"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			if got := d.FriendIDs(tt.user); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FriendIDs(%s) = %v, want %v", tt.user, got, tt.want)
			}
		})
	}
}

func TestFrozen(t *testing.T) {
	d := NewDirectory(nil, []string{"mallory"})

	if !d.IsFrozen("mallory") || d.IsFrozen("alice") {
		t.Error("IsFrozen gave the wrong answer")
	}
	if err := d.CheckCanEdit("mallory"); !errors.Is(err, ErrFrozen) {
		t.Errorf("CheckCanEdit(mallory) = %v, want ErrFrozen", err)
	}
	if err := d.CheckCanEdit("alice"); err != nil {
		t.Errorf("CheckCanEdit(alice) = %v", err)
	}
}

func TestPairs(t *testing.T) {
	d := NewDirectory(map[string][]string{
		"carol": {"alice"},
		"alice": {"bob", "carol"},
	}, nil)

	want := []Pair{{"alice", "bob"}, {"alice", "carol"}}
	if got := d.Pairs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Pairs() = %v, want %v", got, want)
	}
}
