// Package identity answers who is friends with whom and who is frozen.
package identity

import (
	"errors"
	"fmt"
	"sort"
)

var ErrFrozen = errors.New("account is frozen")

// Directory is an immutable view of the configured friend graph.
type Directory struct {
	friends map[string]map[string]struct{}
	frozen  map[string]struct{}
}

// NewDirectory builds a directory from a user-to-friends map. Each listed
// pair is made symmetric.
func NewDirectory(friends map[string][]string, frozen []string) *Directory {
	d := &Directory{
		friends: make(map[string]map[string]struct{}),
		frozen:  make(map[string]struct{}, len(frozen)),
	}
	for user, list := range friends {
		for _, f := range list {
			if f == user {
				continue
			}
			d.link(user, f)
			d.link(f, user)
		}
	}
	for _, u := range frozen {
		d.frozen[u] = struct{}{}
	}
	return d
}

func (d *Directory) link(a, b string) {
	if d.friends[a] == nil {
		d.friends[a] = make(map[string]struct{})
	}
	d.friends[a][b] = struct{}{}
}

// FriendIDs returns userID's friends in lexical order.
func (d *Directory) FriendIDs(userID string) []string {
	out := make([]string, 0, len(d.friends[userID]))
	for f := range d.friends[userID] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (d *Directory) IsFrozen(userID string) bool {
	_, ok := d.frozen[userID]
	return ok
}

// CheckCanEdit returns ErrFrozen for frozen users.
func (d *Directory) CheckCanEdit(userID string) error {
	if d.IsFrozen(userID) {
		return fmt.Errorf("%w: %s", ErrFrozen, userID)
	}
	return nil
}

// Pair is one friendship, with A < B.
type Pair struct {
	A, B string
}

// Pairs lists every friendship once, sorted.
func (d *Directory) Pairs() []Pair {
	var out []Pair
	for a, set := range d.friends {
		for b := range set {
			if a < b {
				out = append(out, Pair{A: a, B: b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
