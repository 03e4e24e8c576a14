package system

import (
	"sort"

	"github.com/julianstephens/shareplan/internal/cli"
)

// FriendSyncCmd makes the friend views match the configured friend graph:
// friends gain each other's friend-only schedules, and users who are no
// longer friends lose them.
type FriendSyncCmd struct{}

func (c *FriendSyncCmd) Run(ctx *cli.Context) error {
	m := ctx.Manager

	added := 0
	for _, p := range ctx.Directory.Pairs() {
		added += m.ShareOwnerFriendOnly(p.A, p.B)
		added += m.ShareOwnerFriendOnly(p.B, p.A)
	}

	removed := 0
	for _, viewer := range viewers(ctx) {
		friends := make(map[string]bool)
		for _, f := range ctx.Directory.FriendIDs(viewer) {
			friends[f] = true
		}
		owners := make(map[string]bool)
		for _, s := range m.ListFriendShared(viewer) {
			owners[s.Owner] = true
		}
		for owner := range owners {
			if !friends[owner] {
				removed += m.Unshare(viewer, owner)
			}
		}
	}

	if err := ctx.SaveState(); err != nil {
		return err
	}
	ctx.Printf("✓ Friend views synced: %d share(s) added, %d removed\n", added, removed)
	return nil
}

func viewers(ctx *cli.Context) []string {
	out := make([]string, 0, len(ctx.Manager.FriendVisible()))
	for viewer := range ctx.Manager.FriendVisible() {
		out = append(out, viewer)
	}
	sort.Strings(out)
	return out
}

type FriendListCmd struct {
	User string `arg:"" help:"User whose friends to list."`
}

func (c *FriendListCmd) Run(ctx *cli.Context) error {
	friends := ctx.Directory.FriendIDs(c.User)
	if len(friends) == 0 {
		ctx.Printf("%s has no friends configured.\n", c.User)
		return nil
	}
	for _, f := range friends {
		ctx.Println(f)
	}
	return nil
}
