package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/shareplan/internal/backup"
	"github.com/julianstephens/shareplan/internal/config"
	"github.com/julianstephens/shareplan/internal/identity"
	"github.com/julianstephens/shareplan/internal/keyring"
	"github.com/julianstephens/shareplan/internal/logger"
	"github.com/julianstephens/shareplan/internal/models"
	"github.com/julianstephens/shareplan/internal/scheduler"
	"github.com/julianstephens/shareplan/internal/storage"
)

var (
	ErrNotOwner           = errors.New("schedule belongs to another user")
	ErrBackupsUnsupported = errors.New("backups are only supported for SQLite storage")
)

type Context struct {
	Store     storage.Provider
	Manager   *scheduler.Manager
	Directory *identity.Directory
	Config    *config.Config

	Out io.Writer
	In  io.Reader
	Now func() time.Time
}

// NewContext wires a fresh manager and the friend directory from cfg.
func NewContext(store storage.Provider, cfg *config.Config) *Context {
	return &Context{
		Store:     store,
		Manager:   scheduler.NewManager(scheduler.NewTemplates(), nil),
		Directory: identity.NewDirectory(cfg.Friends, cfg.Frozen),
		Config:    cfg,
		Out:       os.Stdout,
		In:        os.Stdin,
		Now:       time.Now,
	}
}

// OpenStore picks a backend from the storage setting: a PostgreSQL URL, a
// .json file, or a SQLite file.
func OpenStore(storagePath string) (storage.Provider, error) {
	switch {
	case config.IsPostgres(storagePath):
		if storage.HasEmbeddedCredentials(storagePath) {
			return nil, fmt.Errorf("%w: store the full connection string with 'shareplan keyring set' or in %s",
				storage.ErrEmbeddedCredentials, "SHAREPLAN_DB_CONNECTION")
		}
		if err := storage.ValidateConnString(storagePath); err != nil {
			return nil, err
		}
		connStr, source := keyring.ResolveConnectionString(storagePath)
		logger.Debug("Using PostgreSQL storage", "source", source)
		return storage.NewPostgresStore(connStr), nil
	case strings.HasSuffix(storagePath, ".json"):
		return storage.NewJSONStore(storagePath), nil
	default:
		return storage.NewSQLiteStore(storagePath), nil
	}
}

// LoadState replaces the in-memory manager with the stored snapshot.
func (c *Context) LoadState() error {
	snap, err := c.Store.ReadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to read schedules: %w", err)
	}
	storage.Restore(snap, c.Manager)
	return nil
}

// SaveState writes the whole manager back to the store.
func (c *Context) SaveState() error {
	if err := c.Store.WriteSnapshot(storage.Capture(c.Manager)); err != nil {
		return fmt.Errorf("failed to save schedules: %w", err)
	}
	return nil
}

// CheckOwner fails unless user may edit and owns the schedule.
func (c *Context) CheckOwner(user, scheduleID string) (*models.Schedule, error) {
	if err := c.Directory.CheckCanEdit(user); err != nil {
		return nil, err
	}
	s, err := c.Manager.Get(scheduleID)
	if err != nil {
		return nil, err
	}
	if !c.Manager.BelongsTo(user, scheduleID) {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrNotOwner, scheduleID, s.Owner)
	}
	return s, nil
}

// CanView reports whether user may read s. An empty user reads everything.
func (c *Context) CanView(user string, s *models.Schedule) bool {
	if user == "" || s.Owner == user || s.Status == models.StatusPublic {
		return true
	}
	for _, shared := range c.Manager.ListFriendShared(user) {
		if shared == s {
			return true
		}
	}
	return false
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on In. Anything but y or yes is a no.
func (c *Context) Confirm(prompt string) bool {
	c.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// BackupManager returns the backup manager for the SQLite database in use.
func (c *Context) BackupManager() (*backup.Manager, error) {
	st, ok := c.Store.(*storage.SQLStore)
	if !ok || !st.IsSQLite() {
		return nil, ErrBackupsUnsupported
	}
	return backup.NewManager(st.GetConfigPath()), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FormatInterval renders an interval in the instant layout.
func FormatInterval(iv models.Interval) string {
	return iv.Start.Format(instantLayout) + " - " + iv.End.Format(instantLayout)
}

const instantLayout = "2006 01 02 15:04"
