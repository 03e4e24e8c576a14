package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/config"
	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing database file before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized shareplan storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
		return nil
	}

	if err := ctx.LoadState(); err != nil {
		return err
	}
	templates := ctx.Manager.Templates()
	if templates.NextID() == constants.FirstTemplateID {
		templates.SeedDefaults()
		if err := ctx.SaveState(); err != nil {
			return err
		}
		for _, tmpl := range templates.List() {
			ctx.Printf("  Created template %d (%s)\n", tmpl.ID, tmpl.Type)
		}
	}
	return nil
}

// reset removes a file-backed store. PostgreSQL databases are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Store.GetConfigPath() == "postgresql" {
		return fmt.Errorf("--force is not supported for PostgreSQL storage")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}
	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context, sourcePath string) error {
	source, err := cli.OpenStore(config.ExpandPath(sourcePath))
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	snap, err := source.ReadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to read source data: %w", err)
	}
	if err := ctx.Store.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("failed to write destination data: %w", err)
	}
	ctx.Printf("    Copied %d templates and %d schedules\n", len(snap.Templates), countSchedules(snap))
	return nil
}

func countSchedules(snap storage.Snapshot) int {
	n := 0
	for _, list := range snap.SchedulesByOwner {
		n += len(list)
	}
	return n
}
