package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/storage"
	"github.com/julianstephens/shareplan/internal/validation"
)

var errChecksFailed = errors.New("one or more health checks failed")

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	fail := func(name string, err error) {
		ctx.Printf("❌ %s: FAIL\n", name)
		ctx.Printf("   Error: %v\n", err)
		hasError = true
	}

	dbReachable := false
	if err := checkStoreReachable(ctx); err != nil {
		fail("Storage reachable", err)
	} else {
		ctx.Println("✓ Storage reachable: OK")
		dbReachable = true
	}

	if dbReachable {
		if err := checkSchema(ctx); err != nil {
			fail("Schema version", err)
		} else {
			ctx.Println("✓ Schema version: OK")
		}
	} else {
		ctx.Println("⊘ Schema version: SKIPPED (storage not reachable)")
	}

	if err := checkBackupsPresent(ctx); err != nil {
		ctx.Println("⚠ Backups present: WARNING")
		ctx.Printf("   %v\n", err)
	} else {
		ctx.Println("✓ Backups present: OK")
	}

	if dbReachable {
		if err := checkData(ctx); err != nil {
			fail("Data validation", err)
		} else {
			ctx.Println("✓ Data validation: OK")
		}
	} else {
		ctx.Println("⊘ Data validation: SKIPPED (storage not reachable)")
	}

	if err := checkClock(ctx.Now()); err != nil {
		fail("Clock", err)
	} else {
		ctx.Println("✓ Clock: OK")
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errChecksFailed
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if st, ok := ctx.Store.(*storage.SQLStore); ok {
		return st.Ping()
	}
	return nil
}

// checkSchema fails when migrations are missing or the database was written
// by a newer build. JSON files carry no schema version.
func checkSchema(ctx *cli.Context) error {
	st, ok := ctx.Store.(*storage.SQLStore)
	if !ok {
		return nil
	}
	current, latest, err := st.SchemaVersions()
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkData(ctx *cli.Context) error {
	if err := ctx.LoadState(); err != nil {
		return err
	}
	result := validation.New().Validate(ctx.Manager, ctx.Directory)
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found, run '%s validate' for details", len(result.Conflicts), constants.AppName)
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// ValidateCmd reports stored events and shares that no longer satisfy the
// current templates and friend graph.
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	ctx.Println("Validating schedules...")
	result := validation.New().Validate(ctx.Manager, ctx.Directory)
	ctx.Println()
	ctx.Println(result.FormatReport())
	return nil
}
