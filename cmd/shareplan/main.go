package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/shareplan/internal/cli"
	"github.com/julianstephens/shareplan/internal/cli/backups"
	"github.com/julianstephens/shareplan/internal/cli/events"
	"github.com/julianstephens/shareplan/internal/cli/schedules"
	"github.com/julianstephens/shareplan/internal/cli/system"
	"github.com/julianstephens/shareplan/internal/cli/templates"
	"github.com/julianstephens/shareplan/internal/config"
	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/errors"
	"github.com/julianstephens/shareplan/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." default:"${config_path}"`
	Storage string `help:"Override the configured storage: a SQLite path, a .json path, or a PostgreSQL connection string without a password."`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd `cmd:"" help:"Initialize shareplan storage and seed the default templates."`
	Template struct {
		List   templates.TemplateListCmd   `cmd:"" help:"List templates." default:"1"`
		Create templates.TemplateCreateCmd `cmd:"" help:"Create a template."`
		Edit   templates.TemplateEditCmd   `cmd:"" help:"Edit a template's event policy."`
		Delete templates.TemplateDeleteCmd `cmd:"" help:"Delete a template."`
	} `cmd:"" help:"Manage schedule templates."`
	Schedule struct {
		Create schedules.ScheduleCreateCmd `cmd:"" help:"Create a schedule from a template."`
		List   schedules.ScheduleListCmd   `cmd:"" help:"List schedules." default:"1"`
		Show   schedules.ScheduleShowCmd   `cmd:"" help:"Show a schedule and its events."`
		Status schedules.ScheduleStatusCmd `cmd:"" help:"Change a schedule's visibility."`
		Delete schedules.ScheduleDeleteCmd `cmd:"" help:"Delete a schedule."`
		Share  schedules.ScheduleShareCmd  `cmd:"" help:"Share a friend-only schedule with the owner's friends."`
		Export schedules.ScheduleExportCmd `cmd:"" help:"Export a schedule as iCalendar."`
	} `cmd:"" help:"Manage schedules."`
	Event struct {
		Add    events.EventAddCmd    `cmd:"" help:"Add an event to a schedule."`
		Delete events.EventDeleteCmd `cmd:"" help:"Delete an event interval."`
	} `cmd:"" help:"Manage schedule events."`
	Friend struct {
		Sync system.FriendSyncCmd `cmd:"" help:"Update shared views to match the configured friends."`
		List system.FriendListCmd `cmd:"" help:"List a user's friends."`
	} `cmd:"" help:"Manage friend sharing."`
	Edit   system.EditCmd `cmd:"" help:"Open an interactive edit session with undo."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored schedules against their templates and friends."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks on storage and data."`
	Inspect  struct {
		StoragePath  system.InspectStoragePathCmd  `cmd:"" help:"Show storage path."`
		DumpSchedule system.InspectDumpScheduleCmd `cmd:"" help:"Dump schedule data as JSON."`
	} `cmd:"" help:"Inspect stored data for troubleshooting."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage PostgreSQL credentials in the OS keyring."`
}

// needsState reports whether the selected command works on stored
// schedules; the rest run before or without initialized storage.
func needsState(node *kong.Node) bool {
	if node == nil {
		return true
	}
	parent := ""
	if node.Parent != nil {
		parent = node.Parent.Name
	}
	switch {
	case node.Name == "init", node.Name == "doctor", parent == "keyring":
		return false
	case parent == "friend" && node.Name == "list",
		parent == "inspect" && node.Name == "storage-path":
		return false
	}
	return true
}

func main() {
	config.LoadEnv()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Shared calendar schedules with templates, friend sharing, and undo"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	configPath := config.ExpandPath(CLI.Config)
	cfg, err := config.Load(configPath)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Storage != "" {
		cfg.Storage = CLI.Storage
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		LogDir:    config.ExpandPath(cfg.LogDir),
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "config", configPath)

	store, err := cli.OpenStore(cfg.StoragePath())
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := cli.NewContext(store, cfg)

	if needsState(ctx.Selected()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
		if err := appCtx.LoadState(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
