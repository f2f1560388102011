package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/fieldcredit/backend/internal/infrastructure/auth"
	"github.com/fieldcredit/backend/internal/infrastructure/config"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/migration"
	"github.com/fieldcredit/backend/migrations"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// env is what every command may need. The migrator is only opened for
// commands that touch the database.
type env struct {
	log    *zap.Logger
	cfg    *config.Config
	dir    string
	source fs.FS
	args   []string
	m      *migration.Migrator
}

type command struct {
	usage   string
	needsDB bool
	run     func(e *env) error
}

var commands = map[string]command{
	"up":      {usage: "up                    Apply all pending migrations", needsDB: true, run: runUp},
	"down":    {usage: "down                  Roll back all migrations", needsDB: true, run: runDown},
	"step":    {usage: "step <n>              Apply n migrations (negative rolls back)", needsDB: true, run: runStep},
	"version": {usage: "version               Show the applied schema version", needsDB: true, run: runVersion},
	"force":   {usage: "force <version>       Mark a version as applied after a failed run", needsDB: true, run: runForce},
	"create":  {usage: "create <name> [desc]  Write a new up/down file pair", run: runCreate},
	"list":    {usage: "list                  List the known migrations", run: runList},
	"token":   {usage: "token -user <id>      Issue a bearer token signed with jwt.secret", run: runToken},
}

var commandOrder = []string{"up", "down", "step", "version", "force", "create", "list", "token"}

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	e := &env{log: log, cfg: cfg, dir: migrationsPath, source: migrations.FS, args: args[1:]}
	if migrationsPath != "" {
		e.source = os.DirFS(migrationsPath)
	}

	if cmd.needsDB {
		db, m, err := openMigrator(e)
		if err != nil {
			log.Fatal("Failed to open migrator", zap.Error(err))
		}
		defer db.Close()
		defer m.Close()
		e.m = m
	}

	if err := cmd.run(e); err != nil {
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func openMigrator(e *env) (*sql.DB, *migration.Migrator, error) {
	db, err := sql.Open("postgres", e.cfg.Database.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s:%d: %w", e.cfg.Database.Host, e.cfg.Database.Port, err)
	}

	var m *migration.Migrator
	if e.dir != "" {
		m, err = migration.NewFromDir(db, e.dir, e.log)
	} else {
		m, err = migration.NewFromFS(db, e.source, e.log)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, m, nil
}

func runUp(e *env) error   { return e.m.Up() }
func runDown(e *env) error { return e.m.Down() }

func runStep(e *env) error {
	n, err := intArg(e.args, "step count")
	if err != nil {
		return err
	}
	return e.m.Steps(n)
}

func runVersion(e *env) error {
	version, dirty, err := e.m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		e.log.Info("No migrations applied")
		return nil
	}
	e.log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runForce(e *env) error {
	version, err := intArg(e.args, "version")
	if err != nil {
		return err
	}
	e.log.Warn("Forcing schema version", zap.Int("version", version))
	return e.m.Force(version)
}

func runCreate(e *env) error {
	if len(e.args) == 0 {
		return fmt.Errorf("migration name required")
	}
	dir := e.dir
	if dir == "" {
		dir = "migrations"
	}
	description := ""
	if len(e.args) > 1 {
		description = e.args[1]
	}
	mf, err := migration.CreateMigration(dir, e.args[0], description)
	if err != nil {
		return err
	}
	e.log.Info("Migration created",
		zap.Uint("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(e *env) error {
	list, err := migration.ListMigrations(e.source)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		e.log.Info("No migrations found")
		return nil
	}
	for _, m := range list {
		down := ""
		if !m.HasDown {
			down = " (no down)"
		}
		fmt.Printf("  %06d %s%s\n", m.Version, m.Name, down)
	}
	return nil
}

// runToken mints a bearer token for local testing and operator scripts
func runToken(e *env) error {
	fset := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fset.String("user", "", "User id the token authenticates")
	role := fset.String("role", "operator", "Role claim")
	ttl := fset.Duration("ttl", 24*time.Hour, "Token lifetime")
	if err := fset.Parse(e.args); err != nil {
		return err
	}

	userID, err := uuid.Parse(*user)
	if err != nil {
		return fmt.Errorf("a valid -user id is required: %w", err)
	}
	token, err := auth.NewJWTService(e.cfg.JWT).IssueToken(userID, *role, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func intArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "fieldcredit schema migration tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range commandOrder {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, `
Flags:
  -path string          Migrations directory (default: migrations built into the binary)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment:
  FIELDCREDIT_DATABASE_HOST, FIELDCREDIT_DATABASE_PORT, FIELDCREDIT_DATABASE_USER,
  FIELDCREDIT_DATABASE_PASSWORD, FIELDCREDIT_DATABASE_DBNAME, FIELDCREDIT_JWT_SECRET

Examples:
  migrate up
  migrate step -1
  migrate create add_route_limits "Per-route credit limits"
  migrate token -user 6f1c0a7e-2b1d-4d8e-9b7a-1f3c5e7d9a01 -ttl 8h`)
}
