package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"qrkot/internal/domain"
	"qrkot/internal/infra"
	"qrkot/internal/middleware"
	"qrkot/internal/service"
	"qrkot/internal/storage"
)

var commands = []subcommands.Command{
	&migrateCmd{},
	&tokenCmd{},
	&projectsCmd{},
}

func openBackend(ctx context.Context, migrate bool) (*infra.Config, *storage.Backend, zerolog.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	logger := infra.NewLogger(cfg)
	backend, err := storage.Open(ctx, cfg, logger, migrate)
	if err != nil {
		return nil, nil, logger, err
	}
	return cfg, backend, logger, nil
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending schema migrations" }
func (*migrateCmd) Usage() string {
	return `qrkotctl migrate

  Applies the embedded migrations for the database named by DATABASE_URL
  and prints the resulting schema version.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, backend, _, err := openBackend(ctx, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer backend.Close()

	applied, err := backend.Migrate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	version, err := backend.SchemaVersion(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: applied %d migration(s), schema version %d\n", backend.Driver, applied, version)
	return subcommands.ExitSuccess
}

type tokenCmd struct {
	user      string
	superuser bool
	locale    string
	ttl       time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a bearer token for a user" }
func (*tokenCmd) Usage() string {
	return `qrkotctl token [-user <id>] [-superuser] [-locale en|ru] [-ttl 24h]

  Signs an access token with JWT_SECRET. Without -user the token is issued
  for FIRST_SUPERUSER_ID.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "user id placed in the sub claim")
	f.BoolVar(&c.superuser, "superuser", false, "grant superuser rights")
	f.StringVar(&c.locale, "locale", "", "preferred message locale")
	f.DurationVar(&c.ttl, "ttl", 24*time.Hour, "token lifetime")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	user := strings.TrimSpace(c.user)
	superuser := c.superuser
	if user == "" {
		user = cfg.FirstSuperuserID
		superuser = true
	}
	if user == "" {
		fmt.Fprintln(os.Stderr, "-user is required when FIRST_SUPERUSER_ID is not set")
		return subcommands.ExitUsageError
	}
	token, err := middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer).Sign(user, superuser, c.locale, c.ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}

type projectsCmd struct {
	open bool
}

func (*projectsCmd) Name() string     { return "projects" }
func (*projectsCmd) Synopsis() string { return "list charity projects and their remaining need" }
func (*projectsCmd) Usage() string {
	return `qrkotctl projects [-open]

  Prints every project, oldest first, with how much it still needs.
`
}

func (c *projectsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.open, "open", false, "only show projects still collecting")
}

func (c *projectsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, backend, logger, err := openBackend(ctx, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer backend.Close()

	projects, err := service.New(backend.Store, logger).ListProjects(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printProjects(os.Stdout, projects, c.open)
	return subcommands.ExitSuccess
}

func printProjects(out io.Writer, projects []domain.Project, onlyOpen bool) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFULL\tINVESTED\tREMAINING\tCLOSED")
	for _, p := range projects {
		if onlyOpen && p.Closed {
			continue
		}
		closed := "-"
		if p.ClosedAt != nil {
			closed = p.ClosedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", p.ID, p.Name, p.Amount, p.AllocatedAmount, p.Remaining(), closed)
	}
	_ = w.Flush()
}
