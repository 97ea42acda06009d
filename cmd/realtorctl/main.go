package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/realtorspace/realtor-space/internal/adapters/storage"
	"github.com/realtorspace/realtor-space/internal/application/services"
	"github.com/realtorspace/realtor-space/internal/cli"
	"github.com/realtorspace/realtor-space/internal/domain/providers"
	"github.com/realtorspace/realtor-space/internal/infrastructure/clients/realtorapi"
	"github.com/realtorspace/realtor-space/internal/infrastructure/observability"
	"github.com/realtorspace/realtor-space/pkg/config"
)

func main() {
	var verbose bool
	var sessionFile string
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.StringVar(&sessionFile, "session", "", "session file (default $SESSION_FILE or ~/.realtorspace/session.json)")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	observability.InitCLILogger(os.Stderr, verbose)

	if flag.NArg() == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if sessionFile == "" {
		sessionFile = cfg.Session.FilePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := realtorapi.NewClient(cfg.API.BaseURL, realtorapi.WithTimeout(cfg.API.Timeout))
	a := newApp(client, storage.NewFileSessionStorage(sessionFile), os.Stdin, os.Stdout)
	client.SetUnauthorizedHandler(func(ctx context.Context) {
		a.store.Invalidate(ctx, "backend_unauthorized")
	})

	if err := a.run(ctx, flag.Args()); err != nil {
		cli.PrintError(os.Stderr, err)
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// app carries the collaborators shared by every subcommand
type app struct {
	api      providers.BackendAPI
	store    *services.SessionStore
	auth     *services.AuthService
	listings *services.ListingService
	agent    *services.AgentService
	admin    *services.AdminService
	prompt   *cli.Prompter
	out      io.Writer
}

func newApp(api providers.BackendAPI, sessions providers.SessionStorage, in io.Reader, out io.Writer) *app {
	store := services.NewSessionStore(sessions, nil)
	return &app{
		api:      api,
		store:    store,
		auth:     services.NewAuthService(api, store),
		listings: services.NewListingService(api, services.DefaultPageSize),
		agent:    services.NewAgentService(api, api, store),
		admin:    services.NewAdminService(api, store),
		prompt:   cli.NewPrompter(in, out),
		out:      out,
	}
}

type command struct {
	args string
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":           {help: "log in and store the session", run: runLogin},
	"register":        {help: "create an account and log in", run: runRegister},
	"logout":          {help: "log out and clear the stored session", run: runLogout},
	"whoami":          {help: "show the logged-in account", run: runWhoami},
	"listings":        {help: "list properties matching the filter flags", run: runListings},
	"property":        {args: "<id>", help: "show a property", run: runProperty},
	"counties":        {help: "list counties", run: runCounties},
	"sub-counties":    {args: "<county-id>", help: "list the sub-counties of a county", run: runSubCounties},
	"browse":          {help: "browse listings interactively", run: runBrowse},
	"my-properties":   {help: "list your properties (agents)", run: runMyProperties},
	"create-property": {args: "<json-file>", help: "create a property from a JSON file (agents)", run: runCreateProperty},
	"update-property": {args: "<id> <json-file>", help: "update a property from a JSON file (agents)", run: runUpdateProperty},
	"delete-property": {args: "<id>", help: "delete a property (agents)", run: runDeleteProperty},
	"upload-images":   {args: "<id> <files...>", help: "upload images of a property (agents)", run: runUploadImages},
	"pending-agents":  {help: "list agents awaiting approval (admins)", run: runPendingAgents},
	"agents":          {help: "list all agents (admins)", run: runAgents},
	"approve-agent":   {args: "<id>", help: "approve an agent (admins)", run: runApproveAgent},
	"forgot-password": {args: "<email>", help: "request a password reset email", run: runForgotPassword},
	"reset-password":  {args: "<token>", help: "set a new password with a reset token", run: runResetPassword},
}

func (a *app) run(ctx context.Context, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if err := a.store.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable session file")
	}
	return cmd.run(ctx, a, args[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: realtorctl [-v] [-session file] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-34s %s\n", name+" "+cmd.args, cmd.help)
	}
}
