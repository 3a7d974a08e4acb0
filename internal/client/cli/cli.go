// Package cli implements the petsync command-line interface: account
// lifecycle, one-shot synchronization and the long-running watch mode.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	apiclient "github.com/rtirumala2025/petsync/internal/client/api"
	"github.com/rtirumala2025/petsync/internal/client/auth"
	"github.com/rtirumala2025/petsync/internal/client/iocli"
	"github.com/rtirumala2025/petsync/internal/client/storage/boltdb"
)

// Config wires the Cli to its collaborators.
type Config struct {
	IO          iocli.IO
	APIClient   apiclient.SyncAPI
	AuthService *auth.Service
	Session     *auth.Session
	Store       *boltdb.Storage
	ServerURL   string
	Logger      *slog.Logger
}

// Cli dispatches commands to their handlers.
type Cli struct {
	io          iocli.IO
	apiClient   apiclient.SyncAPI
	authService *auth.Service
	session     *auth.Session
	store       *boltdb.Storage
	serverURL   string
	logger      *slog.Logger
}

// New creates the command dispatcher.
func New(cfg Config) *Cli {
	return &Cli{
		io:          cfg.IO,
		apiClient:   cfg.APIClient,
		authService: cfg.AuthService,
		session:     cfg.Session,
		store:       cfg.Store,
		serverURL:   cfg.ServerURL,
		logger:      cfg.Logger,
	}
}

// Run executes one command and exits the process on failure.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error
	switch command {
	case "register":
		err = c.runRegister(ctx)
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "set":
		err = c.runSet(ctx, args)
	case "sync":
		err = c.runSync(ctx)
	case "watch":
		err = c.runWatch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// PrintUsage prints command-line help.
func PrintUsage() {
	fmt.Println("PetSync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  petsync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version         Show version information")
	fmt.Println("  --server URL      Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH         Path to local database (default: petsync-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register              Register new user")
	fmt.Println("  login                 Login to server")
	fmt.Println("  logout                Logout and revoke the session")
	fmt.Println("  status                Show session and sync status")
	fmt.Println("  set <field> <value>   Change one field of the pet state")
	fmt.Println("  sync                  Synchronize queued changes with server")
	fmt.Println("  watch                 Run continuous sync until interrupted")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  petsync register")
	fmt.Println("  petsync login")
	fmt.Println("  petsync set coins 25")
	fmt.Println("  petsync set name '\"Biscuit\"'")
	fmt.Println("  petsync sync")
	fmt.Println("  petsync --server https://example.com watch")
}

// wsURL derives the websocket subscribe endpoint from the HTTP base URL.
func wsURL(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		serverURL = "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		serverURL = "ws://" + strings.TrimPrefix(serverURL, "http://")
	}
	return serverURL + "/api/v1/sync/subscribe"
}
