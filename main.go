// Command remote-controller starts the remote controller server.
//
// It supports these commands:
//  1. "serve" (default) – runs the HTTP server with the browser controller, WebSocket sessions and REST endpoints
//  2. "mcp" – runs the same server plus an MCP stdio server reading its state
//  3. "profiles" – lists the controller profiles in the config directory
//  4. "validate" – validates controller profile files
//
// Flags control host/port, the config directory and profile, session timing,
// debug logging, and optional ngrok tunneling so phones outside the LAN can
// connect during development. Every flag can also be set from the
// environment or a .env file.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/remote-controller/controller"
	"github.com/wricardo/remote-controller/controller/config"
	"github.com/wricardo/remote-controller/transport/mcp"
	"github.com/wricardo/remote-controller/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Remote Controller Server"
)

const shutdownTimeout = 10 * time.Second

// main loads .env, then runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		// Only log if it's not a "file not found" error
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Flags are declared on the root and
// inherited by every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "remote-controller",
		Usage:   "Mirror phone and browser controller input into a local program",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "0.0.0.0",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing controller profiles",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "profile",
				Value:   config.DefaultProfileName,
				Usage:   "Controller profile to serve (area size and actions)",
				Sources: cli.EnvVars("PROFILE"),
			},
			&cli.DurationFlag{
				Name:    "heartbeat",
				Value:   websocket.DefaultConfig().HeartbeatInterval,
				Usage:   "Interval between pings sent to each client",
				Sources: cli.EnvVars("HEARTBEAT_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "client-timeout",
				Value:   websocket.DefaultConfig().ClientTimeout,
				Usage:   "Close a session after this long without any frame from the client",
				Sources: cli.EnvVars("CLIENT_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run the HTTP and WebSocket server (default)",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run the server plus an MCP stdio server over its state",
				Action:  runMCP,
			},
			{
				Name:   "profiles",
				Usage:  "List controller profiles in the config directory",
				Action: runProfiles,
			},
			{
				Name:      "validate",
				Usage:     "Validate controller profile files (default: every profile in the config directory)",
				ArgsUsage: "[FILE...]",
				Action:    runValidateCommand,
			},
		},
	}
}

// setupLogging applies the --debug flag to the standard logger.
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

// loadProfile resolves the profile to serve. A missing config directory is
// only an error when a profile other than the default was requested.
func loadProfile(configDir, name string) (*config.Profile, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		if name == "" || name == config.DefaultProfileName {
			log.Printf("Warning: %v; using built-in profile", err)
			return config.MinimalProfile(), nil
		}
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if name == "" || name == config.DefaultProfileName {
		return manager.Default(), nil
	}
	return manager.LoadProfile(name)
}

// serverOptions turns flags into controller options.
func serverOptions(cmd *cli.Command) (controller.Options, error) {
	profile, err := loadProfile(cmd.String("config-dir"), cmd.String("profile"))
	if err != nil {
		return controller.Options{}, err
	}
	log.Printf("Using profile %q (%d actions)", profile.Name, len(profile.Actions))

	return controller.Options{
		Addr:     fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port"))),
		AreaSize: profile.AreaSize,
		Catalog:  profile.Actions,
		Session: websocket.Config{
			HeartbeatInterval: cmd.Duration("heartbeat"),
			ClientTimeout:     cmd.Duration("client-timeout"),
		},
		Logger: log.Default(),
	}, nil
}

// runServe starts the server and blocks until SIGINT or SIGTERM.
func runServe(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	log.Printf("Starting %s v%s", AppName, Version)

	opts, err := serverOptions(cmd)
	if err != nil {
		return err
	}

	server, err := controller.Start(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd, server)
		}()
	}

	addr := server.Addr()
	log.Printf("Controller UI: http://%s/", addr)
	log.Printf("WebSocket: ws://%s/ws/", addr)
	log.Printf("Metrics: http://%s/metrics", addr)

	<-ctx.Done()
	log.Println("Received shutdown signal. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrok serves the controller through an ngrok tunnel until the server
// shuts down.
func runNgrok(ctx context.Context, cmd *cli.Command, server *controller.Server) {
	authToken := cmd.String("ngrok-auth")
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	// Configure ngrok endpoint
	var tunnel ngrokConfig.Tunnel
	if domain := cmd.String("ngrok-domain"); domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Controller UI (ngrok): %s/", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws/", ngrokURL)

	// Shutdown closes the tunnel listener, which ends Serve
	if err := server.Serve(tun); err != nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCP runs the controller server and an MCP stdio server over its
// handle. The server stops when the MCP client disconnects.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	// stdout carries MCP messages
	log.SetOutput(os.Stderr)

	opts, err := serverOptions(cmd)
	if err != nil {
		return err
	}

	server, err := controller.Start(opts)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("MCP stdio server ready (controller UI at http://%s/)", server.Addr())
	if err := mcp.NewServer(server.Handle()).ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runProfiles prints the profiles found in the config directory.
func runProfiles(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	return printProfiles(cmd.Root().Writer, manager)
}

func printProfiles(w io.Writer, manager *config.Manager) error {
	profiles, err := manager.ListProfiles()
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles found")
		return nil
	}

	for _, p := range profiles {
		fmt.Fprintf(w, "%-20s %-24s %3d actions", p.ProfileID, p.Name, p.Actions)
		if p.Description != "" {
			fmt.Fprintf(w, "  %s", p.Description)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// runValidateCommand validates the given files, or every profile in the
// config directory when none are given.
func runValidateCommand(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		matches, err := filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
		if err != nil {
			return fmt.Errorf("error finding profile files: %w", err)
		}
		files = matches
	}
	if len(files) == 0 {
		return fmt.Errorf("no profile files found in %s", cmd.String("config-dir"))
	}

	if !runValidate(cmd.Root().Writer, files) {
		return fmt.Errorf("some profiles have errors")
	}
	return nil
}
