package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"
	"go.etcd.io/bbolt"

	"github.com/zombor/bcmagic/internal/bcmagic"
	"github.com/zombor/bcmagic/internal/inventory"
	"github.com/zombor/bcmagic/internal/labels"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("bcmagic-server")
	var (
		port         = fs.IntLong("port", 8080, "HTTP server port")
		dbPath       = fs.StringLong("db", "bcmagic.db", "Database file path")
		printersPath = fs.StringLong("printers", "", "Label printer YAML file (optional)")
		printerName  = fs.StringLong("printer", "", "Printer to use from the printers file (default: the file's default)")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		authHash     = fs.StringLong("auth-pass-hash", "", "Basic auth bcrypt password hash (optional, overrides auth-pass)")
		_            = fs.StringLong("config", "", "YAML config file (optional)")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BCMAGIC_SERVER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database; keyword maps and inventory share one file
	slog.Info("Initializing database...", "path", *dbPath)
	bolt, err := bbolt.Open(*dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer bolt.Close()

	keymaps, err := bcmagic.NewBoltDBFrom(bolt)
	if err != nil {
		slog.Error("Failed to initialize keyword maps", "error", err)
		os.Exit(1)
	}
	items, err := inventory.NewBoltDB(bolt)
	if err != nil {
		slog.Error("Failed to initialize inventory", "error", err)
		os.Exit(1)
	}

	// Initialize label printer
	var printer inventory.LabelPrinter
	if *printersPath != "" {
		p, err := loadPrinter(*printersPath, *printerName)
		if err != nil {
			slog.Error("Failed to load printer", "error", err)
			os.Exit(1)
		}
		np := labels.NewNetworkPrinter(p)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		slog.Info("Label printer configured", "name", p.Name, "address", p.Address(), "status", np.Status(ctx))
		cancel()
		printer = np
	}

	// Initialize services
	plugins := bcmagic.NewPlugins()
	magicService := bcmagic.NewService(keymaps, plugins)

	inventoryService, err := inventory.NewService(items, printer)
	if err != nil {
		slog.Error("Failed to initialize inventory service", "error", err)
		os.Exit(1)
	}
	if err := inventoryService.Register(plugins); err != nil {
		slog.Error("Failed to register inventory plugins", "error", err)
		os.Exit(1)
	}
	if err := seedKeywordMaps(magicService); err != nil {
		slog.Error("Failed to seed keyword maps", "error", err)
		os.Exit(1)
	}

	// Initialize server
	basicAuth := bcmagic.BasicAuth{
		Username:     *authUser,
		Password:     *authPass,
		PasswordHash: *authHash,
	}
	server := bcmagic.NewServer(magicService, basicAuth)
	inventory.NewHandler(inventoryService).RegisterRoutes(server)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s/bcmagic/", addr), "modes", plugins.Modes())
	if *authUser != "" || *authPass != "" || *authHash != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func loadPrinter(path, name string) (labels.Printer, error) {
	printers, err := labels.LoadPrinters(path)
	if err != nil {
		return labels.Printer{}, err
	}
	if name != "" {
		p, ok := printers.Get(name)
		if !ok {
			return labels.Printer{}, fmt.Errorf("printer %q not found in %s", name, path)
		}
		return p, nil
	}
	p, ok := printers.Default()
	if !ok {
		return labels.Printer{}, fmt.Errorf("no printers defined in %s", path)
	}
	return p, nil
}

// seedKeywordMaps stores the item label keyword maps unless they were customized
func seedKeywordMaps(service *bcmagic.Service) error {
	for _, k := range inventory.DefaultKeywordMaps() {
		_, err := service.GetKeywordMap(k.Keyword)
		if err == nil {
			continue
		}
		if !errors.Is(err, bcmagic.ErrNotFound) {
			return err
		}
		if err := service.SaveKeywordMap(k); err != nil {
			return err
		}
		slog.Info("Keyword map created", "keyword", k.Keyword)
	}
	return nil
}
