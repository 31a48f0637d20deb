package main

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"

	"github.com/zombor/bcmagic/internal/magic"
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

	fs := ff.NewFlagSet("bcmagic-scan")
	var (
		serverURL   = fs.StringLong("server", "http://localhost:8080", "Barcode magic server base URL")
		mode        = fs.StringLong("mode", "default", "bcm_mode sent with every scan")
		fields      = fs.StringLong("fields", "", "Comma separated form field names to autofill (optional)")
		action      = fs.StringLong("action", "", "URL the filled form is posted to (optional)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		timeout     = fs.DurationLong("timeout", 30*time.Second, "Request timeout")
		_           = fs.StringLong("config", "", "YAML config file (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BCMAGIC_SCAN"),
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

	client := &http.Client{Timeout: *timeout}
	if *authUser != "" || *authPass != "" {
		client.Transport = &basicAuthTransport{username: *authUser, password: *authPass}
	}

	// Build the form the server can fill
	var submit func(url.Values)
	var submitter *magic.HTTPSubmitter
	if *action != "" {
		submitter = magic.NewHTTPSubmitter(*action, client)
		submit = submitter.Submit
	} else {
		submit = func(values url.Values) {
			slog.Info("Form full", "values", values.Encode())
		}
	}

	var inputs []*magic.FormField
	for _, name := range strings.Split(*fields, ",") {
		if name = strings.TrimSpace(name); name != "" {
			inputs = append(inputs, magic.NewTextInput(name))
		}
	}

	status := magic.NewTextField("")
	message := magic.NewTextField("")
	terminal := magic.NewTerminal(os.Stdout, status, message)
	layout := magic.NewRegistry()
	layout.Register(terminal.Render)

	shell := magic.Shell{
		Scan:      magic.NewTextField(""),
		Mode:      magic.NewTextField(*mode),
		Status:    status,
		Message:   message,
		Form:      magic.NewForm(submit, inputs...),
		Navigator: magic.NewWriterNavigator(os.Stdout),
		Layout:    layout,
	}
	ctrl := magic.NewController(shell, magic.NewHTTPEndpoint(*serverURL, client))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Ready for scans", "server", *serverURL, "mode", *mode, "fields", len(inputs))

	// Each line from the scanner is one scan terminated by Enter
	lines := bufio.NewScanner(os.Stdin)
	for lines.Scan() {
		if ctx.Err() != nil {
			break
		}
		shell.Scan.SetValue(strings.TrimRight(lines.Text(), "\r"))
		ctrl.HandleKey(ctx, '\n')
		ctrl.Wait()
	}
	if err := lines.Err(); err != nil {
		slog.Error("Error reading scans", "error", err)
	}

	if submitter != nil {
		submitter.Wait()
	}
}

// basicAuthTransport adds basic auth credentials to every request
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}
