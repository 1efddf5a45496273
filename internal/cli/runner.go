package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/skratchdot/open-golang/open"

	"github.com/idilsaglam/riego/internal/auth"
	"github.com/idilsaglam/riego/internal/command"
	"github.com/idilsaglam/riego/internal/config"
	"github.com/idilsaglam/riego/internal/console"
	"github.com/idilsaglam/riego/internal/device"
	"github.com/idilsaglam/riego/internal/logview"
	"github.com/idilsaglam/riego/internal/model"
	"github.com/idilsaglam/riego/internal/store/jsonstore"
	"github.com/idilsaglam/riego/internal/tui"
	"github.com/idilsaglam/riego/internal/ui"
	"github.com/idilsaglam/riego/internal/upload"
	"github.com/idilsaglam/riego/internal/zones"
)

// Options tune behavior from root flags.
type Options struct {
	ConfigPath string // explicit config file
	URL        string // overrides device.base_url
	Theme      string // overrides theme
	Verbose    bool   // log to stderr in one-shot commands
}

// env is what every subcommand needs once config is loaded.
type env struct {
	cfg     *config.Config
	client  *device.Client
	history *jsonstore.History
	stdout  io.Writer
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "auth":
		return doAuth(a)
	}

	if !opt.Verbose && cmd != "ui" {
		log.SetOutput(io.Discard)
	}
	e, code := setup(opt)
	if code != 0 {
		return code
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "ui":
		return e.doUI(ctx)
	case "exec":
		if len(a) == 0 {
			ui.Fail("usage: riego exec <command...>")
			return 2
		}
		return e.doExec(ctx, strings.Join(a, " "))
	case "zone":
		return e.doZone(ctx, a)
	case "logs":
		return e.doLogs(ctx, a)
	case "upload":
		return e.doUpload(ctx, a)
	case "open":
		return e.doOpen()
	case "history":
		return e.doHistory(a)
	case "config":
		return e.doConfig(a)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(os.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Printf(`riego - terminal control surface for an irrigation controller

Usage:
  riego [flags] <subcommand> [args]

Flags:
  -config <path>   config file (default: config.yaml, configs/config.yaml, ~/.riego/config.yaml)
  -url <url>       device base URL (overrides config and RIEGO_URL)
  -theme <name>    classic | neon | mono
  -v               log requests to stderr

Subcommands:
  ui                              Interactive screen (console, zones, upload, logs)
  exec <command...>               Run one console command (ls, cat <file>, zone1 on 3600, ...)
  zone <id> <on|off> [seconds]    Switch a zone, optionally for a duration
  logs [-f] [-n lines]            Show the device log tail (-f keeps polling)
  upload <filename> [path|-]      Write a local file (or stdin) to the device
  open                            Open the device web UI in a browser
  history [clear]                 Show or clear console history
  config init [path]              Write a default config file
  auth <login|token|logout|status>  Device credentials

Examples:
  riego exec ls
  riego exec cat lib/config.json
  riego zone 1 on 600
  riego logs -f
  riego upload notes.txt ./notes.txt
`)
}

func setup(opt Options) (*env, int) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		ui.Fail("config: " + err.Error())
		return nil, 1
	}
	if opt.URL != "" {
		cfg.Device.BaseURL = opt.URL
	}
	if opt.Theme != "" {
		cfg.Theme = opt.Theme
	}
	ui.SetTheme(cfg.Theme)

	creds, err := auth.Get()
	if err != nil {
		ui.Fail("credentials: " + err.Error())
		return nil, 1
	}
	client, err := device.NewClient(cfg.Device.BaseURL, device.Options{
		Timeout:     cfg.Device.Timeout,
		Credentials: creds,
	})
	if err != nil {
		ui.Fail(err.Error())
		return nil, 2
	}
	dir, err := auth.Dir()
	if err != nil {
		ui.Fail(err.Error())
		return nil, 1
	}
	return &env{cfg: cfg, client: client, history: jsonstore.New(dir), stdout: os.Stdout}, 0
}

// -------------- subcommand impls ----------------

func (e *env) doUI(ctx context.Context) int {
	f, err := tea.LogToFile(e.cfg.LogFile, "riego")
	if err != nil {
		ui.Fail("log file: " + err.Error())
		return 1
	}
	defer f.Close()

	lines, err := e.history.Load()
	if err != nil {
		log.Printf("history: %v", err)
	}
	form := upload.New(e.client)
	con := console.New(e.client)
	con.Filler = form
	con.History = e.history

	deps := tui.Deps{
		Console: con,
		Zones:   zones.New(e.client, e.cfg.Zones),
		Upload:  form,
		Logs:    logview.New(e.client, e.cfg.Logs.TailLines, e.cfg.Logs.PollInterval),
		History: lines,
		WebURL:  e.client.BaseURL(),
		Title:   e.client.BaseURL(),
	}
	log.Printf("ui: device %s, %d zones, logs every %s", e.client.BaseURL(), len(e.cfg.Zones), e.cfg.Logs.PollInterval)
	if err := tui.Run(ctx, deps); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

func (e *env) doExec(ctx context.Context, line string) int {
	con := console.New(e.client)
	con.History = e.history
	out, err := con.Exec(ctx, line)
	ui.Panel(e.stdout, []string{ui.C(ui.Current().Title, "$ "+strings.TrimSpace(line)), "", out})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, command.ErrEmpty), errors.Is(err, command.ErrUsage):
		return 2
	}
	return 1
}

func (e *env) doZone(ctx context.Context, a []string) int {
	if len(a) < 2 || len(a) > 3 {
		ui.Fail("usage: riego zone <id> <on|off> [seconds]")
		return 2
	}
	zone, action := a[0], strings.ToLower(a[1])
	if action != string(model.ZoneOn) && action != string(model.ZoneOff) {
		ui.Fail("zone: action must be on or off, got " + a[1])
		return 2
	}
	duration := 0
	if len(a) == 3 {
		d, ok := zones.ParseDuration(a[2])
		if !ok {
			ui.Fail("zone: not a positive number of seconds: " + a[2])
			return 2
		}
		duration = d
	}
	res := zones.Send(ctx, e.client, zone, model.ZoneState(action), duration)
	if !res.OK {
		ui.Fail(res.Text())
		return 1
	}
	st := model.ZoneState(action)
	ui.Panel(e.stdout, []string{
		ui.C(ui.Current().Title, fmt.Sprintf("Zone %s", zone)) + "  " + st.Upper(),
		"",
		res.Text(),
	})
	return 0
}

func (e *env) doLogs(ctx context.Context, a []string) int {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	follow := fs.Bool("f", false, "keep polling")
	n := fs.Int("n", e.cfg.Logs.TailLines, "lines to fetch")
	if err := fs.Parse(a); err != nil {
		return 2
	}
	v := logview.New(e.client, *n, e.cfg.Logs.PollInterval)
	if !*follow {
		lines, err := v.Fetch(ctx)
		if err != nil {
			ui.Fail(err.Error())
			return 1
		}
		fmt.Fprintln(e.stdout, strings.Join(lines, "\n"))
		return 0
	}

	log.SetOutput(os.Stderr)
	v.OnUpdate = func() {
		fmt.Fprintln(e.stdout, ui.C(ui.Current().Muted, "── "+e.client.BaseURL()+" ──"))
		fmt.Fprintln(e.stdout, v.Box.Text())
	}
	v.Start(ctx)
	<-ctx.Done()
	v.Stop()
	return 0
}

func (e *env) doUpload(ctx context.Context, a []string) int {
	if len(a) < 1 || len(a) > 2 {
		ui.Fail("usage: riego upload <filename> [path|-]")
		return 2
	}
	var (
		data []byte
		err  error
	)
	if len(a) == 1 || a[1] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(a[1])
	}
	if err != nil {
		ui.Fail("read: " + err.Error())
		return 1
	}
	form := upload.New(e.client)
	form.Filename.SetText(a[0])
	form.Content.SetText(string(data))
	out, err := form.Submit(ctx)
	if errors.Is(err, upload.ErrNoFilename) {
		ui.Fail(out)
		return 2
	}
	ui.Panel(e.stdout, []string{out})
	if err != nil {
		return 1
	}
	return 0
}

func (e *env) doOpen() int {
	if err := open.Run(e.client.BaseURL()); err != nil {
		ui.Fail("open: " + err.Error())
		return 1
	}
	ui.OK("opened " + e.client.BaseURL())
	return 0
}

func (e *env) doHistory(a []string) int {
	if len(a) == 1 && a[0] == "clear" {
		if err := e.history.Clear(); err != nil {
			ui.Fail("history: " + err.Error())
			return 1
		}
		ui.OK("history cleared")
		return 0
	}
	if len(a) != 0 {
		ui.Fail("usage: riego history [clear]")
		return 2
	}
	lines, err := e.history.Load()
	if err != nil {
		ui.Fail("history: " + err.Error())
		return 1
	}
	if len(lines) == 0 {
		fmt.Fprintln(e.stdout, ui.C(ui.Current().Muted, "no history"))
		return 0
	}
	for i, l := range lines {
		fmt.Fprintf(e.stdout, "%s %s\n", ui.C(ui.Current().Muted, fmt.Sprintf("%3d", i+1)), l)
	}
	return 0
}

func (e *env) doConfig(a []string) int {
	if len(a) == 0 || a[0] != "init" || len(a) > 2 {
		ui.Fail("usage: riego config init [path]")
		return 2
	}
	path := "config.yaml"
	if len(a) == 2 {
		path = a[1]
	}
	if _, err := os.Stat(path); err == nil {
		ui.Fail(path + " already exists")
		return 1
	}
	if err := config.Default().Save(path); err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ui.OK("wrote " + path)
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doAuth(a []string) int {
	if len(a) == 0 {
		ui.Fail("usage: riego auth <login|token|logout|status>")
		return 2
	}
	switch a[0] {
	case "login":
		if len(a) != 3 {
			ui.Fail("usage: riego auth login <user> <password>")
			return 2
		}
		if err := auth.SaveBasic(a[1], a[2]); err != nil {
			ui.Fail("save credentials: " + err.Error())
			return 1
		}
		ui.OK("logged in as " + a[1])
		return 0
	case "token":
		if len(a) != 2 {
			ui.Fail("usage: riego auth token <token>")
			return 2
		}
		if err := auth.SaveToken(a[1]); err != nil {
			ui.Fail("save token: " + err.Error())
			return 1
		}
		ui.OK("token saved")
		return 0
	case "logout":
		c, _ := auth.Get()
		if c != nil && c.Source == "env" {
			ui.OK("credentials come from RIEGO_TOKEN / RIEGO_USER (nothing to delete)")
			return 0
		}
		if err := auth.Delete(); err != nil {
			ui.Fail("logout: " + err.Error())
			return 1
		}
		ui.OK("logged out")
		return 0
	case "status":
		c, err := auth.Get()
		if err != nil {
			ui.Fail(err.Error())
			return 1
		}
		if c == nil {
			fmt.Println(ui.C(ui.Current().Muted, "no credentials"))
			fmt.Println("Run: riego auth login <user> <password>")
			return 0
		}
		fmt.Printf("source: %s\n", c.Source)
		fmt.Printf("kind:   %s\n", c.Kind())
		if c.User != "" {
			fmt.Printf("user:   %s\n", c.User)
		}
		fmt.Println("env override: RIEGO_TOKEN, RIEGO_USER/RIEGO_PASS")
		return 0
	}
	ui.Fail("usage: riego auth <login|token|logout|status>")
	return 2
}
