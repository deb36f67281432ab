// tabsortd is the tab organizer daemon: it bridges the browser extension over
// a websocket and exposes a control socket for the tabsort CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/b/tabsort/pkg/bridge"
	"github.com/b/tabsort/pkg/browser"
	"github.com/b/tabsort/pkg/config"
	"github.com/b/tabsort/pkg/daemon"
	"github.com/b/tabsort/pkg/paths"
	"github.com/b/tabsort/pkg/sorter"
	"github.com/b/tabsort/pkg/suggest"
)

var (
	configPath = flag.String("config", "", "config file path (default: XDG config dir)")
	listenFlag = flag.String("listen", "", "override listen address (host:port)")
	logLevel   = flag.String("log-level", "", "override log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tabsortd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = paths.ConfigPath()
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Log.Level))
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	d := newDaemon(cfg, log)

	bridgeSrv := bridge.NewServer(bridge.ServerConfig{
		Host:  cfg.Listen.Host,
		Port:  cfg.Listen.Port,
		Token: cfg.Auth.Token,
	}, log)
	bridgeSrv.OnTrigger = d.handleTrigger
	bridgeSrv.OnConnected = func(hello bridge.HelloPayload) {
		d.ctl.Broadcast(daemon.EventPayload{
			Kind:   daemon.EventExtensionChanged,
			Detail: fmt.Sprintf("connected (%s %s)", hello.Browser, hello.Version),
		})
	}
	bridgeSrv.OnDisconnected = func() {
		d.ctl.Broadcast(daemon.EventPayload{Kind: daemon.EventExtensionChanged, Detail: "disconnected"})
	}
	d.bridge = bridgeSrv

	ctl := daemon.NewServer(paths.SocketPath(), paths.PidPath())
	ctl.OnStatus = d.status
	ctl.OnOrganize = d.organizeForCLI
	ctl.OnSuggest = d.suggestions
	d.ctl = ctl

	if err := ctl.Start(); err != nil {
		return err
	}
	defer ctl.Stop()

	if err := bridgeSrv.Start(); err != nil {
		ctl.Stop()
		return err
	}
	defer bridgeSrv.Stop()

	stopWatch := watchConfig(cfgPath, log, func(next *config.Config) {
		level.Set(parseLevel(next.Log.Level))
		d.updateConfig(next)
	})
	defer stopWatch()

	log.Info("tabsortd started", "config", cfgPath)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}

func applyOverrides(cfg *config.Config) {
	if *listenFlag != "" {
		host, port, ok := strings.Cut(*listenFlag, ":")
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Listen.Host = host
				cfg.Listen.Port = p
			}
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// watchConfig reloads the config file on change. Listen address and auth
// token changes need a restart; everything else takes effect live.
func watchConfig(path string, log *slog.Logger, apply func(*config.Config)) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watch unavailable", "err", err)
		return func() {}
	}
	// Watch the directory: editors replace the file, breaking file watches.
	dir := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		dir = path[:i]
	}
	if err := watcher.Add(dir); err != nil {
		log.Warn("config watch unavailable", "err", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				next, err := config.LoadConfig(path)
				if err != nil {
					log.Warn("config reload failed", "err", err)
					continue
				}
				log.Info("config reloaded")
				apply(next)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watch error", "err", err)
			}
		}
	}()
	return func() { watcher.Close() }
}

// tabsortd holds the daemon state shared between the bridge, the control
// socket and the config watcher.
type tabsortd struct {
	log     *slog.Logger
	bridge  *bridge.Server
	ctl     *daemon.Server
	started time.Time

	mu         sync.Mutex
	cfg        *config.Config
	lastResult *sorter.Result
	lastError  string
	lastRun    time.Time
}

func newDaemon(cfg *config.Config, log *slog.Logger) *tabsortd {
	return &tabsortd{log: log, cfg: cfg, started: time.Now()}
}

func (d *tabsortd) updateConfig(cfg *config.Config) {
	d.mu.Lock()
	d.cfg.Log = cfg.Log
	d.cfg.Suggest = cfg.Suggest
	d.cfg.DryRun = cfg.DryRun
	d.mu.Unlock()
}

// handleTrigger is the outermost boundary for extension-initiated sorts:
// failures are logged and reported back to the extension, never re-raised.
func (d *tabsortd) handleTrigger(host browser.Host) {
	d.mu.Lock()
	dryRun := d.cfg.DryRun
	d.mu.Unlock()

	res, err := d.organize(host, dryRun)
	if err != nil {
		d.log.Error("organize failed", "err", err)
		d.bridge.Notify(bridge.MsgOrganizeError, bridge.OrganizeErrorPayload{Error: err.Error()})
		return
	}
	d.bridge.Notify(bridge.MsgOrganizeDone, bridge.OrganizeDonePayload{Result: res})
}

// organizeForCLI serves the control-socket organize command.
func (d *tabsortd) organizeForCLI(dryRun bool) (sorter.Result, error) {
	host, err := d.bridge.Host()
	if err != nil {
		return sorter.Result{}, err
	}
	res, err := d.organize(host, dryRun)
	if err != nil {
		d.log.Error("organize failed", "err", err)
	}
	return res, err
}

// organize runs one pass and records the outcome. Dry runs operate on a
// snapshot so no move ever reaches the browser.
func (d *tabsortd) organize(host browser.Host, dryRun bool) (sorter.Result, error) {
	ctx := context.Background()
	d.ctl.Broadcast(daemon.EventPayload{Kind: daemon.EventOrganizeStarted})

	if dryRun {
		snap, err := snapshot(ctx, host)
		if err != nil {
			d.record(nil, err)
			return sorter.Result{}, err
		}
		host = snap
	}

	res, err := d.runPass(ctx, host)
	if err != nil {
		d.record(nil, err)
		d.ctl.Broadcast(daemon.EventPayload{Kind: daemon.EventOrganizeFailed, Error: err.Error()})
		return sorter.Result{}, err
	}
	d.record(&res, nil)
	d.ctl.Broadcast(daemon.EventPayload{Kind: daemon.EventOrganizeFinished, Result: &res})
	d.log.Info("organize finished",
		"window", res.WindowID,
		"pinned", res.Pinned,
		"groups", len(res.Groups),
		"ungrouped", res.Ungrouped,
		"duration", res.Duration,
		"dry_run", dryRun)
	return res, nil
}

func (d *tabsortd) runPass(ctx context.Context, host browser.Host) (sorter.Result, error) {
	return sorter.Organize(ctx, host)
}

func (d *tabsortd) record(res *sorter.Result, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastRun = time.Now()
	d.lastResult = res
	if err != nil {
		d.lastError = err.Error()
	} else {
		d.lastError = ""
	}
}

func (d *tabsortd) status() daemon.StatusPayload {
	hello, connected := d.bridge.Connected()
	d.mu.Lock()
	defer d.mu.Unlock()
	return daemon.StatusPayload{
		Uptime:     time.Since(d.started),
		Extension:  connected,
		Browser:    hello.Browser,
		Version:    hello.Version,
		LastResult: d.lastResult,
		LastError:  d.lastError,
		LastRun:    d.lastRun,
	}
}

func (d *tabsortd) suggestions() ([]suggest.Suggestion, error) {
	host, err := d.bridge.Host()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	win, err := host.FocusedWindow(ctx)
	if err != nil {
		return nil, err
	}
	tabs, err := host.Tabs(ctx, browser.TabFilter{
		WindowID: win.ID,
		Pinned:   browser.Bool(false),
		GroupID:  browser.Group(browser.GroupNone),
	})
	if err != nil {
		return nil, err
	}

	out := suggest.Clusters(tabs)
	if len(out) == 0 {
		return out, nil
	}

	d.mu.Lock()
	sc := d.cfg.Suggest
	d.mu.Unlock()
	if namer, err := suggest.NewNamer(sc.Provider, sc.Model, sc.APIKey); err == nil {
		namer.Refine(ctx, out, tabs)
	} else {
		d.log.Debug("LLM naming unavailable, using heuristic titles", "err", err)
	}
	return out, nil
}

// snapshot copies the live tab state into a MemoryHost for dry runs.
func snapshot(ctx context.Context, host browser.Host) (*browser.MemoryHost, error) {
	win, err := host.FocusedWindow(ctx)
	if err != nil {
		return nil, err
	}
	tabs, err := host.Tabs(ctx, browser.TabFilter{WindowID: win.ID})
	if err != nil {
		return nil, err
	}
	groups, err := host.Groups(ctx, win.ID)
	if err != nil {
		return nil, err
	}

	mem := browser.NewMemoryHost()
	mem.AddWindow(win.ID, true)
	for _, g := range groups {
		mem.AddGroup(g)
	}
	for _, t := range tabs {
		mem.AddTab(t)
	}
	return mem, nil
}
