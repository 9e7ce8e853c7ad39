package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/hovertype/internal/app"
	"github.com/ayusman/hovertype/internal/config"
	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/multitap"
	"github.com/ayusman/hovertype/internal/plugin"
	"github.com/ayusman/hovertype/internal/server"
	"github.com/ayusman/hovertype/internal/store"
	"github.com/ayusman/hovertype/internal/tray"
)

func main() {
	configPath := flag.String("config", filepath.Join(config.DataDir(), "config.toml"), "path to the TOML or YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides the config file)")
	noTray := flag.Bool("no-tray", false, "run without the system tray")
	flag.Parse()

	fmt.Println("Hovertype - Hover Keyboard")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *noTray {
		cfg.Tray = false
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	// Initialize the store
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	source := detector.NewPushSource(cfg.Tracker.MaxAge())
	events := server.NewEventHub()
	handlers := []multitap.Handler{events}

	var menu *tray.Tray
	if cfg.Tray {
		menu = tray.New()
		handlers = append(handlers, menu)
	}

	var sink *plugin.Sink
	if cfg.Plugin.Enabled {
		sink, err = openSink(cfg.Plugin)
		if err != nil {
			return err
		}
		defer sink.Close()
		handlers = append(handlers, sink)
	}

	a, err := app.New(app.Config{
		Store:      st,
		Zones:      cfg.Zones,
		LayoutName: cfg.Input.Layout,
		Timeout:    cfg.Input.Timeout(),
		FPS:        cfg.Input.FPS,
		Source:     source,
		Projector:  detector.NewProjector(cfg.Tracker.Detector()),
		Handlers:   handlers,
	})
	if err != nil {
		return err
	}
	if err := a.LoadLayout(); err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	httpServer := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			App:       a,
			Events:    events,
			Source:    source,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if menu != nil {
		menu.OnToggle(a.SetEnabled)
		menu.OnClear(a.Buffer().Clear)
		menu.OnSettings(func() { openBrowser(settingsURL(cfg.Server.Addr)) })
		menu.OnQuit(stop)
		go func() {
			<-ctx.Done()
			menu.Quit()
		}()
		// The tray must own the main goroutine on macOS.
		menu.Run()
		stop()
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openSink discovers the configured keystroke plugin and starts a sink for it.
func openSink(cfg config.PluginConfig) (*plugin.Sink, error) {
	mgr := plugin.NewManager(cfg.Dir)
	if err := mgr.Discover(); err != nil {
		return nil, fmt.Errorf("discover plugins: %w", err)
	}

	p, err := mgr.Get(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("plugin %q in %s: %w", cfg.Name, cfg.Dir, err)
	}

	sink, err := plugin.NewSink(p, plugin.NewExecutor(cfg.TimeoutMs), nil, plugin.DefaultQueueSize)
	if err != nil {
		return nil, err
	}
	log.Printf("Typing through plugin %s %s", p.Manifest.Name, p.Manifest.Version)
	return sink, nil
}

func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.hovertype/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
