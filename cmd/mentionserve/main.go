// Copyright 2025 The MentionServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the mention search server and a CLI [DBG] application.

MentionServe completes @mentions, #hashtags and any other configured token
type while the user types. Candidates are loaded from a data directory into
per type Patricia tries and ranked by score. The server speaks MessagePack
over stdin/stdout so editors and chat clients can spawn it as a child
process; an optional HTTP listener serves the same searches over JSON.

# Usage

Start the IPC server with default settings:

	mentionserve

Use a custom data directory and enable debug mode:

	mentionserve -data /path/to/dicts -d

Also serve HTTP searches and Prometheus metrics:

	mentionserve -http :8080

Run in CLI mode for interactive testing:

	mentionserve -c -limit 5

Convert the text dictionaries of a data directory to MessagePack:

	mentionserve -data dicts/ -export out/

# Data directory

One file per candidate type, named after the type: mention.txt, hashtag.bin.
Text files hold "word score" lines; '#' starts a comment. Files whose type is
not configured are skipped.

# Configuration

Runtime configuration lives in a TOML file, created with defaults on first
run:

	[server]
	max_limit = 64
	min_word = 1
	max_word = 64
	rate_limit = 200.0
	burst = 50

	[engine]
	debounce_ms = 250
	default_limit = 10
	fuzzy = true

	[[types]]
	name = "mention"
	expression = '^@\w+'
	trigger = "@"

# IPC Protocol

See package server for the message layout. A search round trip looks like:

	{"id": "1", "types": ["mention"], "w": "@ali", "l": 5}
	{"id": "1", "s": [{"t": "mention", "l": "alice", "r": "@alice", "sc": 120}], "c": 1, "t": 38}

# CLI Mode

Each input line becomes the text field content with the cursor at its end.
:up and :down move the highlight, :select or :tab insert it, :close hides the
panel and :quit exits.

# Command Line Flags

	-data string
	    Directory containing dictionary files (default "data/")
	-d  Enable debug mode with detailed logging
	-log string
	    Log level when not in debug mode (default "warn")
	-c  Run in CLI mode instead of server mode
	-http string
	    Also serve HTTP on this address (overrides config)
	-limit int
	    Number of results shown in CLI mode
	-config string
	    Path to a config file
	-export string
	    Write every loaded dictionary as .bin into this directory and exit
	-rebuild-config
	    Overwrite the default config file with built-in defaults and exit
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/mentionserve/internal/cli"
	"github.com/bastiangx/mentionserve/internal/logger"
	"github.com/bastiangx/mentionserve/internal/metrics"
	"github.com/bastiangx/mentionserve/internal/utils"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/config"
	"github.com/bastiangx/mentionserve/pkg/dictionary"
	"github.com/bastiangx/mentionserve/pkg/httpapi"
	"github.com/bastiangx/mentionserve/pkg/server"
	"github.com/bastiangx/mentionserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "mentionserve"
	gh      = "https://github.com/bastiangx/mentionserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow between the packages.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "data/", "Directory containing the dictionary files")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	logLevel := flag.String("log", "warn", "Log level: debug, info, warn, error")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	httpAddr := flag.String("http", "", "Also serve HTTP searches on this address")
	limit := flag.Int("limit", defaultConfig.CLI.Limit, "Number of results shown in CLI mode")
	configPath := flag.String("config", "", "Path to a config file")
	exportDir := flag.String("export", "", "Write loaded dictionaries as .bin files to this directory and exit")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config file with built-in defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", path)
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(logger.ParseLevel(*logLevel))
	}

	appConfig, activeConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := appConfig.Validate(); err != nil {
		log.Fatalf("Invalid config %s: %v", config.GetActiveConfigPath(activeConfigPath), err)
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(activeConfigPath))

	resolvedDataDir, err := utils.ResolveDataDir(*dataDir)
	if err != nil {
		log.Warnf("No dictionaries loaded, running with an empty index: %v", err)
	}

	if *exportDir != "" {
		if err := exportBinaries(resolvedDataDir, *exportDir); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	index := suggest.NewIndex(appConfig.TypeSpecs(), appConfig.IndexOptions())
	if resolvedDataDir != "" {
		stats, err := index.LoadDir(context.Background(), resolvedDataDir)
		if err != nil {
			log.Fatalf("Failed to load dictionaries: %v", err)
		}
		log.Debugf("Loaded %s candidates from %d files in %v",
			utils.FormatWithCommas(stats.Entries), stats.Files, stats.Duration)
	}

	// CLI is mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		runCLI(appConfig, index, *limit)
		return
	}

	m := metrics.New()
	publishCandidates(m, index)

	if *httpAddr != "" {
		appConfig.Server.HTTPAddr = *httpAddr
	}
	if appConfig.Server.HTTPAddr != "" {
		service := httpapi.NewService(appConfig, index, m)
		go func() {
			log.Debugf("HTTP listening on %s", appConfig.Server.HTTPAddr)
			if err := service.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("HTTP server stopped: %v", err)
			}
		}()
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(index, appConfig, m)
	showStartupInfo(resolvedDataDir, index)

	if err := srv.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runCLI(appConfig *config.Config, index *suggest.Index, limit int) {
	matcher, err := appConfig.Matcher()
	if err != nil {
		log.Fatalf("Invalid types: %v", err)
	}
	engine := autocomplete.New("cli", matcher, cli.Searcher(index, limit))
	engine.SetSearchTimeout(appConfig.SearchTimeout())
	defer engine.Stop()

	log.Debug("Input info:", "limit", limit, "types", index.Types())
	handler := cli.NewInputHandler(engine, os.Stdout, appConfig.CLI.Highlight, appConfig.DebounceDelay())
	if err := handler.Start(os.Stdin); err != nil {
		log.Fatalf("CLI error: %v", err)
	}
}

// exportBinaries rewrites every dictionary of dataDir as <type>.bin in outDir.
func exportBinaries(dataDir, outDir string) error {
	if dataDir == "" {
		return fmt.Errorf("nothing to export: %w", dictionary.ErrNoDictionaries)
	}
	sets, _, err := dictionary.LoadDir(context.Background(), dataDir)
	if err != nil {
		return err
	}
	for _, set := range sets {
		path := filepath.Join(outDir, set.Type+".bin")
		if err := dictionary.SaveBinary(path, set.Entries); err != nil {
			return err
		}
		log.Infof("Wrote %s candidates to %s", utils.FormatWithCommas(len(set.Entries)), path)
	}
	return nil
}

func publishCandidates(m *metrics.Metrics, index *suggest.Index) {
	stats := index.Stats()
	for _, typ := range index.Types() {
		m.SetCandidates(typ, stats["words."+typ])
	}
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ MentionServe ] Completes @mentions and #hashtags as you type")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir string, index *suggest.Index) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	stats := index.Stats()
	fmt.Fprintln(os.Stderr, "===============")
	fmt.Fprintln(os.Stderr, " MentionServe ")
	fmt.Fprintln(os.Stderr, "===============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("types: %v", index.Types())
	log.Infof("candidates: %s", utils.FormatWithCommas(stats["totalWords"]))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")
}
