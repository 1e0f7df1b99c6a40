// GameHawk - Word Hunt solver for a spoofed Bluetooth pointer
// Solves 4x4 letter boards and replays the solutions as touch swipes on
// the paired host.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/TSKoduru/rpi-gamehawk/internal/api"
	"github.com/TSKoduru/rpi-gamehawk/internal/calibrate"
	"github.com/TSKoduru/rpi-gamehawk/internal/calibration"
	"github.com/TSKoduru/rpi-gamehawk/internal/config"
	"github.com/TSKoduru/rpi-gamehawk/internal/hid"
	"github.com/TSKoduru/rpi-gamehawk/internal/pointer"
	"github.com/TSKoduru/rpi-gamehawk/internal/session"
	"github.com/TSKoduru/rpi-gamehawk/internal/solver"
	"github.com/TSKoduru/rpi-gamehawk/internal/trie"
)

var (
	version    = "0.3.0"
	configPath = flag.String("config", "", "Path to config file (default: platform config dir)")
	buildDict  = flag.String("build-dict", "", "Compile a word list file into the dictionary trie and exit")
	boardStr   = flag.String("board", "", "Solve and swipe a single board (flattened letters)")
	solveOnly  = flag.Bool("solve-only", false, "Print solutions without touching the pointer")
	runCalib   = flag.Bool("calibrate", false, "Interactively fine-tune the calibration table")
	register   = flag.Bool("register", false, "Register the Bluetooth HID profile and wait for pairing")
	serve      = flag.Bool("serve", false, "Run the remote board-submission API server")
	showVer    = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("gamehawk version %s\n", version)
		return
	}

	cfgMgr, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	if *buildDict != "" {
		runBuildDict(cfgMgr, *buildDict)
		return
	}

	if *register {
		runRegister()
		return
	}

	if *runCalib {
		runCalibrate(cfgMgr)
		return
	}

	if *serve {
		runServer(cfgMgr)
		return
	}

	if *boardStr != "" {
		runBoard(cfgMgr, *boardStr)
		return
	}

	// Default: interactive loop reading boards from stdin
	runInteractive(cfgMgr)
}

func loadConfig() (*config.Manager, error) {
	var cfgMgr *config.Manager
	if *configPath != "" {
		cfgMgr = config.NewManagerAt(*configPath)
	} else {
		var err error
		cfgMgr, err = config.NewManager()
		if err != nil {
			return nil, err
		}
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}
	return cfgMgr, nil
}

// newTransport picks the real device unless this is a dry run.
func newTransport() (hid.Transport, func()) {
	if *solveOnly {
		return hid.Discard{}, func() {}
	}
	t, err := hid.NewDBusTransport()
	if err != nil {
		log.Fatalf("Failed to reach HID bridge: %v", err)
	}
	return t, func() { t.Close() }
}

func runBuildDict(cfgMgr *config.Manager, wordList string) {
	cfg := cfgMgr.Get()
	dict, count, err := trie.BuildFromFile(wordList)
	if err != nil {
		log.Fatalf("Failed to compile word list: %v", err)
	}
	if err := dict.Save(cfg.Dictionary.TriePath); err != nil {
		log.Fatalf("Failed to save dictionary: %v", err)
	}
	fmt.Printf("Compiled %d words into %s\n", count, cfg.Dictionary.TriePath)
}

func runRegister() {
	profile, err := hid.RegisterProfile()
	if err != nil {
		log.Fatalf("Failed to register HID profile: %v", err)
	}
	defer profile.Close()

	fmt.Println("GameHawk HID profile registered. Waiting for connections...")
	waitForSignal()
}

func runCalibrate(cfgMgr *config.Manager) {
	cfg := cfgMgr.Get()

	transport, closeTransport := newTransport()
	defer closeTransport()

	ctrl, err := pointer.NewController(transport, cfg.Pointer.PointerOptions())
	if err != nil {
		log.Fatalf("Failed to create pointer controller: %v", err)
	}

	// Start from the existing table when present, otherwise seed from the
	// interpolated corners.
	table, err := calibration.LoadTable(cfg.Calibration.Positions, cfg.Grid.Rows, cfg.Grid.Cols)
	if err != nil {
		log.Printf("Calibrate: No usable table (%v), seeding from corners", err)
		table, err = calibration.Interpolate(cfg.Calibration.TopLeft, cfg.Calibration.BottomRight,
			cfg.Grid.Rows, cfg.Grid.Cols)
		if err != nil {
			log.Fatalf("Failed to seed calibration table: %v", err)
		}
	}

	out := cfg.Calibration.Positions
	if out == "" {
		out = "mouse_positions.json"
	}
	if err := calibrate.NewSession(ctrl, table, out).Run(); err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}
}

func runServer(cfgMgr *config.Manager) {
	cfg := cfgMgr.Get()

	transport, closeTransport := newTransport()
	defer closeTransport()

	sess, err := session.New(cfgMgr, transport)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	port := cfg.API.Port
	log.Printf("GameHawk API starting on port %d", port)
	if err := api.NewServer(cfgMgr, sess).Start(port); err != nil {
		log.Fatalf("API server error: %v", err)
	}
}

func runBoard(cfgMgr *config.Manager, raw string) {
	transport, closeTransport := newTransport()
	defer closeTransport()

	sess, err := session.New(cfgMgr, transport)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	if *solveOnly {
		results, err := sess.Solve(raw)
		if err != nil {
			log.Fatalf("Solve failed: %v", err)
		}
		printResults(results)
		return
	}

	ctx := signalContext()
	results, err := sess.Run(ctx, raw)
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Run failed: %v", err)
	}
	printResults(results)
}

func runInteractive(cfgMgr *config.Manager) {
	transport, closeTransport := newTransport()
	defer closeTransport()

	sess, err := session.New(cfgMgr, transport)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	cfg := cfgMgr.Get()
	need := cfg.Grid.Rows * cfg.Grid.Cols
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("\nEnter %d letters (row by row), or 'quit': ", need)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "q" {
			return
		}

		results, err := sess.Solve(line)
		if err != nil {
			color.Red("Invalid board: %v", err)
			continue
		}
		printResults(results)

		if *solveOnly {
			continue
		}

		fmt.Print(">> Press ENTER to start swiping (ensure the game is open) <<")
		if !scanner.Scan() {
			return
		}

		ctx := signalContext()
		if _, err := sess.Run(ctx, line); err != nil && ctx.Err() == nil {
			color.Red("Run failed: %v", err)
			continue
		}
		color.Green("Done! Ready for the next round.")
	}
}

func printResults(results []solver.Result) {
	if len(results) == 0 {
		color.Yellow("No words found.")
		return
	}

	bold := color.New(color.Bold)
	bold.Printf("Found %d words:\n", len(results))
	for _, r := range results {
		cells := make([]string, len(r.Path))
		for i, p := range r.Path {
			cells[i] = fmt.Sprintf("(%d,%d)", p.Row, p.Col)
		}
		fmt.Printf("  %s  %s\n", color.GreenString("%-16s", r.Word), strings.Join(cells, " "))
	}
}

// signalContext returns a context cancelled by SIGINT/SIGTERM, so a run
// stops at the next word boundary instead of mid-drag.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		log.Printf("Interrupt received, stopping after current word")
		cancel()
		signal.Stop(ch)
	}()
	return ctx
}

func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}
