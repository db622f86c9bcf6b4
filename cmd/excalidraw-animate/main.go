package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/excalidraw-animate/internal/config"
	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/effects"
	"github.com/ivlev/excalidraw-animate/internal/engine"
	"github.com/ivlev/excalidraw-animate/internal/logging"
	"github.com/ivlev/excalidraw-animate/internal/output"
	"github.com/ivlev/excalidraw-animate/internal/params"
	"github.com/ivlev/excalidraw-animate/internal/scene"
	"github.com/ivlev/excalidraw-animate/internal/source"
	"github.com/ivlev/excalidraw-animate/internal/system"
)

var buildVersion = "dev"

// StderrNotifier prints user-facing alerts to stderr.
type StderrNotifier struct{}

func (StderrNotifier) Warn(msg string) {
	fmt.Fprintf(os.Stderr, "[!] %s\n", msg)
}

func main() {
	configPtr := flag.String("config", "", "Path to a YAML or JSON config file")
	linkPtr := flag.String("link", "", "Player link or bare fragment, e.g. '#json=<id>,<key>' or '#library=<url>.excalidrawlib'")
	inputPtr := flag.String("input", "", "Local .excalidraw or .excalidrawlib file (default: newest file in input/)")
	outputPtr := flag.String("output", "", "Output directory")
	workersPtr := flag.Int("workers", 0, "Concurrent exports (default: logical cores)")
	logLevelPtr := flag.String("log-level", "", "debug, info, warn, error")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	qrPtr := flag.Bool("qr", false, "Write a QR code of the share link")
	sequencePtr := flag.Bool("sequence", false, "Play library items one after another (local input)")
	scriptPtr := flag.String("script", "", "Apply per-element timing from a YAML script")
	genScriptPtr := flag.Bool("generate-script", false, "Write the planned timing of the input as a YAML script and exit")
	lastPtr := flag.Bool("last", false, "Print the newest published timeline and exit")

	flag.Parse()

	cfg, err := config.Load(*configPtr, system.DefaultWorkers())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Config error: %v\n", err)
		os.Exit(1)
	}
	cfg.BuildVersion = buildVersion

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "link":
			cfg.Link = *linkPtr
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "workers":
			if *workersPtr > 0 {
				cfg.Workers = *workersPtr
			}
		case "log-level":
			cfg.LogLevel = *logLevelPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "qr":
			cfg.QRCode = *qrPtr
		}
	})

	log := logging.New(cfg.LogLevel, os.Stderr, false)

	if *lastPtr {
		if err := printLatestTimeline(cfg.OutputDir); err != nil {
			log.Fatal().Err(err).Msg("no timeline")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eff := effects.Effect(&effects.DefaultEffect{})
	if *scriptPtr != "" {
		script, err := director.ReadScript(*scriptPtr)
		if err != nil {
			log.Fatal().Err(err).Str("path", *scriptPtr).Msg("failed to read script")
		}
		eff = effects.NewScenarioEffect(script)
		fmt.Printf("[*] Using script: %s\n", *scriptPtr)
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}
	deps := engine.Deps{
		Scenes:   source.NewHTTPSceneLoader(cfg.BackendURL, client),
		Library:  source.NewHTTPLibraryLoader(client, cfg.MaxLibraryBytes),
		Effect:   eff,
		Notifier: StderrNotifier{},
	}

	if cfg.Link == "" && cfg.InputPath == "" {
		latest, err := system.FindLatestScene("input")
		if err != nil {
			log.Fatal().Err(err).Msg("nothing to load: pass -link, or -input, or put a scene into input/")
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Selected file: %s\n", cfg.InputPath)
	}

	startTime := time.Now()
	var (
		req     params.Request
		name    string
		results []engine.RenderResult
	)

	if cfg.Link != "" {
		req = linkRequest(cfg.Link)
		if req.Empty() {
			fmt.Println("[!] Link names no scene and no library, nothing to load")
		}
		if *sequencePtr {
			log.Warn().Msg("-sequence applies to -input only; use '&sequence' in the link")
		}
		name = requestName(req)

		fmt.Println("--- [EXCALIDRAW ANIMATE] ---")
		fmt.Printf("[*] Request: %s | Workers: %d\n", req, cfg.Workers)
		fmt.Println("----------------------------")

		player := engine.NewPlayer(cfg, deps, req.Pointer, log)
		if err := <-player.Start(ctx, req); err != nil {
			log.Fatal().Err(err).Str("state", player.State().String()).Msg("load failed")
		}
		results = player.Results()
	} else {
		payloads, isLibrary, err := source.LoadFile(ctx, cfg.InputPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.InputPath).Msg("failed to load input")
		}
		name = cfg.InputPath
		if isLibrary {
			req.Targets = []params.Target{params.LibraryTarget{URL: cfg.InputPath}}
			req.Sequential = *sequencePtr
		} else if *sequencePtr {
			log.Warn().Str("path", cfg.InputPath).Msg("-sequence ignored for a single scene")
		}

		if *genScriptPtr {
			if err := generateScript(cfg.InputPath, payloads); err != nil {
				log.Fatal().Err(err).Msg("failed to write script")
			}
			return
		}

		fmt.Println("--- [EXCALIDRAW ANIMATE] ---")
		fmt.Printf("[*] Source: %s | Diagrams: %d | Workers: %d\n", cfg.InputPath, len(payloads), cfg.Workers)
		fmt.Println("----------------------------")

		player := engine.NewPlayer(cfg, deps, params.Pointer{}, log)
		results, err = player.LoadDataList(ctx, payloads, req.Sequential)
		if err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
	}
	renderTime := time.Since(startTime)

	spans := make([]director.Span, len(results))
	for i, r := range results {
		spans[i] = r.Span()
	}
	tl := director.NewDirector(name).BuildTimeline(spans, nil, playedSequentially(req), req.AutoplayDisabled)
	tl.Cycle = uuid.NewString()

	publisher := output.NewPublisher(cfg.OutputDir, name, log)
	if cfg.QRCode && cfg.Link != "" {
		share := req.ShareLink(cfg.ShareBase)
		if _, err := publisher.WriteQRCode(share); err != nil {
			log.Error().Err(err).Msg("failed to write QR code")
		} else {
			fmt.Printf("[*] Share link: %s\n", share)
		}
	}
	if err := publisher.Publish(ctx, results, tl); err != nil {
		log.Fatal().Err(err).Msg("publish failed")
	}

	if cfg.ShowStats {
		printStats(cfg, log, name, len(results), tl.TotalMs, renderTime, time.Since(startTime))
	}

	fmt.Printf("[+++] Done! %d diagram(s), %dms of animation: %s\n", len(results), tl.TotalMs, publisher.Dir)
}

// linkRequest accepts a full player link or a bare fragment.
func linkRequest(link string) params.Request {
	fragment := params.FragmentOf(link)
	if fragment == "" {
		fragment = link
	}
	return params.Parse(fragment)
}

// playedSequentially reports whether diagrams were chained. Only library
// playback honours the sequence flag.
func playedSequentially(req params.Request) bool {
	_, ok := req.Library()
	return ok && req.Sequential
}

func requestName(req params.Request) string {
	if lib, ok := req.Library(); ok {
		return lib.URL
	}
	if s, ok := req.Scene(); ok {
		return s.ID
	}
	return "diagram"
}

func generateScript(path string, payloads []scene.Payload) error {
	d := director.NewDirector(path)
	script := &director.Script{Version: director.ScriptVersion, Source: path, Elements: map[string]director.ElementTiming{}}
	for _, p := range payloads {
		for id, timing := range d.GenerateScript(scene.NonDeletedElements(p.Elements)).Elements {
			script.Elements[id] = timing
		}
	}

	if err := os.MkdirAll("scripts", 0755); err != nil {
		return err
	}
	out := director.GenerateScriptPath("scripts")
	if err := director.WriteScript(script, out); err != nil {
		return err
	}
	fmt.Printf("[+++] Script written: %s (%d elements)\n", out, len(script.Elements))
	return nil
}

func printLatestTimeline(outputDir string) error {
	path, err := director.FindLatestTimeline(outputDir)
	if err != nil {
		return err
	}
	tl, err := director.ReadTimeline(path)
	if err != nil {
		return err
	}
	fmt.Printf("[*] %s\n", path)
	fmt.Printf("[*] Source: %s | Sequential: %v | Total: %dms\n", tl.Source, tl.Sequential, tl.TotalMs)
	for _, item := range tl.Items {
		fmt.Printf("    %s  %6dms -> %6dms (seek %dms)\n", item.File, item.StartMs, item.FinishedMs, item.SeekMs)
	}
	return nil
}

func printStats(cfg *config.Config, log zerolog.Logger, name string, diagrams int, animationMs int64, renderTime, totalTime time.Duration) {
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Load + Render: %.2fs\n"+
			"Diagrams: %d\n"+
			"Animation: %dms\n"+
			"Memory: %s\n"+
			"----------------------------\n",
		cfg.BuildVersion, totalTime.Seconds(), renderTime.Seconds(), diagrams, animationMs, system.MemoryUsage(),
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Diagrams: %d | Total: %.2fs | Render: %.2fs | Workers: %d\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(name),
		diagrams,
		totalTime.Seconds(),
		renderTime.Seconds(),
		cfg.Workers,
	)
	if err := appendBenchmark(filepath.Join(cfg.OutputDir, "benchmark.log"), logEntry); err != nil {
		log.Warn().Err(err).Msg("could not write benchmark.log")
	}
}

func appendBenchmark(path, entry string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(entry); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
