package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ghlin/ego/internal/cardb"
	"github.com/ghlin/ego/internal/config"
	"github.com/ghlin/ego/internal/duel"
	"github.com/ghlin/ego/internal/host"
	"github.com/ghlin/ego/internal/laminate"
	eventlog "github.com/ghlin/ego/internal/log"
	"github.com/ghlin/ego/internal/ocgcore"
	"github.com/ghlin/ego/internal/proto"
	"github.com/ghlin/ego/internal/replay"
	"github.com/ghlin/ego/internal/strconf"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	cmd := os.Args[1]
	switch cmd {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "validate":
		err = runValidate(ctx, os.Args[2:])
	case "laminate":
		err = runLaminate(ctx, os.Args[2:])
	case "log":
		err = runLog(ctx, os.Args[2:])
	case "dump-cdb":
		err = runDumpCDB(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ego inspect [--responses] REPLAY...")
	fmt.Println("  ego validate [engine flags] REPLAY...")
	fmt.Println("  ego laminate [engine flags] [--outdir DIR] [--zstd] [--attach-cards] REPLAY...")
	fmt.Println("  ego log [engine flags] REPLAY|LAMINATED...")
	fmt.Println("  ego dump-cdb [--cdb FILE] [--out FILE]")
	fmt.Println()
	fmt.Println("Engine flags:")
	fmt.Println("  --config FILE  --engine LIB  --cdb FILE  --scripts DIR  --strings FILE  --debug  --log-level LEVEL")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  inspect   Decode replay headers, decks and responses without the engine")
	fmt.Println("  validate  Run replays through the engine and the duel state; report failures")
	fmt.Println("  laminate  Expand replays into their full message streams")
	fmt.Println("  log       Print the game log of replays")
	fmt.Println("  dump-cdb  Write the card database as JSON")
}

// settings binds the shared configuration flags to fs.
type settings struct {
	configPath *string
	engine     *string
	cdb        *string
	scripts    *string
	strings    *string
	debug      *bool
	logLevel   *string
}

func bindSettings(fs *flag.FlagSet) *settings {
	return &settings{
		configPath: fs.String("config", "", "path to YAML config file"),
		engine:     fs.String("engine", "", "path of the engine shared library"),
		cdb:        fs.String("cdb", "", "path of cards.cdb"),
		scripts:    fs.String("scripts", "", "directory of card scripts"),
		strings:    fs.String("strings", "", "path of strings.conf"),
		debug:      fs.Bool("debug", false, "check duel state consistency after every message"),
		logLevel:   fs.String("log-level", "", "log level (debug, info, warn, error)"),
	}
}

// load reads the config file and environment, then applies flags that were
// set explicitly.
func (s *settings) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(*s.configPath)
	if err != nil {
		return cfg, nil, err
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Engine, *s.engine)
	override(&cfg.CDB, *s.cdb)
	override(&cfg.Scripts, *s.scripts)
	override(&cfg.Strings, *s.strings)
	override(&cfg.Logging.Level, *s.logLevel)
	if *s.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return cfg, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// resources are the engine and display data shared by a batch.
type resources struct {
	cfg       config.Config
	log       *zap.Logger
	cards     *cardb.Store
	templates *strconf.Templates
	engine    *ocgcore.Engine
}

func openResources(ctx context.Context, cfg config.Config, log *zap.Logger, withEngine bool) (*resources, error) {
	res := &resources{cfg: cfg, log: log}
	cards, err := cardb.Load(ctx, cfg.CDB)
	if err != nil {
		if withEngine {
			return nil, err
		}
		log.Warn("card database unavailable, cards are shown by code", zap.Error(err))
		cards = cardb.NewStore()
	}
	res.cards = cards

	templates, err := strconf.Load(cfg.Strings)
	if err != nil {
		log.Warn("strings.conf unavailable, hints render as placeholders", zap.Error(err))
		templates = strconf.New()
	}
	res.templates = templates

	if !withEngine {
		return res, nil
	}
	scripts, err := ocgcore.LoadScripts(cfg.Scripts)
	if err != nil {
		return nil, err
	}
	res.engine, err = ocgcore.Open(cfg.Engine, cards, scripts, log)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *resources) close() {
	if r.engine != nil {
		if err := r.engine.Close(); err != nil {
			r.log.Warn("unload engine", zap.Error(err))
		}
	}
	r.log.Sync()
}

func (r *resources) newState(observer duel.Observer) *duel.State {
	return duel.New(duel.Options{
		Validate:  r.cfg.Debug,
		Logger:    r.log,
		Templates: r.templates,
		Catalog:   r.cards,
		Observer:  observer,
	})
}

func readReplay(path string) (*replay.Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := replay.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// --- inspect ---

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	responses := fs.Bool("responses", false, "dump every recorded response")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no replay given")
	}

	failed := 0
	for _, path := range fs.Args() {
		r, err := readReplay(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[inspect] %v\n", err)
			failed++
			continue
		}
		all := r.Responses().All()
		fmt.Printf("%s\n", path)
		fmt.Printf("  id 0x%x  version 0x%x  flags 0x%x  seed %d (engine %d)\n", uint32(r.ID), uint32(r.Version), uint32(r.Flags), r.Seed, r.EngineSeed())
		fmt.Printf("  recorded %s\n", r.When().UTC().Format("2006-01-02 15:04:05"))
		fmt.Printf("  lp %d  start hand %d  draw %d  options 0x%x\n", r.StartLP, r.StartHand, r.DrawCount, r.Options)
		for i, p := range r.Players {
			fmt.Printf("  P%d %-20s main %d  extra %d\n", i+1, p.Name, len(p.Main), len(p.Extra))
		}
		fmt.Printf("  responses %d\n", len(all))
		if *responses {
			for i, resp := range all {
				fmt.Printf("  #%d\n%s", i, indent(proto.HexDump(resp), "    "))
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d replays could not be decoded", failed, fs.NArg())
	}
	return nil
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}

// --- validate ---

func runValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	set := bindSettings(fs)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no replay given")
	}
	cfg, logger, err := set.load()
	if err != nil {
		return err
	}
	res, err := openResources(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer res.close()

	failed := 0
	for _, path := range fs.Args() {
		result, err := res.validate(ctx, path)
		if err != nil {
			failed++
			logger.Error("replay failed", zap.String("replay", path), zap.Error(err))
			var pe *proto.ParseError
			if errors.As(err, &pe) {
				fmt.Fprintf(os.Stderr, "%s\n", pe.Dump())
			}
			continue
		}
		outcome := "finished"
		if result.Forfeit {
			outcome = "forfeit"
		}
		logger.Info("replay ok", zap.String("replay", path), zap.String("outcome", outcome),
			zap.Int("messages", result.Messages), zap.Int("responses", result.Responses))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d replays failed", failed, fs.NArg())
	}
	return nil
}

// validate runs one replay and mirrors every message into a duel state.
func (r *resources) validate(ctx context.Context, path string) (host.Result, error) {
	rp, err := readReplay(path)
	if err != nil {
		return host.Result{}, err
	}
	state := r.newState(nil)
	state.Init(duel.StartFromReplay(rp))
	return host.RunReplay(ctx, r.engine, rp, r.log, func(m proto.Message) error {
		return state.Handle(m)
	})
}

// --- laminate ---

func runLaminate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("laminate", flag.ExitOnError)
	set := bindSettings(fs)
	outdir := fs.String("outdir", ".", "output directory")
	compress := fs.Bool("zstd", false, "compress output with zstd")
	attach := fs.Bool("attach-cards", false, "embed the records of referenced cards")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no replay given")
	}
	cfg, logger, err := set.load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		return err
	}
	res, err := openResources(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer res.close()

	failed := 0
	for _, path := range fs.Args() {
		output := filepath.Join(*outdir, laminate.OutputName(path, *compress))
		logger.Info("laminating", zap.String("replay", path))
		if err := res.laminate(ctx, path, output, *attach); err != nil {
			failed++
			logger.Error("laminate failed", zap.String("replay", path), zap.Error(err))
			continue
		}
		logger.Info("laminated", zap.String("replay", path), zap.String("output", output))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d replays failed", failed, fs.NArg())
	}
	return nil
}

func (r *resources) laminate(ctx context.Context, path, output string, attach bool) error {
	rp, err := readReplay(path)
	if err != nil {
		return err
	}
	doc, err := laminate.Laminate(ctx, r.engine, rp, r.log)
	if err != nil {
		return err
	}
	if attach {
		doc.AttachCards(r.cards)
	}
	return laminate.WriteFile(output, doc)
}

// --- log ---

func runLog(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	set := bindSettings(fs)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no replay given")
	}
	cfg, logger, err := set.load()
	if err != nil {
		return err
	}
	needEngine := false
	for _, path := range fs.Args() {
		if !strings.Contains(filepath.Base(path), ".laminated.json") {
			needEngine = true
		}
	}
	res, err := openResources(ctx, cfg, logger, needEngine)
	if err != nil {
		return err
	}
	defer res.close()

	for _, path := range fs.Args() {
		doc, err := res.document(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", path)
		if err := res.printLog(doc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func (r *resources) document(ctx context.Context, path string) (*laminate.Document, error) {
	if strings.Contains(filepath.Base(path), ".laminated.json") {
		return laminate.ReadFile(path)
	}
	rp, err := readReplay(path)
	if err != nil {
		return nil, err
	}
	return laminate.Laminate(ctx, r.engine, rp, r.log)
}

func (r *resources) printLog(doc *laminate.Document) error {
	msgs, err := doc.Decode()
	if err != nil {
		return err
	}
	state := r.newState(nil)
	duel.NewEventLog(state, eventlog.NewTextLogger(os.Stdout))
	state.Init(doc.StartInfo())
	for i, m := range msgs {
		if err := state.Handle(m); err != nil {
			return fmt.Errorf("message %d (%s): %w", i, m.Type(), err)
		}
	}
	return nil
}

// --- dump-cdb ---

func runDumpCDB(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dump-cdb", flag.ExitOnError)
	set := bindSettings(fs)
	out := fs.String("out", "database.json", "output file")
	fs.Parse(args)
	cfg, logger, err := set.load()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cards, err := cardb.Load(ctx, cfg.CDB)
	if err != nil {
		return err
	}
	records := make([]*cardb.Record, 0, cards.Len())
	for _, code := range cards.Codes() {
		r, _ := cards.Lookup(code)
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	logger.Info("card database dumped", zap.String("out", *out), zap.Int("records", len(records)))
	return nil
}
