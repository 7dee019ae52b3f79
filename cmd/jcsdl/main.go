// Package main is the jcsdl CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/cli"
	"github.com/hyperjump/jcsdl/internal/config"
	"github.com/hyperjump/jcsdl/internal/digest"
	"github.com/hyperjump/jcsdl/internal/index"
	"github.com/hyperjump/jcsdl/internal/indexer"
	"github.com/hyperjump/jcsdl/internal/jcsdl"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/schema"
	"github.com/hyperjump/jcsdl/internal/search"
	"github.com/hyperjump/jcsdl/internal/server"
	"github.com/hyperjump/jcsdl/internal/storage"
	"github.com/hyperjump/jcsdl/internal/watcher"
	"github.com/hyperjump/jcsdl/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/jcsdl/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if neither exists the
// built-in defaults are used so codec commands work without any setup.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	args := os.Args[2:]
	switch command {
	case "server":
		runServer(args)
	case "encode":
		os.Exit(runEncode(args, os.Stdin, os.Stdout, os.Stderr))
	case "decode":
		os.Exit(runDecode(args, os.Stdin, os.Stdout, os.Stderr))
	case "verify":
		os.Exit(runVerify(args, os.Stdin, os.Stdout, os.Stderr))
	case "save":
		runSave(args)
	case "list":
		runList(args)
	case "show":
		runShow(args)
	case "delete":
		runDelete(args)
	case "search":
		runSearch(args)
	case "reindex":
		runReindex(args)
	case "status":
		runStatus(args)
	case "version", "--version", "-v":
		fmt.Printf("jcsdl version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are accepted by every command that loads config.
type commonFlags struct {
	configPath *string
	debug      *bool
	schemaPath *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
		schemaPath: fs.String("schema", "", "schema definition file (overrides config)"),
	}
}

// settings loads config and applies the -schema and -debug overrides.
func (f *commonFlags) settings() (*config.Config, bool, error) {
	cfg, _, err := loadConfig(*f.configPath)
	if err != nil {
		return nil, false, err
	}
	if *f.schemaPath != "" {
		abs, err := filepath.Abs(*f.schemaPath)
		if err != nil {
			return nil, false, err
		}
		cfg.Schema.Path = abs
	}
	return cfg, cfg.Debug || *f.debug, nil
}

// newSchemaStore loads the configured schema file, or the built-in definition
// when none is configured.
func newSchemaStore(cfg *config.Config, logger *zap.Logger) (*schema.Store, error) {
	if cfg.Schema.Path == "" {
		return schema.NewStaticStore(schema.Default()), nil
	}
	return schema.NewStore(cfg.Schema.Path, schema.WithLogger(logger))
}

// newCodecFunc binds the codec settings from cfg to the current schema snapshot.
func newCodecFunc(cfg *config.Config, schemas *schema.Store, logger *zap.Logger) (indexer.CodecFunc, error) {
	hash, err := digest.New(cfg.Codec.Hash)
	if err != nil {
		return nil, err
	}
	return func() *jcsdl.Codec {
		return jcsdl.New(schemas.Current(),
			jcsdl.WithHash(hash),
			jcsdl.WithVersion(cfg.Codec.Version),
			jcsdl.WithLogger(logger),
		)
	}, nil
}

// codecSetup is the shared start-up of the encode, decode and verify commands.
func codecSetup(f *commonFlags, stderr io.Writer) (indexer.CodecFunc, *schema.Store, *zap.Logger, bool) {
	cfg, debugMode, err := f.settings()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return nil, nil, nil, false
	}
	logger, err := utils.NewCLILogger(debugMode)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return nil, nil, nil, false
	}
	schemas, err := newSchemaStore(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load schema: %v\n", err)
		return nil, nil, nil, false
	}
	codec, err := newCodecFunc(cfg, schemas, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid codec config: %v\n", err)
		return nil, nil, nil, false
	}
	return codec, schemas, logger, true
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

// parseEncodeRequest accepts either {"logic": ..., "filters": [...]} or a bare
// filter array.
func parseEncodeRequest(data []byte) (*models.EncodeRequest, error) {
	trimmed := strings.TrimSpace(string(data))
	var req models.EncodeRequest
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &req.Filters); err != nil {
			return nil, fmt.Errorf("invalid filter list: %w", err)
		}
		return &req, nil
	}
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return nil, fmt.Errorf("invalid encode request: %w", err)
	}
	return &req, nil
}

// isFilterJSON reports whether data holds filters rather than JCSDL text.
func isFilterJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// describeError prints a codec error with its kind, the filter it concerns and
// a spelling suggestion when one exists.
func describeError(w io.Writer, err error, def *schema.Definition) {
	kind := jcsdl.Kind(err)
	if kind == "" {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s error: %v\n", kind, err)
	if s := def.Suggest(err); s != "" {
		fmt.Fprintf(w, "did you mean %q?\n", s)
	}
}

func runEncode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	logic := fs.String("logic", "", "override the logic of the input: AND or OR")
	strict := fs.Bool("strict", false, "exit non-zero when any filter is skipped")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	codec, _, logger, ok := codecSetup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	data, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		return 1
	}
	req, err := parseEncodeRequest(data)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *logic != "" {
		req.Logic = models.Logic(strings.ToUpper(*logic))
	}
	text, skipped := codec().EncodeDetailed(&models.Document{Logic: req.Logic, Filters: req.Filters})
	cli.WriteSkipped(stderr, skipped)
	fmt.Fprintln(stdout, text)
	if *strict && len(skipped) > 0 {
		return 1
	}
	return 0
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	codec, schemas, logger, ok := codecSetup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	data, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		return 1
	}
	doc, err := codec().Decode(string(data))
	if err != nil {
		describeError(stderr, err, schemas.Current())
		return 1
	}
	if err := cli.WriteDocument(stdout, doc, format); err != nil {
		fmt.Fprintf(stderr, "Output failed: %v\n", err)
		return 1
	}
	return 0
}

func runVerify(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	codec, schemas, logger, ok := codecSetup(common, stderr)
	if !ok {
		return 1
	}
	defer logger.Sync()

	data, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to read input: %v\n", err)
		return 1
	}
	doc, err := codec().Decode(string(data))
	if err != nil {
		fmt.Fprintf(stdout, "invalid: %s\n", jcsdl.Kind(err))
		describeError(stderr, err, schemas.Current())
		return 1
	}
	fmt.Fprintf(stdout, "valid: %d filter(s)\n", len(doc.Filters))
	return 0
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Index   index.DocumentIndex
	Schemas *schema.Store
	Codec   indexer.CodecFunc
	Engine  *search.Engine
	Indexer *indexer.Indexer
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	schemas, err := newSchemaStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	codec, err := newCodecFunc(cfg, schemas, logger)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	idx, err := index.NewBleveIndex(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}

	idxOpts := []indexer.IndexerOption{}
	engineOpts := []search.EngineOption{}
	if debug && logger != nil {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
		engineOpts = append(engineOpts, search.WithLogger(logger))
	}
	return &Components{
		Storage: store,
		Index:   idx,
		Schemas: schemas,
		Codec:   codec,
		Engine:  search.NewEngine(store, idx, engineOpts...),
		Indexer: indexer.NewIndexer(store, idx, codec, idxOpts...),
	}, nil
}

// openComponents is the start-up shared by the storage commands. It exits on failure.
func openComponents(common *commonFlags) (*Components, *config.Config, *zap.Logger) {
	cfg, debugMode, err := common.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewCLILogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, cfg, logger
}

// newImportWatcher saves JCSDL files dropped into the import directory and
// deletes their documents when the files go away.
func newImportWatcher(cfg *config.Config, idx *indexer.Indexer, logger *zap.Logger) *watcher.Watcher {
	return watcher.NewWatcher(
		[]string{cfg.Import.Directory},
		watcher.MatchExtensions(cfg.Import.Extensions...),
		func(path string) {
			if _, err := idx.ImportFile(context.Background(), path); err != nil {
				logger.Warn("import failed", zap.String("path", path), zap.String("kind", jcsdl.Kind(err)), zap.Error(err))
			}
		},
		func(path string) {
			if err := idx.ForgetFile(context.Background(), path); err != nil {
				logger.Warn("import removal failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(logger),
	)
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(args)

	cfg, debugMode, err := common.settings()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", *common.configPath),
		zap.String("schema_path", cfg.Schema.Path),
		zap.String("hash", cfg.Codec.Hash),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	if cfg.Schema.Path != "" && cfg.Schema.WatchOrDefault() {
		schemaWatch, err := watcher.WatchSchema(components.Schemas, watcher.WithLogger(logger))
		if err != nil {
			logger.Fatal("Failed to watch schema", zap.Error(err))
		}
		if err := schemaWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start schema watcher", zap.Error(err))
		}
		defer schemaWatch.Stop()
	}

	if cfg.Import.Directory != "" {
		importWatch := newImportWatcher(cfg, components.Indexer, logger)
		if err := importWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start import watcher", zap.Error(err))
		}
		defer importWatch.Stop()
		importWatch.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Engine,
		components.Indexer,
		components.Storage,
		components.Schemas,
		components.Codec,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSave(args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	common := addCommonFlags(fs)
	name := fs.String("name", "", "document name (default: file name)")
	id := fs.String("id", "", "document ID to replace (default: new ID)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: jcsdl save [flags] <file.jcsdl|filters.json|->")
		os.Exit(1)
	}
	data, err := readInput(fs.Arg(0), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}
	input := &models.DocumentInput{ID: *id, Name: *name}
	if input.Name == "" && fs.Arg(0) != "-" {
		base := filepath.Base(fs.Arg(0))
		input.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if isFilterJSON(data) {
		req, err := parseEncodeRequest(data)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		input.Logic, input.Filters = req.Logic, req.Filters
	} else {
		input.JCSDL = string(data)
	}

	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	saved, err := components.Indexer.SaveDocument(context.Background(), input)
	if err != nil {
		describeError(os.Stderr, err, components.Schemas.Current())
		components.Close()
		os.Exit(1)
	}
	fmt.Printf("Document saved: %s (%d filter(s))\n", saved.ID, saved.FilterCount)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	common := addCommonFlags(fs)
	offset := fs.Int("offset", 0, "number of documents to skip")
	limit := fs.Int("limit", 20, "number of documents to list")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	docs, err := components.Storage.ListDocuments(ctx, *offset, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	total, err := components.Storage.CountDocuments(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSavedDocuments(os.Stdout, docs, total, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	common := addCommonFlags(fs)
	outputFormat := fs.String("output", "text", "output format: text or json")
	raw := fs.Bool("raw", false, "print the stored JCSDL text")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: jcsdl show [flags] <document-id>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	saved, doc, err := components.Indexer.GetDocument(context.Background(), fs.Arg(0))
	if saved == nil {
		fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	if *raw {
		fmt.Println(saved.JCSDL)
		return
	}
	if err != nil {
		fmt.Printf("%s  %s\n", saved.ID, saved.Name)
		describeError(os.Stderr, err, components.Schemas.Current())
		components.Close()
		os.Exit(1)
	}
	if format == cli.OutputText {
		fmt.Printf("%s  %s  (hash %s)\n", saved.ID, saved.Name, saved.Hash)
	}
	if err := cli.WriteDocument(os.Stdout, doc, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Usage: jcsdl delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)

	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	if err := components.Indexer.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: jcsdl search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. It may be empty when -target is set.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  jcsdl search influencers
  jcsdl search -target klout
  jcsdl search -fuzzy -server "" influensers     # typo-tolerant, direct storage
`)
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	common := addCommonFlags(fs)
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	target := fs.String("target", "", "only documents with a filter on this target")
	limit := fs.Int("limit", 10, "number of results")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for typo tolerance (direct storage only)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(args))

	query := &models.SearchQuery{Query: buildSearchQuery(fs.Args()), Target: *target, Limit: *limit}
	if err := query.Validate(); err != nil {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use HTTP API when server is running (avoids Bleve/SQLite lock conflict).
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	engine := components.Engine
	if *fuzzy {
		engine = search.NewEngine(components.Storage, components.Index, search.WithFuzzy(2))
	}
	response, err := engine.Search(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchURL(serverURL string, query *models.SearchQuery) string {
	v := url.Values{}
	if query.Query != "" {
		v.Set("q", query.Query)
	}
	if query.Target != "" {
		v.Set("target", query.Target)
	}
	if query.Limit > 0 {
		v.Set("limit", strconv.Itoa(query.Limit))
	}
	return strings.TrimRight(serverURL, "/") + "/api/v1/documents/search?" + v.Encode()
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	resp, err := http.Get(searchURL(serverURL, query))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runReindex(args []string) {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	common := addCommonFlags(fs)
	_ = fs.Parse(args)

	components, _, logger := openComponents(common)
	defer logger.Sync()
	defer components.Close()

	indexed, failed, err := components.Indexer.Reindex(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		components.Close()
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d document(s), %d no longer decode\n", indexed, failed)
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents      int64              `json:"documents"`
	Filters        int64              `json:"filters"`
	DiskUsageBytes *storage.Footprint `json:"disk_usage_bytes,omitempty"`
	Codec          config.CodecConfig `json:"codec"`
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	common := addCommonFlags(fs)
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		components, cfg, logger := openComponents(common)
		defer logger.Sync()
		defer components.Close()
		ctx := context.Background()
		if status.Documents, err = components.Storage.CountDocuments(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		if status.Filters, err = components.Storage.CountFilterRefs(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Count filters failed: %v\n", err)
			os.Exit(1)
		}
		status.Codec = cfg.Codec
		if fp, err := storage.MeasureFootprint(cfg.Storage.DatabasePath, cfg.Storage.IndexPath); err == nil {
			status.DiskUsageBytes = &fp
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("documents:          %d   # saved JCSDL documents\n", status.Documents)
	fmt.Printf("filters:            %d   # filters across all documents\n", status.Filters)
	if status.DiskUsageBytes != nil {
		fmt.Printf("disk_usage_bytes:   %d   # database + index on disk\n", status.DiskUsageBytes.Total())
	}
	fmt.Printf("hash:               %s\n", status.Codec.Hash)
	fmt.Printf("version:            %s\n", status.Codec.Version)
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`jcsdl - JCSDL encoder, decoder and document store

Usage:
  jcsdl server [flags]                 Start the HTTP server
  jcsdl encode [flags] [filters.json]  Encode filters (JSON) as JCSDL; reads stdin without a file
  jcsdl decode [flags] [file.jcsdl]    Decode and verify JCSDL into filters
  jcsdl verify [flags] [file.jcsdl]    Check JCSDL integrity; exits 1 when invalid
  jcsdl save [flags] <file>            Verify and store a document (JCSDL or filters JSON)
  jcsdl list [flags]                   List stored documents
  jcsdl show [flags] <id>              Show a stored document
  jcsdl delete [flags] <id>            Delete a stored document
  jcsdl search [flags] <query>         Search stored documents
  jcsdl reindex [flags]                Rebuild the search index from storage
  jcsdl status [flags]                 Show storage status
  jcsdl version                        Show version
  jcsdl help                           Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/jcsdl/config.yaml)
  --schema string    Schema definition file (default: from config, else built-in)
  --debug            Enable debug logging

Encode Flags:
  --logic string     Override the logic: AND or OR
  --strict           Exit 1 when any filter is skipped

Decode/List/Show/Search/Status Flags:
  --output string    Output format: text or json (default: text)

Search/Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.

Examples:
  jcsdl encode filters.json > stream.jcsdl
  jcsdl decode --output json stream.jcsdl
  jcsdl verify stream.jcsdl
  jcsdl save --name "Influencers" stream.jcsdl
  jcsdl search --target klout influencers`)
}
