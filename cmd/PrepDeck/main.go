package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/prepdeck/PrepDeck/internal/api"
	"github.com/prepdeck/PrepDeck/internal/catalog"
	"github.com/prepdeck/PrepDeck/internal/genai"
	"github.com/prepdeck/PrepDeck/internal/metrics"
	"github.com/prepdeck/PrepDeck/internal/session"
	"github.com/prepdeck/PrepDeck/internal/store"
	"github.com/prepdeck/PrepDeck/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for PrepDeck state data
	DefaultStateDir = "/var/lib/prepdeck"
	// DefaultDataFileName is the default JSON user-data filename
	DefaultDataFileName = "user_data.json"
	// DefaultAPIAddr is the default API listen address
	DefaultAPIAddr = ":8080"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Build the question catalog
	cat, err := loadCatalog(flags)
	if err != nil {
		slog.Error("Failed to load question catalog", "error", err)
		os.Exit(1)
	}

	// Open the persistence backend
	st, err := openStore(flags)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Build the collaborator client. Missing credentials mean demo mode, not
	// a startup failure.
	machineOpts := []session.Option{
		session.WithDemoMode(*flags.demoMode),
	}
	if !*flags.demoMode {
		client, err := genai.NewFromEnv(ctx)
		if err != nil {
			slog.Warn("No language model configured, falling back to demo mode", "error", err)
		} else {
			machineOpts = append(machineOpts, session.WithLiveResponder(&session.ModelResponder{Client: client}))
		}
	}

	m := metrics.New()
	machineOpts = append(machineOpts, session.WithMetrics(m))
	machine := session.New(cat, st, machineOpts...)

	server := api.NewServer(machine, cat,
		api.WithAddr(*flags.apiAddr),
		api.WithMetrics(m),
	)

	slog.Info("Bootstrapping PrepDeck", "api_addr", *flags.apiAddr, "demo_mode", *flags.demoMode)
	if err := server.Run(ctx); err != nil {
		slog.Error("PrepDeck failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("PrepDeck exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir     string
	DataDSN      string
	QuestionFile string
	APIAddr      string
	DemoMode     bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dataDSN      *string
	questionFile *string
	apiAddr      *string
	demoMode     *bool
}

// initializeLogger sets up structured logging. PREPDECK_DEBUG raises the
// level to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("PREPDECK_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:     util.EnvOrDefault("PREPDECK_STATE_DIR", DefaultStateDir),
		DataDSN:      os.Getenv("PREPDECK_DATA_DSN"),
		QuestionFile: os.Getenv("PREPDECK_QUESTION_FILE"),
		APIAddr:      util.EnvOrDefault("API_ADDR", DefaultAPIAddr),
		DemoMode:     util.ParseBoolEnv("PREPDECK_DEMO_MODE", false),
	}

	// If no DSN is provided, default to the JSON file in the state directory
	if config.DataDSN == "" {
		config.DataDSN = filepath.Join(config.StateDir, DefaultDataFileName)
		slog.Debug("No data DSN provided, defaulting to JSON file", "path", config.DataDSN)
	}

	slog.Debug("environment variables loaded",
		"PREPDECK_STATE_DIR", config.StateDir,
		"PREPDECK_DATA_DSN_SET", config.DataDSN != "",
		"PREPDECK_QUESTION_FILE", config.QuestionFile,
		"API_ADDR", config.APIAddr,
		"PREPDECK_DEMO_MODE", config.DemoMode)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for PrepDeck data (overrides $PREPDECK_STATE_DIR)"),
		dataDSN:      flag.String("data-dsn", config.DataDSN, "user data DSN: JSON path, SQLite path, or Postgres URL (overrides $PREPDECK_DATA_DSN)"),
		questionFile: flag.String("question-file", config.QuestionFile, "custom question bank YAML file (overrides $PREPDECK_QUESTION_FILE)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		demoMode:     flag.Bool("demo", config.DemoMode, "run with the offline collaborator (overrides $PREPDECK_DEMO_MODE)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dataDSN_set", *flags.dataDSN != "",
		"questionFile", *flags.questionFile,
		"apiAddr", *flags.apiAddr,
		"demoMode", *flags.demoMode)

	// Follow a changed state directory when the DSN was left at its default
	if *flags.dataDSN == config.DataDSN && config.DataDSN == filepath.Join(config.StateDir, DefaultDataFileName) && *flags.stateDir != config.StateDir {
		*flags.dataDSN = filepath.Join(*flags.stateDir, DefaultDataFileName)
		slog.Debug("Updated data DSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// loadCatalog builds the question catalog from the embedded banks or a
// custom YAML file.
func loadCatalog(flags Flags) (*catalog.Catalog, error) {
	if *flags.questionFile != "" {
		slog.Debug("Loading custom question banks", "path", *flags.questionFile)
		return catalog.LoadFile(*flags.questionFile)
	}
	return catalog.Load()
}

// openStore selects and opens the persistence backend based on the DSN shape.
func openStore(flags Flags) (store.Store, error) {
	dsn := *flags.dataDSN
	switch store.DetectDSNType(dsn) {
	case "postgres":
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_set", true)
		return store.NewPostgresStore(store.WithDSN(dsn))
	case "sqlite":
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
		return store.NewSQLiteStore(store.WithDSN(dsn))
	default:
		slog.Debug("Using JSON file store", "path", dsn)
		return store.NewJSONFileStore(store.WithDSN(dsn))
	}
}
