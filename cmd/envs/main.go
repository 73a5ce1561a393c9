package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envs"
	"github.com/eugenenazirov/envs/internal/application"
	"github.com/eugenenazirov/envs/internal/coerce"
	"github.com/eugenenazirov/envs/internal/config"
	"github.com/eugenenazirov/envs/internal/logging"
	"github.com/eugenenazirov/envs/probe"
)

var notifyContext = signal.NotifyContext

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, probe.Process{}); err != nil {
		fmt.Fprintf(os.Stderr, "envs: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application
	// terminated is set when kingpin finishes on its own, e.g. after --help.
	terminated bool

	configFile *string
	env        *string
	folder     *string
	envPath    *string
	dotenv     *bool
	dotenvSet  bool
	logFile    *string

	envCmd *kingpin.CmdClause

	getCmd     *kingpin.CmdClause
	getKey     *string
	getDefault *string
	defaultSet bool

	printCmd    *kingpin.CmdClause
	printFormat *string
	printRaw    *bool

	serveCmd       *kingpin.CmdClause
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
}

func newCLI(stdout io.Writer) *cli {
	c := &cli{}
	c.app = kingpin.New("envs", "Typed environment variable registry")
	c.app.UsageWriter(stdout)
	c.app.ErrorWriter(stdout)
	c.app.Terminate(func(int) { c.terminated = true })

	c.configFile = c.app.Flag("config", "Path to YAML configuration file").String()
	c.env = c.app.Flag("env", "Force the environment name").String()
	c.folder = c.app.Flag("folder", "Directory holding .env override files").String()
	c.envPath = c.app.Flag("env-path", "Load exactly this override file").String()
	c.dotenv = c.app.Flag("dotenv", "Load override files (use --no-dotenv to disable)").IsSetByUser(&c.dotenvSet).Bool()
	c.logFile = c.app.Flag("log-file", "Write logs to a rotated file").String()

	c.envCmd = c.app.Command("env", "Print the resolved environment name")

	c.getCmd = c.app.Command("get", "Print the typed value of a registered variable")
	c.getKey = c.getCmd.Arg("key", "Variable name").Required().String()
	c.getDefault = c.getCmd.Flag("default", "Value printed when the variable is not registered").IsSetByUser(&c.defaultSet).String()

	c.printCmd = c.app.Command("print", "Print every registered variable")
	c.printFormat = c.printCmd.Flag("format", "Output format").Default("dotenv").Enum("dotenv", "json")
	c.printRaw = c.printCmd.Flag("raw", "Print stored strings instead of typed values").Bool()

	c.serveCmd = c.app.Command("serve", "Serve the registry over a read-only HTTP API")
	c.port = c.serveCmd.Flag("port", "HTTP port exposed by the service").String()
	c.rateLimitRPS = c.serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter").Default("-1").Int()

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile:     *c.configFile,
		Env:            c.env,
		Folder:         c.folder,
		EnvPath:        c.envPath,
		LogFile:        c.logFile,
		Port:           c.port,
		RateLimitRPS:   c.rateLimitRPS,
		RateLimitBurst: c.rateLimitBurst,
	}
	if c.dotenvSet {
		overrides.LoadDotEnv = c.dotenv
	}
	return overrides
}

func run(ctx context.Context, args []string, stdout io.Writer, runtime probe.Capability) error {
	c := newCLI(stdout)
	command, err := c.app.Parse(args)
	if c.terminated {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.overrides())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var logOpts []logging.Option
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logging.WithFile(cfg.LogFile))
	}
	logger, err := logging.New(logOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	registry := envs.New(
		envs.WithRuntime(runtime),
		envs.WithLogger(logger),
		envs.WithEnvNameVar(cfg.EnvNameVar),
	)
	if err := registry.Init(cfg.InitOptions()); err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	envs.SetDefault(registry)

	switch command {
	case c.envCmd.FullCommand():
		_, err = fmt.Fprintln(stdout, registry.GetNowEnv())
		return err
	case c.getCmd.FullCommand():
		return printVar(stdout, registry, *c.getKey, c.getDefault, c.defaultSet)
	case c.printCmd.FullCommand():
		return printVars(stdout, registry, *c.printFormat, *c.printRaw)
	case c.serveCmd.FullCommand():
		return serve(ctx, cfg, registry, logger)
	}
	return fmt.Errorf("unknown command %q", command)
}

func printVar(w io.Writer, registry *envs.Registry, key string, def *string, defaultSet bool) error {
	kind, ok := registry.TypeOf(key)
	if !ok {
		if !defaultSet {
			return fmt.Errorf("%s is not registered", key)
		}
		_, err := fmt.Fprintln(w, *def)
		return err
	}

	value, err := registry.Get(key)
	if err != nil {
		return err
	}
	out := coerce.Format(value)
	if kind == envs.TypeJSON {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		out = string(raw)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func printVars(w io.Writer, registry *envs.Registry, format string, raw bool) error {
	switch format {
	case "json":
		var payload any
		if raw {
			payload = registry.GetAllByString()
		} else {
			vars, err := registry.GetAll()
			if err != nil {
				return err
			}
			for key, value := range vars {
				vars[key] = coerce.Encodable(value)
			}
			payload = vars
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "dotenv":
		out, err := godotenv.Marshal(registry.GetAllByString())
		if err != nil {
			return err
		}
		if out == "" {
			return nil
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}
	return fmt.Errorf("unsupported format %q", format)
}

func serve(ctx context.Context, cfg config.Config, registry *envs.Registry, logger *zap.Logger) error {
	ctx, stop := notifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := application.New(cfg, registry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
