package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"moonwatch/internal/app"
	"moonwatch/internal/config"
	"moonwatch/internal/logger"
	"moonwatch/internal/pricewatch"
	"moonwatch/internal/report"
	"moonwatch/internal/scheduler"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitUsage  = 2
	defaultCfg = "configs/config.yaml"
)

const usage = `usage: moonwatch [monitor] <command> [flags]

commands:
  price     price changes over 15m, 1h, since the Asia open and 24h
  position  open positions with margin, PnL and stop-loss risk
  serve     HTTP API with /api/positions, /api/prices and /metrics
  config    print the effective config and coins

run "moonwatch <command> --help" for flags.
`

type options struct {
	configPath string
	sort       string
	live       bool
	interval   string
	notify     bool
	compact    bool
	hideEmpty  bool
	addr       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "monitor" {
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	case "price", "position", "serve", "config":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	opts, fs := newFlagSet(cmd, stderr)
	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	runOpts, err := opts.runOptions(cmd)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := config.LoadDotEnv(); err != nil {
		logger.Errorf("%v", err)
		return exitFatal
	}
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = resolveConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Errorf("loading config failed: %v", err)
		return exitFatal
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		logger.Errorf("opening log file failed: %v", err)
		return exitFatal
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}

	if cmd == "config" {
		coins, err := config.LoadCoins(cfg.Monitor.CoinsPath)
		if err != nil {
			logger.Errorf("loading coins failed: %v", err)
			return exitFatal
		}
		if err := app.PrintConfig(stdout, cfg, coins); err != nil {
			logger.Errorf("%v", err)
			return exitFatal
		}
		return exitOK
	}

	if cmd != "price" && (strings.TrimSpace(cfg.Exchange.APIKey) == "" || strings.TrimSpace(cfg.Exchange.APISecret) == "") {
		logger.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET must be set for %s", cmd)
		return exitFatal
	}
	runOpts, ignored := notifyMode(runOpts, cfg.Notify.Telegram.Enabled)
	if ignored {
		logger.Warnf("notifications are only sent in snapshot mode; ignoring --notify")
	}
	if runOpts.Notify && !cfg.Notify.Telegram.Ready() {
		logger.Warnf("notifications requested but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is missing")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		logger.Errorf("startup failed: %v", err)
		return exitFatal
	}
	a.Out = stdout
	logger.Debugf("monitoring %d symbols", a.Coins.Coins().Len())

	switch cmd {
	case "price":
		err = a.RunPrices(ctx, runOpts)
	case "position":
		err = a.RunPositions(ctx, runOpts)
	case "serve":
		err = a.Serve(ctx)
	}
	if err != nil {
		logger.Errorf("%s: %v", cmd, err)
		return exitFatal
	}
	return exitOK
}

func newFlagSet(cmd string, stderr io.Writer) (*options, *pflag.FlagSet) {
	opts := &options{}
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.configPath, "config", "c", "", "app config file (default $MOONWATCH_CONFIG or "+defaultCfg+")")

	switch cmd {
	case "price":
		fs.StringVar(&opts.sort, "sort", "", "sort by column[:asc|desc]: "+strings.Join(pricewatch.SortKeys(), ", "))
	case "position":
		fs.StringVar(&opts.sort, "sort", "", "sort by column[:asc|desc]: pnl_pct, sl_usd, default")
		fs.BoolVar(&opts.compact, "compact", false, "print the summary block only")
		fs.BoolVar(&opts.hideEmpty, "hide-empty", false, "omit configured symbols without a position")
	case "serve":
		fs.StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	}
	if cmd == "price" || cmd == "position" {
		fs.BoolVar(&opts.live, "live", false, "refresh until interrupted")
		fs.StringVar(&opts.interval, "interval", "", "live refresh period, e.g. 5, 30s, 1m (default from config)")
		fs.BoolVar(&opts.notify, "notify", false, "send a digest to Telegram (snapshot mode)")
		fs.BoolVar(&opts.notify, "telegram", false, "alias of --notify")
	}
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: moonwatch %s [flags]\n", cmd)
		fs.PrintDefaults()
	}
	return opts, fs
}

func (o *options) runOptions(cmd string) (app.RunOptions, error) {
	out := app.RunOptions{
		Sort:      report.ParseSort(o.sort),
		Live:      o.live,
		Notify:    o.notify,
		Compact:   o.compact,
		HideEmpty: o.hideEmpty,
	}
	if o.interval != "" {
		d, ok := scheduler.ParseRefresh(o.interval)
		if !ok {
			return out, fmt.Errorf("invalid --interval %q", o.interval)
		}
		out.Interval = d
	}
	if !out.Sort.IsDefault() {
		resolved := report.PositionSort(out.Sort)
		if cmd == "price" {
			resolved = pricewatch.NormalizeSort(out.Sort)
		}
		if resolved.IsDefault() {
			logger.Warnf("unknown sort key %q, using default order", out.Sort.Key)
		}
	}
	return out, nil
}

// notifyMode folds telegram.enabled into snapshot runs. Live runs never
// notify; it reports whether --notify was passed to one.
func notifyMode(o app.RunOptions, telegramEnabled bool) (app.RunOptions, bool) {
	if o.Live {
		ignored := o.Notify
		o.Notify = false
		return o, ignored
	}
	o.Notify = o.Notify || telegramEnabled
	return o, false
}

func resolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(config.EnvConfigPath)); p != "" {
		return p
	}
	if _, err := os.Stat(defaultCfg); err == nil {
		return defaultCfg
	}
	return ""
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stderr, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
