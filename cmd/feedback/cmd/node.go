package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ulule/limiter"
	"golang.org/x/net/http2"
	"gopkg.in/yaml.v2"

	cmdcommon "boscoin.io/feedback/cmd/feedback/common"
	"boscoin.io/feedback/lib/clock"
	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/ledger"
	"boscoin.io/feedback/lib/metrics"
	"boscoin.io/feedback/lib/network"
	"boscoin.io/feedback/lib/network/api"
	"boscoin.io/feedback/lib/network/httpcache"
	"boscoin.io/feedback/lib/sequencer"
	"boscoin.io/feedback/lib/storage"
)

const (
	defaultNetwork  string      = "http"
	defaultHost     string      = "0.0.0.0"
	defaultLogLevel logging.Lvl = logging.LvlInfo

	shutdownTimeout time.Duration = 10 * time.Second
)

var (
	flagConfigFile       string = common.GetENVValue("FEEDBACK_CONFIG", "")
	flagNetworkID        string = common.GetENVValue("FEEDBACK_NETWORK_ID", "")
	flagLogLevel         string = common.GetENVValue("FEEDBACK_LOG_LEVEL", defaultLogLevel.String())
	flagLogFormat        string = common.GetENVValue("FEEDBACK_LOG_FORMAT", "")
	flagLogOutput        string = common.GetENVValue("FEEDBACK_LOG_OUTPUT", "")
	flagVerbose          bool   = common.GetENVValue("FEEDBACK_VERBOSE", "0") == "1"
	flagBindURL          string = common.GetENVValue("FEEDBACK_BIND", fmt.Sprintf("%s://%s:%d", defaultNetwork, defaultHost, common.DefaultPort))
	flagTLSCertFile      string = common.GetENVValue("FEEDBACK_TLS_CERT", "")
	flagTLSKeyFile       string = common.GetENVValue("FEEDBACK_TLS_KEY", "")
	flagStorageConfig    string
	flagClock            string = common.GetENVValue("FEEDBACK_CLOCK", "system")
	flagNTPSyncInterval  string = common.GetENVValue("FEEDBACK_NTP_SYNC_INTERVAL", "10m")
	flagQueueSize        string = common.GetENVValue("FEEDBACK_QUEUE_SIZE", strconv.Itoa(common.DefaultSequencerQueueSize))
	flagLegacyCounter    bool   = common.GetENVValue("FEEDBACK_LEGACY_COUNTER_BUMP", "0") == "1"
	flagRateLimitAPI     cmdcommon.ListFlags
	flagHTTPCacheAdapter string = common.GetENVValue("FEEDBACK_HTTP_CACHE_ADAPTER", "")
	flagHTTPCachePool    string = common.GetENVValue("FEEDBACK_HTTP_CACHE_POOL_SIZE", strconv.Itoa(common.HTTPCachePoolSize))
	flagHTTPCacheTTL     string = common.GetENVValue("FEEDBACK_HTTP_CACHE_TTL", common.DefaultHTTPCacheTTL.String())
	flagHTTPCacheRedis   cmdcommon.ListFlags
)

var (
	nodeCmd *cobra.Command

	config          common.Config
	bindEndpoint    *common.Endpoint
	storageConfig   *storage.Config
	ledgerClock     clock.Clock
	ntpSyncInterval time.Duration
	logLevel        logging.Lvl
	log             logging.Logger = logging.New("module", "main")
)

func init() {
	var err error

	nodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Run feedback node",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsNode(c.Flags())

			if err := runNode(); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
		},
	}

	var currentDirectory string
	if currentDirectory, err = os.Getwd(); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}
	flagStorageConfig = common.GetENVValue("FEEDBACK_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	nodeCmd.Flags().StringVar(&flagConfigFile, "config", flagConfigFile, "yaml file; its keys are the flag names, explicit flags win")
	nodeCmd.Flags().StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id")
	nodeCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	nodeCmd.Flags().StringVar(&flagLogFormat, "log-format", flagLogFormat, "log format, {terminal, json}; by default terminal only on a tty")
	nodeCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	nodeCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	nodeCmd.Flags().StringVar(&flagBindURL, "bind", flagBindURL, "bind to listen on")
	nodeCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file, needed for https")
	nodeCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file, needed for https")
	nodeCmd.Flags().StringVar(&flagStorageConfig, "storage", flagStorageConfig, "storage uri, {file://<path>, memory://}")
	nodeCmd.Flags().StringVar(&flagClock, "clock", flagClock, "clock of the ledger, {system, ntp://<host>}")
	nodeCmd.Flags().StringVar(&flagNTPSyncInterval, "ntp-sync-interval", flagNTPSyncInterval, "interval of the ntp clock sync")
	nodeCmd.Flags().StringVar(&flagQueueSize, "queue-size", flagQueueSize, "size of the operation queue")
	nodeCmd.Flags().BoolVar(&flagLegacyCounter, "legacy-counter-bump", flagLegacyCounter, "bump the poll counter even when poll creation fails at the expiration check")
	nodeCmd.Flags().Var(&flagRateLimitAPI, "rate-limit-api", "rate limit of the api: [<ip>=]<limit>-<period>, <period> = {S, M, H}, 0 is unlimited")
	nodeCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter, {mem, redis}; empty disables the cache")
	nodeCmd.Flags().StringVar(&flagHTTPCachePool, "http-cache-pool-size", flagHTTPCachePool, "size of the mem http cache")
	nodeCmd.Flags().StringVar(&flagHTTPCacheTTL, "http-cache-ttl", flagHTTPCacheTTL, "expiration of the cached responses")
	nodeCmd.Flags().Var(&flagHTTPCacheRedis, "http-cache-redis-addrs", "redis server of the http cache: <name>=<host:port>")

	rootCmd.AddCommand(nodeCmd)
}

//
// applyConfigFile sets the flags which are not given in the command line
// from the yaml file at `path`. A list value sets the flag once per
// element.
//
func applyConfigFile(flags *pflag.FlagSet, path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file, %q", path)
	}

	values := map[string]interface{}{}
	if err = yaml.Unmarshal(b, &values); err != nil {
		return errors.Wrapf(err, "invalid config file, %q", path)
	}

	for name, value := range values {
		flag := flags.Lookup(name)
		if flag == nil {
			return errors.Errorf("unknown key in config file, %q", name)
		}
		if flag.Changed {
			continue
		}

		var vs []interface{}
		if l, ok := value.([]interface{}); ok {
			vs = l
		} else {
			vs = []interface{}{value}
		}

		for _, v := range vs {
			if err = flags.Set(name, fmt.Sprintf("%v", v)); err != nil {
				return errors.Wrapf(err, "invalid value of %q in config file", name)
			}
		}
	}

	return nil
}

//
// parseFlagRateLimit reads `--rate-limit-api` values. A value without ip
// address replaces `defaultRate`; the last one wins.
//
func parseFlagRateLimit(l cmdcommon.ListFlags, defaultRate limiter.Rate) (rule common.RateLimitRule, err error) {
	rule = common.NewRateLimitRule(defaultRate)

	for _, s := range l {
		var ip, formatted string

		sl := strings.SplitN(strings.TrimSpace(s), "=", 2)
		if len(sl) < 2 {
			formatted = sl[0]
		} else {
			ip, formatted = strings.TrimSpace(sl[0]), sl[1]
			if net.ParseIP(ip) == nil {
				err = errors.Errorf("invalid ip address, %q", ip)
				return
			}
		}

		var rate limiter.Rate
		if rate, err = limiter.NewRateFromFormatted(strings.ToUpper(strings.TrimSpace(formatted))); err != nil {
			err = errors.Wrapf(err, "invalid rate limit, %q", s)
			return
		}

		if len(ip) < 1 {
			rule.Default = rate
		} else {
			rule.ByIPAddress[ip] = rate
		}
	}

	return
}

func parseFlagRedisAddrs(l cmdcommon.ListFlags) (map[string]string, error) {
	addrs := map[string]string{}
	for _, s := range l {
		sl := strings.SplitN(s, "=", 2)
		if len(sl) < 2 {
			return nil, errors.Errorf("'<name>=<host:port>' expected, %q", s)
		}
		if _, _, err := net.SplitHostPort(sl[1]); err != nil {
			return nil, errors.Wrapf(err, "invalid redis address, %q", s)
		}
		addrs[sl[0]] = sl[1]
	}

	return addrs, nil
}

func makeLogHandler(format, output string) (logging.Handler, error) {
	if len(output) > 0 {
		return logging.FileHandler(output, common.JsonFormatEx(false, true))
	}

	var formatter logging.Format
	switch format {
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) {
			formatter = logging.TerminalFormat()
		} else {
			formatter = common.JsonFormatEx(false, true)
		}
	case "terminal":
		formatter = logging.TerminalFormat()
	case "json":
		formatter = common.JsonFormatEx(false, true)
	default:
		return nil, errors.Errorf("unknown log format, %q", format)
	}

	return logging.StreamHandler(os.Stdout, formatter), nil
}

func parseFlagsNode(flags *pflag.FlagSet) {
	var err error

	if len(flagConfigFile) > 0 {
		if err = applyConfigFile(flags, flagConfigFile); err != nil {
			cmdcommon.PrintFlagsError(nodeCmd, "--config", err)
		}
	}

	if len(flagNetworkID) < 1 {
		cmdcommon.PrintFlagsError(nodeCmd, "--network-id", errors.New("--network-id must be given"))
	}
	config = common.NewConfig([]byte(flagNetworkID))
	config.LegacyCounterBump = flagLegacyCounter

	if bindEndpoint, err = common.ParseEndpoint(flagBindURL); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--bind", err)
	}
	flagBindURL = bindEndpoint.String()

	queries := bindEndpoint.Query()
	if len(flagTLSCertFile) > 0 {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(nodeCmd, "--tls-cert", err)
		}
		queries.Set("TLSCertFile", flagTLSCertFile)
	}
	if len(flagTLSKeyFile) > 0 {
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(nodeCmd, "--tls-key", err)
		}
		queries.Set("TLSKeyFile", flagTLSKeyFile)
	}
	if len(queries.Get("IdleTimeout")) < 1 {
		queries.Set("IdleTimeout", "3s")
	}
	bindEndpoint.RawQuery = queries.Encode()

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfig); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--storage", err)
	}

	if ledgerClock, err = clock.NewClockFromString(flagClock); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--clock", err)
	}
	if ntpSyncInterval, err = time.ParseDuration(flagNTPSyncInterval); err != nil || ntpSyncInterval <= 0 {
		cmdcommon.PrintFlagsError(nodeCmd, "--ntp-sync-interval", errors.Errorf("invalid duration, %q", flagNTPSyncInterval))
	}

	if config.SequencerQueueSize, err = strconv.Atoi(flagQueueSize); err != nil || config.SequencerQueueSize < 0 {
		cmdcommon.PrintFlagsError(nodeCmd, "--queue-size", errors.Errorf("invalid queue size, %q", flagQueueSize))
	}

	if config.RateLimitRuleAPI, err = parseFlagRateLimit(flagRateLimitAPI, common.RateLimitAPI); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--rate-limit-api", err)
	}

	config.HTTPCacheAdapter = flagHTTPCacheAdapter
	if config.HTTPCachePoolSize, err = strconv.Atoi(flagHTTPCachePool); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--http-cache-pool-size", err)
	}
	if config.HTTPCacheTTL, err = time.ParseDuration(flagHTTPCacheTTL); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--http-cache-ttl", err)
	}
	if config.HTTPCacheRedisAddrs, err = parseFlagRedisAddrs(flagHTTPCacheRedis); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--http-cache-redis-addrs", err)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--log-level", err)
	}

	var logHandler logging.Handler
	if logHandler, err = makeLogHandler(flagLogFormat, flagLogOutput); err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, "--log-format", err)
	}
	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	}

	common.SetLogging(log, logLevel, logHandler)
	ledger.SetLogging(logLevel, logHandler)
	sequencer.SetLogging(logLevel, logHandler)
	clock.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)
	api.SetLogging(logLevel, logHandler)

	log.Info("Starting feedback node")

	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tnetwork-id", flagNetworkID)
	parsedFlags = append(parsedFlags, "\n\tbind", flagBindURL)
	parsedFlags = append(parsedFlags, "\n\tstorage", storageConfig)
	parsedFlags = append(parsedFlags, "\n\tclock", flagClock)
	parsedFlags = append(parsedFlags, "\n\tqueue-size", config.SequencerQueueSize)
	parsedFlags = append(parsedFlags, "\n\tlegacy-counter-bump", config.LegacyCounterBump)
	parsedFlags = append(parsedFlags, "\n\trate-limit-api", config.RateLimitRuleAPI)
	parsedFlags = append(parsedFlags, "\n\thttp-cache-adapter", config.HTTPCacheAdapter)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}
}

func runNode() error {
	st := &storage.LevelDBBackend{}
	if err := st.Init(storageConfig); err != nil {
		log.Crit("failed to initialize storage", "error", err)
		return err
	}
	defer st.Close()

	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	l := ledger.NewLedger(st, ledgerClock, config)
	seq := sequencer.NewSequencer(l, config.SequencerQueueSize)

	serverConfig, err := network.NewHTTP2ServerConfigFromEndpoint(bindEndpoint)
	if err != nil {
		log.Crit("invalid bind", "error", err)
		return err
	}
	server := network.NewHTTP2Server(serverConfig)

	cache, err := httpcache.NewCache(config, log.New("component", "httpcache"))
	if err != nil {
		log.Crit("failed to create http cache", "error", err)
		return err
	}

	if err = api.NewNetworkHandlerAPI(seq, config.NetworkID).AddRoutes(server.Router(), cache, config); err != nil {
		log.Crit("failed to add api routes", "error", err)
		return err
	}
	server.Router().Handle(api.MetricsPattern, promhttp.Handler()).Methods("GET")
	server.Ready()

	var g run.Group
	{
		g.Add(seq.Run, func(error) {
			seq.Stop()
		})
	}
	{
		g.Add(func() error {
			log.Info("api server started", "bind", serverConfig.Endpoint)
			return server.Start()
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Stop(ctx); err != nil {
				log.Error("failed to stop api server", "error", err)
			}
		})
	}
	if ntpClock, ok := ledgerClock.(*clock.NTPClock); ok {
		stop := make(chan struct{})
		g.Add(func() error {
			ntpClock.Run(ntpSyncInterval, stop)
			return nil
		}, func(error) {
			close(stop)
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	err = g.Run()
	log.Info("feedback node stopped", "reason", err)

	return nil
}
