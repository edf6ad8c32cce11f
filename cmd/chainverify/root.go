package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify"
	"github.com/nsmithuk/chainverify/dnssec"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "CHAINVERIFY"

	logFormatText = "text"
	logFormatJSON = "json"

	defaultTimeout = 30 * time.Second
)

// NewRootCommand builds the command tree. Each tree has its own viper instance.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	c := &cobra.Command{
		Use:   "chainverify",
		Short: "chainverify authenticates DNS answers with DNSSEC",
		Long: `Retrieves the DNSSEC chain of trust for a DNS question, from the root zone down,
and verifies it against the root trust anchors.

Chains can be captured to a file and verified later without network access.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
	}

	flags := c.PersistentFlags()
	flags.StringP("config", "c", "", "path to config file")
	flags.StringSliceP("upstream", "u", nil, "upstream recursive resolver, as ip or ip:port (repeatable)")
	flags.StringSlice("doh", nil, "DNS over HTTPS endpoint url (repeatable)")
	flags.String("anchors", "", "file of root DS records, in zone file format, to use as trust anchors")
	flags.String("at", "", "verify as at this RFC3339 time, rather than now")
	flags.Duration("timeout", defaultTimeout, "overall time allowed for a single command")
	flags.Uint("retries", chainverify.DefaultRetryAttempts, "upstreams tried for each question")
	flags.Int("cache-size", chainverify.DefaultCacheSize, "number of upstream responses cached, 0 to disable")
	flags.Bool("dump", false, "dump the retrieved messages and result")
	flags.String("log-level", log.WarnLevel.String(), "log level (trace, debug, info, warn, error)")
	flags.String("log-format", logFormatText, "log format (text or json)")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	c.AddCommand(
		newLookupCommand(v),
		newCaptureCommand(v),
		newVerifyCommand(v),
	)

	return c
}

func initConfig(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("can't read config file: %w", err)
		}
	}

	if err := configureLog(v.GetString("log-level"), v.GetString("log-format")); err != nil {
		return err
	}

	chainverify.RetryAttempts = v.GetUint("retries")

	chainverify.Cache = nil
	if size := v.GetInt("cache-size"); size > 0 {
		cache, err := chainverify.NewLRUCache(size)
		if err != nil {
			return err
		}
		chainverify.Cache = cache
	}

	return nil
}

func configureLog(level, format string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %s: %w", level, err)
	}
	log.SetLevel(l)

	switch format {
	case logFormatText:
		log.SetFormatter(&log.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			QuoteEmptyFields: true,
		})
	case logFormatJSON:
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %s: expected %s or %s", format, logFormatText, logFormatJSON)
	}

	installLoggers()
	return nil
}

// installLoggers routes the library's log functions through logrus.
func installLoggers() {
	query := log.WithField("prefix", "query")

	chainverify.Query = func(s string) {
		query.Debug(s)
	}
	chainverify.Debug = func(s string) {
		log.Debug(s)
	}
	chainverify.Info = func(s string) {
		log.Info(s)
	}
	chainverify.Warn = func(s string) {
		log.Warn(s)
	}
}

//---

// questionFromArgs parses NAME [TYPE]. TYPE defaults to A.
func questionFromArgs(args []string) (dnssec.Question, error) {
	qtype := dns.TypeA
	if len(args) > 1 {
		t, ok := dns.StringToType[strings.ToUpper(args[1])]
		if !ok {
			return dnssec.Question{}, fmt.Errorf("unknown query type '%s'", args[1])
		}
		qtype = t
	}

	name := dns.Fqdn(args[0])
	if _, ok := dns.IsDomainName(name); !ok {
		return dnssec.Question{}, fmt.Errorf("invalid domain name '%s'", args[0])
	}

	return dnssec.NewQuestion(name, qtype), nil
}

func verificationTime(v *viper.Viper) (time.Time, error) {
	at := v.GetString("at")
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at time: %w", err)
	}
	return t, nil
}

// trustAnchors returns nil, meaning the built-in root anchors, unless a file is configured.
func trustAnchors(v *viper.Viper) ([]dnssec.DsData, error) {
	path := v.GetString("anchors")
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open trust anchors: %w", err)
	}
	defer f.Close()

	anchors, err := dnssec.ParseTrustAnchors(f)
	if err != nil {
		return nil, fmt.Errorf("can't parse trust anchors in %s: %w", path, err)
	}
	if len(anchors) == 0 {
		return nil, fmt.Errorf("no trust anchors found in %s", path)
	}

	log.Debugf("loaded %d trust anchors from %s", len(anchors), path)
	return anchors, nil
}

func newVerifier(v *viper.Viper, anchors []dnssec.DsData) (*chainverify.Verifier, error) {
	opts := []chainverify.Option{
		chainverify.WithTrustAnchors(anchors),
	}
	if upstreams := v.GetStringSlice("upstream"); len(upstreams) > 0 {
		opts = append(opts, chainverify.WithUpstreams(upstreams...))
	}
	if urls := v.GetStringSlice("doh"); len(urls) > 0 {
		opts = append(opts, chainverify.WithDoH(urls...))
	}
	return chainverify.NewVerifier(opts...)
}

func commandContext(cmd *cobra.Command, v *viper.Viper) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, v.GetDuration("timeout"))
}
