package di

import (
	"errors"
	"fmt"
	"time"

	"stock-advisor/internal/adapter/tool"
	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/application/service"
	"stock-advisor/internal/infrastructure/browser"
	"stock-advisor/internal/infrastructure/llm/gpt"
	"stock-advisor/internal/infrastructure/llm/langchain"
	"stock-advisor/internal/infrastructure/logger"
	"stock-advisor/internal/infrastructure/market/yahoo"
	"stock-advisor/internal/infrastructure/metrics"
	"stock-advisor/internal/infrastructure/news/google"
	"stock-advisor/internal/infrastructure/prompts"
	"stock-advisor/internal/usecase/advisor"
	"stock-advisor/internal/usecase/evaluator"
)

const (
	BackendOpenAI    = "openai"
	BackendLangchain = "langchain"

	FetcherHTTP    = "http"
	FetcherBrowser = "browser"

	DefaultMaxSteps = 10
)

type Container struct {
	Logger  output.LoggerPort
	Metrics *metrics.Metrics
	Tools   *service.ToolRegistryImpl
	Advisor input.Advisor

	closers []func()
}

type Config struct {
	HTTPAddr string

	LLMBackend string
	LLMModel   string
	LLMBaseURL string

	MaxSteps          int
	MaxObservationLen int

	ExchangeSuffix string
	MarketBaseURL  string
	HTTPTimeout    time.Duration

	NewsFetcher     string
	NewsSearchURL   string
	BrowserHeadless bool

	LogLevel string
	LogFile  string

	// Progress receives live loop updates; nil keeps the loop silent.
	Progress output.ProgressPort
}

// ConfigFromEnv reads every setting and reports all malformed values at once.
func ConfigFromEnv(env output.ConfigPort) (Config, error) {
	var errs []error
	positive := func(key string, def int) int {
		n, err := env.GetPositiveInt(key, def)
		errs = append(errs, err)
		return n
	}
	flag := func(key string, def bool) bool {
		b, err := env.GetBool(key, def)
		errs = append(errs, err)
		return b
	}

	cfg := Config{
		HTTPAddr:          env.GetWithDefault("HTTP_ADDR", ":5000"),
		LLMBackend:        env.GetWithDefault("LLM_BACKEND", BackendOpenAI),
		LLMModel:          env.GetWithDefault("LLM_MODEL", gpt.DefaultModel),
		LLMBaseURL:        env.Get("LLM_BASE_URL"),
		MaxSteps:          positive("AGENT_MAX_STEPS", DefaultMaxSteps),
		MaxObservationLen: positive("AGENT_MAX_OBSERVATION_LEN", service.DefaultMaxObservationLen),
		ExchangeSuffix:    env.GetWithDefault("MARKET_EXCHANGE_SUFFIX", ".NS"),
		MarketBaseURL:     env.GetWithDefault("MARKET_BASE_URL", yahoo.DefaultBaseURL),
		HTTPTimeout:       time.Duration(positive("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		NewsFetcher:       env.GetWithDefault("NEWS_FETCHER", FetcherHTTP),
		NewsSearchURL:     env.GetWithDefault("NEWS_SEARCH_URL", google.DefaultSearchURL),
		BrowserHeadless:   flag("BROWSER_HEADLESS", true),
		LogLevel:          env.GetWithDefault("LOG_LEVEL", "info"),
		LogFile:           env.Get("LOG_FILE"),
	}
	return cfg, errors.Join(errs...)
}

// Validate rejects budgets and limits that would silently change loop behavior.
func (c Config) Validate() error {
	var errs []error
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max steps must be positive, got %d", c.MaxSteps))
	}
	if c.MaxObservationLen <= 0 {
		errs = append(errs, fmt.Errorf("max observation length must be positive, got %d", c.MaxObservationLen))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout))
	}
	return errors.Join(errs...)
}

func NewContainer(cfg Config) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.NewLoggerAdapter(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Container{Logger: log, Metrics: metrics.NewMetrics()}
	c.closers = append(c.closers, func() { _ = log.Close() })

	llmFactory, err := newLLMFactory(cfg, log.Named("llm"))
	if err != nil {
		c.Close()
		return nil, err
	}

	fetcher, err := c.newPageFetcher(cfg, log.Named("browser"))
	if err != nil {
		c.Close()
		return nil, err
	}

	market := yahoo.NewClient(yahoo.Config{
		BaseURL:        cfg.MarketBaseURL,
		ExchangeSuffix: cfg.ExchangeSuffix,
		Timeout:        cfg.HTTPTimeout,
		Logger:         log.Named("yahoo"),
	})
	news := google.NewScraper(fetcher, google.Config{
		SearchURL: cfg.NewsSearchURL,
		Logger:    log.Named("news"),
	})

	toolLog := log.Named("tool")
	tools, err := service.NewToolRegistry(log.Named("registry"), []output.ToolPort{
		tool.NewTickerSearchTool(market, toolLog),
		tool.NewPriceHistoryTool(market, cfg.ExchangeSuffix, toolLog),
		tool.NewFinancialStatementsTool(market, cfg.ExchangeSuffix, toolLog),
		tool.NewRecentNewsTool(news, toolLog),
	},
		service.WithMetrics(c.Metrics),
		service.WithMaxObservationLen(cfg.MaxObservationLen),
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}
	c.Tools = tools

	builder, err := prompts.NewBuilder(prompts.AdvisorPrompt, tools.Definitions())
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	loopCfg := advisor.DefaultConfig()
	loopCfg.MaxSteps = cfg.MaxSteps

	opts := []advisor.Option{advisor.WithMetrics(c.Metrics)}
	if cfg.Progress != nil {
		opts = append(opts, advisor.WithProgress(cfg.Progress))
	}

	c.Advisor = advisor.NewService(
		llmFactory,
		tools,
		builder,
		evaluator.New(log.Named("evaluator")),
		log.Named("advisor"),
		loopCfg,
		opts...,
	)

	log.Info("Container ready",
		"llmBackend", cfg.LLMBackend,
		"model", cfg.LLMModel,
		"maxSteps", loopCfg.MaxSteps,
		"newsFetcher", cfg.NewsFetcher,
		"exchangeSuffix", cfg.ExchangeSuffix,
	)
	return c, nil
}

func newLLMFactory(cfg Config, log output.LoggerPort) (output.LLMFactory, error) {
	switch cfg.LLMBackend {
	case "", BackendOpenAI:
		base := gpt.DefaultConfig("")
		if cfg.LLMModel != "" {
			base.Model = cfg.LLMModel
		}
		if cfg.LLMBaseURL != "" {
			base.BaseURL = cfg.LLMBaseURL
		}
		base.Logger = log
		return gpt.Factory(base), nil
	case BackendLangchain:
		return langchain.Factory(langchain.Config{
			Model:   cfg.LLMModel,
			BaseURL: cfg.LLMBaseURL,
			Logger:  log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM_BACKEND %q (want %s or %s)", cfg.LLMBackend, BackendOpenAI, BackendLangchain)
	}
}

func (c *Container) newPageFetcher(cfg Config, log output.LoggerPort) (output.PageFetcher, error) {
	switch cfg.NewsFetcher {
	case "", FetcherHTTP:
		return browser.NewHTTPFetcher(cfg.HTTPTimeout, log), nil
	case FetcherBrowser:
		rodCfg := browser.DefaultRodConfig()
		rodCfg.Headless = cfg.BrowserHeadless
		rodCfg.Logger = log
		f := browser.NewRodFetcher(rodCfg)
		c.closers = append(c.closers, f.Close)
		return f, nil
	default:
		return nil, fmt.Errorf("unknown NEWS_FETCHER %q (want %s or %s)", cfg.NewsFetcher, FetcherHTTP, FetcherBrowser)
	}
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
