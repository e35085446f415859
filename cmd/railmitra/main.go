// Command railmitra runs the railway assistant as an interactive chat loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	openaisdk "github.com/openai/openai-go/v3"

	"github.com/railmitra/railmitra/bot"
	"github.com/railmitra/railmitra/config"
	openaiembedder "github.com/railmitra/railmitra/contrib/embedder/openai"
	openaillm "github.com/railmitra/railmitra/contrib/llm/openai"
	mongolookup "github.com/railmitra/railmitra/contrib/lookup/mongo"
	redislookup "github.com/railmitra/railmitra/contrib/lookup/redis"
	"github.com/railmitra/railmitra/contrib/tokenizer/tiktoken"
	"github.com/railmitra/railmitra/contrib/vector/inmemory"
	"github.com/railmitra/railmitra/lookup"
	"github.com/railmitra/railmitra/pkg/logging"
	"github.com/railmitra/railmitra/pkg/telemetry"
	"github.com/railmitra/railmitra/retrieval"
	"github.com/railmitra/railmitra/router"
	"github.com/railmitra/railmitra/source/general"
	"github.com/railmitra/railmitra/source/links"
	"github.com/railmitra/railmitra/source/livedata"
	"github.com/railmitra/railmitra/source/rules"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "railmitra:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	logger := logging.WithComponent("main")
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "railmitra",
		Disable:     cfg.DisableTelemetry,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	assistant, err := buildBot(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Println("railmitra ready. Ask about railway rules or live train data (ctrl-d to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "exit" || query == "quit" {
			break
		}
		fmt.Println(assistant.AnswerQuery(ctx, query))
	}
	return scanner.Err()
}

func buildBot(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bot.Bot, error) {
	chat := openaillm.New(openaillm.DefaultConfig(cfg.OpenAIAPIKey).WithModel(cfg.ChatModel))
	embedder := openaiembedder.New(cfg.OpenAIAPIKey, "",
		openaisdk.EmbeddingModel(cfg.EmbeddingModel), cfg.EmbeddingDim)

	rulesStore, err := inmemory.LoadSnapshot(ctx, cfg.RulesSnapshot)
	if err != nil {
		return nil, fmt.Errorf("load rules index: %w", err)
	}
	linksStore, err := inmemory.LoadSnapshot(ctx, cfg.LinksSnapshot)
	if err != nil {
		return nil, fmt.Errorf("load links index: %w", err)
	}
	rulesCount, _ := rulesStore.Count(ctx)
	linksCount, _ := linksStore.Count(ctx)
	logger.Info("indices loaded", "rules", rulesCount, "links", linksCount)

	tables, err := loadTables(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load lookup tables: %w", err)
	}
	logger.Info("lookup tables loaded", "stations", tables.Stations(), "trains", tables.Trains())

	policy := retrieval.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = retrieval.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
	}

	tokenizer, err := tiktoken.New(cfg.ChatModel)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	engine := retrieval.NewEngine(rulesStore, embedder, policy)
	apiClient := livedata.NewClient(livedata.DefaultClientConfig(cfg.RapidAPIKey))

	return bot.New(
		router.New(chat),
		rules.New(engine, chat, tokenizer),
		livedata.New(chat, tables, apiClient),
		links.NewRetriever(linksStore, embedder),
		general.New(chat),
	), nil
}

func loadTables(ctx context.Context, cfg *config.Config) (*lookup.Tables, error) {
	switch cfg.LookupBackend {
	case config.LookupRedis:
		rc := redislookup.DefaultConfig()
		rc.Addr = cfg.RedisAddr
		return redislookup.Load(ctx, rc)
	case config.LookupMongo:
		mc := mongolookup.DefaultConfig()
		mc.URI = cfg.MongoURI
		return mongolookup.Load(ctx, mc)
	default:
		return lookup.LoadFiles(cfg.StationsFile, cfg.TrainsFile)
	}
}
