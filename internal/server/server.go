package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/caseweave/backend/internal/server/middleware"
	"github.com/caseweave/backend/internal/util"
	"github.com/caseweave/backend/pkg/ai"
	oai "github.com/caseweave/backend/pkg/ai/ollama"
	gai "github.com/caseweave/backend/pkg/ai/openai"
	"github.com/caseweave/backend/pkg/extract"
	"github.com/caseweave/backend/pkg/history"
	"github.com/caseweave/backend/pkg/loader/web"
	"github.com/caseweave/backend/pkg/logger"
	"github.com/caseweave/backend/pkg/store"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func newAIClient() ai.NetworkAIClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewNetworkOllamaClient(oai.NewNetworkOllamaClientParams{
			CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_MAX_CONCURRENT", 1)),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewNetworkOpenAIClient(gai.NewNetworkOpenAIClientParams{
			CompletionModel: util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	networkStore := store.NewNetworkStore()
	tracker := history.NewTracker(networkStore)
	extractor := extract.NewService(extract.NewServiceParams{
		TokenEncoder:     util.GetEnvString("AI_TOKEN_ENCODER", "o200k_base"),
		MaxChunkTokens:   int(util.GetEnvNumeric("AI_MAX_CHUNK_TOKENS", 1200)),
		ParallelRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQUESTS", 4)),
		MaxRetries:       int(util.GetEnvNumeric("AI_MAX_RETRIES", 3)),
	})

	app := &mid.App{
		Store:     networkStore,
		History:   tracker,
		Extractor: extractor,
		Web:       web.NewLoader(),
		AiClient:  newAIClient(),
		APIKey:    util.GetEnv("API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
