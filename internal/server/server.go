package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	openai "github.com/sashabaranov/go-openai"
	httpSwagger "github.com/swaggo/http-swagger"

	"profadvisor/internal/db"
	"profadvisor/internal/handlers"
	"profadvisor/internal/repositories"
	"profadvisor/internal/routes"
	"profadvisor/internal/services"
)

func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	cfg := getServerConfig()

	// Provider client is shared by embeddings, completions, and the health
	// probe. A missing key is reported per request as a provider failure,
	// not a startup crash.
	if cfg.OpenAIAPIKey == "" {
		logger.Println("⚠️  OPENAI_API_KEY is not set - provider calls will fail until it is configured")
	}
	openaiClient := openai.NewClient(cfg.OpenAIAPIKey)

	pineconeClient := db.NewPineconeClient(getPineconeConfig())
	vectorIndex := repositories.NewPineconeVectorIndex(pineconeClient)

	professorRepo := initializeCatalog(logger)

	embeddingService := services.NewEmbeddingService(openaiClient, cfg.EmbedModel, log.New(os.Stdout, "[EMBED] ", log.LstdFlags))
	completionService := services.NewCompletionService(openaiClient, cfg.ChatModel, log.New(os.Stdout, "[LLM] ", log.LstdFlags))
	promptBuilder := services.NewPromptBuilder(services.DefaultSystemPrompt)
	queryAnalyzer := services.NewQueryAnalyzer()

	chatService := services.NewChatService(services.ChatServiceConfig{
		Embedder:    embeddingService,
		Index:       vectorIndex,
		Completions: completionService,
		Prompts:     promptBuilder,
		Analyzer:    queryAnalyzer,
		Professors:  professorRepo,
		Namespace:   cfg.Namespace,
		TopK:        cfg.TopK,
		Logger:      log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	})

	handlerLogger := log.New(os.Stdout, "[HTTP] ", log.LstdFlags)
	h := &routes.Handlers{
		Health:       handlers.HealthCheckHandler,
		Home:         handlers.HomeHandler,
		Chat:         handlers.NewChatHandler(chatService, handlerLogger),
		Professors:   handlers.NewProfessorHandler(professorRepo, handlerLogger),
		SystemHealth: handlers.NewSystemHealthHandler(vectorIndex, professorRepo, openaiClient, handlerLogger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Port)),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: corsMiddleware(requestIDMiddleware(logger, router)),
	}
}

// initializeCatalog connects the Redis-backed professor catalog. The catalog
// is optional: when Redis is down the chat pipeline still works, retrieval
// just runs without a subject filter and catalog endpoints report 503.
func initializeCatalog(logger *log.Logger) repositories.ProfessorRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := getRedisConfig()
	logger.Printf("Connecting to Redis: %s:%d (DB: %d)", redisConfig.Host, redisConfig.Port, redisConfig.DB)

	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		logger.Printf("❌ Failed to create Redis client: %v", err)
		logger.Println("   Professor catalog disabled - chat will run without subject filtering")
		return nil
	}

	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("❌ Redis connection failed: %v", err)
		logger.Println("   Professor catalog disabled - chat will run without subject filtering")
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil
	}
	logger.Println("✅ Redis connected successfully")

	return repositories.NewRedisProfessorRepository(redisClient.GetClient())
}

// serverConfig holds top-level server settings
type serverConfig struct {
	Port         int
	OpenAIAPIKey string
	EmbedModel   string
	ChatModel    string
	Namespace    string
	TopK         int
}

// getServerConfig reads server configuration from environment variables
func getServerConfig() serverConfig {
	cfg := serverConfig{
		Port:         8080,
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		EmbedModel:   string(openai.SmallEmbedding3),
		ChatModel:    openai.GPT4oMini,
		Namespace:    "ns1",
		TopK:         3,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}

	if model := os.Getenv("OPENAI_EMBED_MODEL"); model != "" {
		cfg.EmbedModel = model
	}

	if model := os.Getenv("OPENAI_CHAT_MODEL"); model != "" {
		cfg.ChatModel = model
	}

	if ns := os.Getenv("PINECONE_NAMESPACE"); ns != "" {
		cfg.Namespace = ns
	}

	if topKStr := os.Getenv("RETRIEVAL_TOP_K"); topKStr != "" {
		if topK, err := strconv.Atoi(topKStr); err == nil && topK > 0 {
			cfg.TopK = topK
		}
	}

	return cfg
}

// getPineconeConfig reads Pinecone configuration from environment variables
func getPineconeConfig() db.PineconeConfig {
	return db.PineconeConfig{
		IndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		APIKey:    os.Getenv("PINECONE_API_KEY"),
		Timeout:   30 * time.Second,
	}
}

// getRedisConfig reads Redis configuration from environment variables
func getRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	return config
}
