package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"mmrag"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"mmrag"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	UnstructuredURL string `envconfig:"UNSTRUCTURED_URL" default:"http://unstructured:8000"`
	NSQLookupd      string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost        string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP        string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	GeminiAPIKey   string `envconfig:"GEMINI_API_KEY"`
	GeminiModel    string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	EmbedBatchSize int    `envconfig:"EMBED_BATCH_SIZE" default:"64"`

	RerankProvider string `envconfig:"RERANK_PROVIDER" default:"cohere"`
	RerankAPIKey   string `envconfig:"RERANK_API_KEY"`
	RerankTopN     int    `envconfig:"RERANK_TOP_N" default:"5"`

	ChunkSize      int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap   int `envconfig:"CHUNK_OVERLAP" default:"200"`
	RetrievalTopK  int `envconfig:"RETRIEVAL_TOP_K" default:"10"`
	EnrichParallel int `envconfig:"ENRICH_PARALLEL" default:"8"`
	MaxAnswerWords int `envconfig:"MAX_ANSWER_WORDS" default:"250"`

	EnableAPI          bool  `envconfig:"ENABLE_API" default:"true"`
	EnableIngestWorker bool  `envconfig:"ENABLE_INGEST_WORKER" default:"true"`
	MaxUploadSizeMB    int64 `envconfig:"MAX_UPLOAD_SIZE_MB" default:"100"`
	MaxZipSizeMB       int64 `envconfig:"MAX_ZIP_SIZE_MB" default:"500"`
	MaxFilesPerZip     int   `envconfig:"MAX_FILES_PER_ZIP" default:"500"`

	UploadDir     string `envconfig:"UPLOAD_DIR" default:"./data/uploads"`
	FiguresDir    string `envconfig:"FIGURES_DIR" default:"./figures"`
	QueryLogPath  string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	ServerPort        int `envconfig:"SERVER_PORT" default:"8081"`
	JobTTLSeconds     int `envconfig:"JOB_TTL_SECONDS" default:"60"`
	RetryAttempts     int `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelayMS  int `envconfig:"RETRY_BASE_DELAY_MS" default:"500"`
	BootstrapAttempts int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapDelaySec int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may also come from the shell, so a missing .env is fine.
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrMissingRequired)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE)", ErrMissingRequired)
	}
	return nil
}
