package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the process-wide configuration. It is loaded once in main
// and handed to constructors; nothing reads the environment after that.
type Config struct {
	Port            string   `validate:"required,numeric"`
	FrontendOrigins []string `validate:"min=1,dive,url"`
	PublicBaseURL   string   `validate:"required,url"`
	MaxBodyBytes    int64    `validate:"gt=0"`

	WorkDir       string        `validate:"required"`
	MediaDir      string        `validate:"required"`
	ManimBinary   string        `validate:"required"`
	SceneClass    string        `validate:"required"`
	RenderTimeout time.Duration `validate:"gte=0"`

	AuthProvider            string `validate:"oneof=firebase jwt"`
	JWTSecret               string `validate:"required_if=AuthProvider jwt"`
	FirebaseProjectID       string
	FirebaseCredentialsFile string

	StoreBackend     string `validate:"oneof=firestore postgres postgrest memory"`
	DatabaseURL      string `validate:"required_if=StoreBackend postgres"`
	SupabaseURL      string `validate:"required_if=StoreBackend postgrest"`
	SupabaseKey      string `validate:"required_if=StoreBackend postgrest"`
	CreationsTable   string `validate:"required"`
	ConnectAttempts  int    `validate:"gte=1"`
	ConnectRetryWait time.Duration

	RabbitMQURL string
	EventsQueue string `validate:"required"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Load reads .env (outside production) and the environment, applies
// defaults and validates the result.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// A missing .env is normal; real deployments inject variables directly.
		_ = godotenv.Load()
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	port := getEnv("PORT", "5001")

	workDir := getEnv("WORK_DIR", ".")
	renderTimeout, err := getDuration("RENDER_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	retryWait, err := getDuration("CONNECT_RETRY_WAIT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	maxBody, err := getInt("MAX_BODY_BYTES", 10*1024)
	if err != nil {
		return nil, err
	}
	attempts, err := getInt("CONNECT_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:            port,
		FrontendOrigins: splitList(getEnv("FRONTEND_URL", "http://localhost:5173")),
		PublicBaseURL:   strings.TrimRight(getEnv("RENDER_EXTERNAL_URL", "http://localhost:"+port), "/"),
		MaxBodyBytes:    maxBody,

		WorkDir:       workDir,
		MediaDir:      getEnv("MEDIA_DIR", workDir+"/media"),
		ManimBinary:   getEnv("MANIM_BIN", "manim"),
		SceneClass:    getEnv("SCENE_CLASS", "GeneratedAnimationScene"),
		RenderTimeout: renderTimeout,

		AuthProvider:            getEnv("AUTH_PROVIDER", "firebase"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", "./serviceAccountKey.json"),

		StoreBackend:     getEnv("STORE_BACKEND", "firestore"),
		DatabaseURL:      databaseURL(),
		SupabaseURL:      strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseKey:      os.Getenv("SUPABASE_SERVICE_KEY"),
		CreationsTable:   getEnv("CREATIONS_TABLE", "creations"),
		ConnectAttempts:  int(attempts),
		ConnectRetryWait: retryWait,

		RabbitMQURL: rabbitMQURL(),
		EventsQueue: getEnv("EVENTS_QUEUE", "creation_events"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return fmt.Errorf("validating config: %w", err)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(FormatValidationErrors(violations), "; "))
}

// FormatValidationErrors renders validator errors one line per field.
func FormatValidationErrors(violations validator.ValidationErrors) []string {
	var out []string
	for _, v := range violations {
		line := fmt.Sprintf("field '%s' failed on the '%s' tag", v.Namespace(), v.Tag())
		if v.Param() != "" {
			line = fmt.Sprintf("%s (param: %s)", line, v.Param())
		}
		out = append(out, line)
	}
	return out
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// individual DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "user"),
		getEnv("DB_PASS", "password"),
		getEnv("DB_NAME", "animator"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// rabbitMQURL returns "" when no broker is configured.
func rabbitMQURL() string {
	if u := os.Getenv("RABBITMQ_URL"); u != "" {
		return u
	}
	host := os.Getenv("RABBITMQ_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		getEnv("RABBITMQ_USER", "guest"),
		getEnv("RABBITMQ_PASS", "guest"),
		host,
		getEnv("RABBITMQ_PORT", "5672"),
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", key, raw, err)
	}
	return d, nil
}

func getInt(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q: %w", key, raw, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
