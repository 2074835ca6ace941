package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	defaultConfigPath      = "config.yml"
	interServiceSecretName = "inter_service_secret"
)

// secretsDir - стандартный путь Docker Secrets.
var secretsDir = "/run/secrets"

var validate = validator.New()

type Config struct {
	Log             LogConfig      `yaml:"log"`
	HTTP            HTTPConfig     `yaml:"http"`
	Firebase        FirebaseConfig `yaml:"firebase"`
	RabbitMQ        RabbitMQConfig `yaml:"rabbitmq"`
	Redis           RedisConfig    `yaml:"redis"`
	Dedup           DedupConfig    `yaml:"dedup"`
	DispatchTimeout time.Duration  `yaml:"dispatch_timeout" env:"DISPATCH_TIMEOUT" env-default:"30s"`
	// Пустой секрет отключает проверку X-Internal-Service-Token.
	InterServiceSecret string `yaml:"inter_service_secret" env:"INTER_SERVICE_SECRET"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json" validate:"omitempty,oneof=json console"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8089" validate:"omitempty,numeric"`
	Env  string `yaml:"env" env:"ENV" env-default:"production"`
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsPath string `yaml:"credentials_path" env:"FIREBASE_CREDENTIALS_PATH"` // пусто = Application Default Credentials
	DryRun          bool   `yaml:"dry_run" env:"FCM_DRY_RUN" env-default:"false"`
	// StubMessaging заменяет FCM логирующей заглушкой (локальный запуск с эмулятором Firestore).
	StubMessaging bool `yaml:"stub_messaging" env:"FCM_STUB" env-default:"false"`
}

type RabbitMQConfig struct {
	URI               string `yaml:"uri" env:"RABBITMQ_URI" validate:"omitempty,url"` // пусто = транспорт через очередь выключен
	QueueName         string `yaml:"queue_name" env:"CHAT_EVENTS_QUEUE" env-default:"chat_message_created"`
	WorkerConcurrency int    `yaml:"worker_concurrency" env:"WORKER_CONCURRENCY" env-default:"10" validate:"gte=0"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0" validate:"gte=0,lte=15"`
}

type DedupConfig struct {
	Enabled bool          `yaml:"enabled" env:"DEDUP_ENABLED" env-default:"false"`
	TTL     time.Duration `yaml:"ttl" env:"DEDUP_TTL" env-default:"24h" validate:"gte=0"`
}

// Load читает config.yml (или путь из CONFIG_PATH), а при его отсутствии - только переменные окружения.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	var cfg Config
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		log.Printf("config file %q not found, reading environment only", configPath)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	} else if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if cfg.InterServiceSecret == "" {
		if secret, err := readSecret(interServiceSecretName); err == nil {
			cfg.InterServiceSecret = secret
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	if c.Dedup.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("DEDUP_ENABLED requires REDIS_ADDR")
	}
	if c.RabbitMQ.URI != "" && c.RabbitMQ.WorkerConcurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", c.RabbitMQ.WorkerConcurrency)
	}
	if c.DispatchTimeout <= 0 {
		return fmt.Errorf("DISPATCH_TIMEOUT must be positive, got %s", c.DispatchTimeout)
	}
	return nil
}

// readSecret читает секрет из файла Docker Secrets.
func readSecret(name string) (string, error) {
	filePath := filepath.Join(secretsDir, name)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
