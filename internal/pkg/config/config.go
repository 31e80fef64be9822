package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, batch sizes, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	CORS      CORSConfig
	Log       LogConfig
	Saga      SagaConfig
	Admission AdmissionConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers           []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	RankingTopic      string   `envconfig:"KAFKA_RANKING_TOPIC" default:"product-ranking"`
	DataPlatformTopic string   `envconfig:"KAFKA_DATA_PLATFORM_TOPIC" default:"data-platform-transfer"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

// SagaConfig bounds how long the order saga waits on each owning subsystem.
type SagaConfig struct {
	StepTimeout         time.Duration `envconfig:"SAGA_STEP_TIMEOUT" default:"5s"`
	CompensationTimeout time.Duration `envconfig:"SAGA_COMPENSATION_TIMEOUT" default:"3s"`
}

// AdmissionConfig controls the coupon issuance queue and its drain worker.
type AdmissionConfig struct {
	DrainInterval time.Duration `envconfig:"ADMISSION_DRAIN_INTERVAL" default:"100ms"`
	BatchSize     int           `envconfig:"ADMISSION_BATCH_SIZE" default:"10"`
	LockWait      time.Duration `envconfig:"ADMISSION_LOCK_WAIT" default:"10s"`
	LockHold      time.Duration `envconfig:"ADMISSION_LOCK_HOLD" default:"30s"`
	ResultTTL     time.Duration `envconfig:"ADMISSION_RESULT_TTL" default:"30m"`
	QueueTTL      time.Duration `envconfig:"ADMISSION_QUEUE_TTL" default:"25h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Tokyo",
		},
		Redis: RedisConfig{
			Addr: "localhost:16380",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		Saga: SagaConfig{
			StepTimeout:         time.Second,
			CompensationTimeout: time.Second,
		},
		Admission: AdmissionConfig{
			DrainInterval: 10 * time.Millisecond,
			BatchSize:     10,
			LockWait:      time.Second,
			LockHold:      5 * time.Second,
			ResultTTL:     time.Minute,
			QueueTTL:      time.Hour,
		},
	}
}
