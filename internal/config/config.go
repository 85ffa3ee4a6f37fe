package config

import "os"

type AgriTraceConfig struct {
	Port         string
	PostgresCfg  PostgresConfig
	RedisCfg     RedisConfig
	RabbitMQCfg  RabbitMQConfig
	MinioCfg     MinioConfig
	AuthCfg      AuthConfig
	WeatherCfg   WeatherConfig
	RoutingCfg   RoutingConfig
	GeminiAPICfg GeminiAPIConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type MinioConfig struct {
	MinioURL         string
	MinioAccessKey   string
	MinioSecretKey   string
	MinioLocation    string
	MinioSecure      string
	MinioResourceURL string
}

type AuthConfig struct {
	JWTSecret string
}

type WeatherConfig struct {
	APIKey string
}

type RoutingConfig struct {
	APIKey string
}

type GeminiAPIConfig struct {
	APIKeys   []string
	FlashName string
}

func New() *AgriTraceConfig {
	geminiKeys := []string{}
	if key := os.Getenv("GEMINI_KEY"); key != "" {
		geminiKeys = append(geminiKeys, key)
	}
	if key := os.Getenv("GEMINI_KEY_SECONDARY"); key != "" {
		geminiKeys = append(geminiKeys, key)
	}

	return &AgriTraceConfig{
		Port: getEnvOrDefault("PORT", "8084"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "agritrace"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		MinioCfg: MinioConfig{
			MinioURL:         getEnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
			MinioAccessKey:   getEnvOrDefault("MINIO_ACCESS_KEY", "minio"),
			MinioSecretKey:   getEnvOrDefault("MINIO_SECRET_KEY", "minio123"),
			MinioLocation:    getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			MinioSecure:      getEnvOrDefault("MINIO_SECURE", "false"),
			MinioResourceURL: getEnvOrDefault("MINIO_RESOURCE_URL", "http://localhost:9000/"),
		},
		AuthCfg: AuthConfig{
			JWTSecret: getEnvOrDefault("JWT_SECRET", ""),
		},
		WeatherCfg: WeatherConfig{
			APIKey: getEnvOrDefault("WEATHER_API_KEY", ""),
		},
		RoutingCfg: RoutingConfig{
			APIKey: getEnvOrDefault("ROUTING_API_KEY", ""),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   geminiKeys,
			FlashName: getEnvOrDefault("GEMINI_FLASH_MODEL", "gemini-2.5-flash"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
