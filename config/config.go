package config

import (
	"shopadmin_server/structs"
	"sync"
	"time"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = load()
	})
	return configInstance
}

func load() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:         getEnvAsString("APP_NAME", "ShopAdmin_no_env"),
			Environment:     getEnvAsString("APP_ENV", "development"),
			Port:            getEnvAsString("APP_PORT", ":8082"),
			ReadTimeout:     getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 0), // the order event relay is long-lived
			IdleTimeout:     getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
			ShutdownTimeout: getEnvAsTimeDuration("SERVER_SHUTDOWN_TIME_OUT", 10*time.Second),
			MaxHeaderBytes:  getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20),         // 1 MB
			MaxBodyBytes:    int64(getEnvAsInt("SERVER_MAX_BODY_BYTES", 32*1024*1024)), // 32 MB, image uploads
			TrustProxy:      getEnvAsBool("SERVER_TRUST_PROXY", false),
		},
		Cors: &structs.CorsConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
			AllowedMethods:   getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept"}),
			ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
		},
		Backend: &structs.BackendConfig{
			BaseURL:                    getEnvAsString("API_BASE_URL", "http://localhost:5000"),
			Prefix:                     getEnvAsString("API_PREFIX", "/api/v1"),
			Timeout:                    getEnvAsTimeDuration("API_TIMEOUT", 30*time.Second),
			CircuitBreaker:             getEnvAsBool("API_CIRCUIT_BREAKER", false),
			CircuitBreakerTimeout:      getEnvAsTimeDuration("API_CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
			CircuitBreakerMinRequests:  uint32(getEnvAsInt("API_CIRCUIT_BREAKER_MIN_REQUESTS", 5)),
			CircuitBreakerFailureRatio: getEnvAsFloat("API_CIRCUIT_BREAKER_FAILURE_RATIO", 0.5),
		},
		Live: &structs.LiveConfig{
			Transport:      getEnvAsString("LIVE_TRANSPORT", "sse"),
			EventsPath:     getEnvAsString("LIVE_EVENTS_PATH", "/events"),
			ReconnectDelay: getEnvAsTimeDuration("LIVE_RECONNECT_DELAY", 3*time.Second),
			RedisAddress:   getEnvAsString("LIVE_REDIS_ADDRESS", "localhost:6379"),
			RedisUsername:  getEnvAsString("LIVE_REDIS_USERNAME", ""),
			RedisPassword:  getEnvAsString("LIVE_REDIS_PASSWORD", ""),
			RedisDB:        getEnvAsInt("LIVE_REDIS_DB", 0),
			RedisPrefix:    getEnvAsString("LIVE_REDIS_PREFIX", ""),
		},
		Drafts: &structs.DraftConfig{
			TTL:            getEnvAsTimeDuration("DRAFT_TTL", 2*time.Hour),
			MaxUploadBytes: int64(getEnvAsInt("DRAFT_MAX_UPLOAD_BYTES", 10*1024*1024)), // 10 MB
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsInt("RATE_LIMIT_RPS", 20),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
	}
}

func GetLogLevel() string {
	if GetConfig().Server.Environment == "production" {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
