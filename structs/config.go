package structs

import "time"

type Config struct {
	Server    *ServerConfig
	Cors      *CorsConfig
	Backend   *BackendConfig
	Live      *LiveConfig
	Drafts    *DraftConfig
	RateLimit *RateLimitConfig
}

type ServerConfig struct {
	AppName         string        // Shop Admin Console
	Environment     string        // development, production
	Port            string        // :8082
	ReadTimeout     time.Duration // in seconds
	WriteTimeout    time.Duration // in seconds
	IdleTimeout     time.Duration // in seconds
	ShutdownTimeout time.Duration // in seconds
	MaxHeaderBytes  int           // in bytes
	MaxBodyBytes    int64         // in bytes
	TrustProxy      bool          // take the client address from X-Forwarded-For / X-Real-IP
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

// BackendConfig points at the product/order REST backend
type BackendConfig struct {
	BaseURL string        // https://shop.example.com
	Prefix  string        // /api/v1
	Timeout time.Duration // 0 disables the client timeout

	CircuitBreaker             bool
	CircuitBreakerTimeout      time.Duration // how long the breaker stays open
	CircuitBreakerMinRequests  uint32
	CircuitBreakerFailureRatio float64
}

// LiveConfig selects the push channel transport for order updates
type LiveConfig struct {
	Transport      string        // sse, redis, none
	EventsPath     string        // /events, relative to the backend base URL
	ReconnectDelay time.Duration // SSE default reconnection time

	RedisAddress  string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string // channel name prefix, e.g. "orders:"
}

type DraftConfig struct {
	TTL            time.Duration // abandoned drafts are swept after this
	MaxUploadBytes int64
}

type RateLimitConfig struct {
	Enabled bool
	RPS     int
	Burst   int
}
