package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by COUNCIL_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("COUNCIL_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func RedisAddr() string {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return "localhost:6379"
	}
	return addr
}

func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

// PersonasPath returns the persona catalogue file.
func PersonasPath() string {
	p := os.Getenv("PERSONAS_PATH")
	if p == "" {
		return "configs/personas.yaml"
	}
	return p
}

// PoliciesPath returns the decision-type policy table file.
func PoliciesPath() string {
	p := os.Getenv("POLICIES_PATH")
	if p == "" {
		return "configs/policies.yaml"
	}
	return p
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// SpendCeiling returns the hard budget ceiling in dollars per billing
// period. Defaults to 25.
func SpendCeiling() float64 {
	v, err := strconv.ParseFloat(os.Getenv("SPEND_CEILING_USD"), 64)
	if err != nil || v < 0 {
		return 25
	}
	return v
}

// BudgetPeriod returns the billing period the ceiling covers.
// Defaults to 30 days.
func BudgetPeriod() time.Duration {
	d, err := time.ParseDuration(os.Getenv("BUDGET_PERIOD"))
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// CheapCostPer1K returns the cheap-tier cost per 1000 prompt characters.
func CheapCostPer1K() float64 {
	v, err := strconv.ParseFloat(os.Getenv("CHEAP_COST_PER_1K"), 64)
	if err != nil || v < 0 {
		return 0.002
	}
	return v
}

// PremiumCostPer1K returns the premium-tier cost per 1000 prompt characters.
func PremiumCostPer1K() float64 {
	v, err := strconv.ParseFloat(os.Getenv("PREMIUM_COST_PER_1K"), 64)
	if err != nil || v < 0 {
		return 0.03
	}
	return v
}

// VoteTimeout returns the per-persona inference timeout.
// Defaults to 10s.
func VoteTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("VOTE_TIMEOUT"))
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// CollectTimeout returns the aggregate vote-collection deadline.
// Defaults to 60s.
func CollectTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("COLLECT_TIMEOUT"))
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// VoteConcurrency returns the fan-out limit for in-flight inference calls.
// Defaults to 10.
func VoteConcurrency() int {
	n, err := strconv.Atoi(os.Getenv("VOTE_CONCURRENCY"))
	if err != nil || n <= 0 {
		return 10
	}
	return n
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
