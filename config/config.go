package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	JWTSecret         string
	BackendBaseURL    string
	RabbitMQURL       string
	CheckoutExchange  string
	CheckoutQueue     string
	DeadLetterQueue   string
	DelayExchange     string
	MaxPriority       int
	ShippingFee       int64
	FreeShippingOver  int64
	PaymentCheckDelay int // minutes
}

func LoadConfig() *Config {
	return &Config{
		DBUser:            getEnv("DB_USER", "root"),
		DBPassword:        getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", "xxxxx"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBName:            getEnv("DB_NAME", "storefront"),
		JWTSecret:         getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "G9mCQ19ogTkuWQY9jH2wGZASuGi/JrhstQaZy4k/01o="),
		BackendBaseURL:    getEnv("BACKEND_BASE_URL", "http://localhost:5000/api"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", "amqp://admin:rabbitmq@IP:5672/"),
		CheckoutExchange:  getEnv("CHECKOUT_EXCHANGE", "checkout_exchange"),
		CheckoutQueue:     getEnv("CHECKOUT_QUEUE", "checkout_queue"),
		DeadLetterQueue:   getEnv("DEAD_LETTER_QUEUE", "dead_letter_queue"),
		DelayExchange:     getEnv("DELAY_EXCHANGE", "delay_exchange"),
		MaxPriority:       10,
		ShippingFee:       getEnvInt64("SHIPPING_FEE", 30000),         // VND
		FreeShippingOver:  getEnvInt64("FREE_SHIPPING_OVER", 2000000), // VND, strictly greater than
		PaymentCheckDelay: 15,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return getEnv(envKey, defaultValue)
}
