package env

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a .env file into the process environment. Variables already set
// win over the file. A missing file is not an error.
func Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("%s not found, using process environment only", path)
		return nil
	}
	return godotenv.Load(path)
}

func GetString(key, fallback string) string {
	value, ok := os.LookupEnv(key)

	if !ok {
		log.Printf("%s not found, defaulting to %s", key, fallback)
		return fallback
	}

	return value
}

// GetSecret is GetString without echoing the fallback to the log.
func GetSecret(key, fallback string) string {
	value, ok := os.LookupEnv(key)

	if !ok {
		log.Printf("%s not found, using default", key)
		return fallback
	}

	return value
}

func GetInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	valueAsInt, err := strconv.Atoi(value)

	if err != nil {
		return fallback
	}

	return valueAsInt
}

func GetInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	valueAsInt, err := strconv.ParseInt(value, 10, 64)

	if err != nil {
		return fallback
	}

	return valueAsInt
}

func GetBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	valueAsBool, err := strconv.ParseBool(value)

	if err != nil {
		return fallback
	}

	return valueAsBool
}

// GetDuration parses values like "5m" or "30s".
func GetDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)

	if !ok {
		return fallback
	}

	valueAsDuration, err := time.ParseDuration(value)

	if err != nil {
		return fallback
	}

	return valueAsDuration
}
