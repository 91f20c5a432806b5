package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var env map[string]string

// SetupEnvFile loads the first .env file it finds. A missing file is not
// fatal: containers usually pass everything through the OS environment.
func SetupEnvFile() {
	envFiles := []string{
		".env",
		"../.env",
		"../../.env",
	}

	for _, envFile := range envFiles {
		values, err := godotenv.Read(envFile)
		if err == nil {
			env = values
			log.Printf("Loaded environment from %s", envFile)
			return
		}
	}

	log.Println("No .env file found, using OS environment")
}

// Config returns the value for key from the loaded .env map, then the OS
// environment, then def.
func Config(key, def string) string {
	if val, ok := env[key]; ok && val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func ConfigInt(key string, def int) int {
	raw := Config(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func ConfigFloat(key string, def float64) float64 {
	raw := Config(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Invalid number for %s=%q, using %v", key, raw, def)
		return def
	}
	return val
}

// ConfigDuration accepts Go duration strings ("8s", "5m").
func ConfigDuration(key string, def time.Duration) time.Duration {
	raw := Config(key, "")
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, raw, def)
		return def
	}
	return val
}

func ConfigBool(key string, def bool) bool {
	raw := Config(key, "")
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}
