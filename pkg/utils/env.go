package utils

import (
	"os"
	"strconv"
	"time"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt reads an integer environment variable, returning fallback when it is unset or malformed.
func GetenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		LogWarn("Ignoring malformed integer environment variable", map[string]interface{}{"key": key, "value": value})
		return fallback
	}
	return parsed
}

// GetenvHours reads a whole number of hours and returns it as a duration.
func GetenvHours(key string, fallback int) time.Duration {
	return time.Duration(GetenvInt(key, fallback)) * time.Hour
}
