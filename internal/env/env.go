package env

import (
	"os"
	"strconv"
	"time"
)

func GetStringOrDefault(key string, defaultVal string) string {
	if val, found := os.LookupEnv(key); found {
		return val
	}

	return defaultVal
}

func GetIntOrDefault(key string, defaultVal int) int {
	val, found := os.LookupEnv(key)
	if !found {
		return defaultVal
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return intVal
}

func GetDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val, found := os.LookupEnv(key)
	if !found {
		return defaultVal
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return duration
}
