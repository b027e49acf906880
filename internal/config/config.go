package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is loaded once at startup and never changes afterwards.
type Config struct {
	HTTPAddr string

	APIToken       string
	AllowedOrigins []string
	AllowedIPs     []string

	MaxContentLength int64 // request body cap, bytes
	MaxNoteLength    int   // note content cap, characters

	RateLimitRead   int // per minute
	RateLimitWrite  int
	RateLimitRename int
	RateLimitDelete int
	RateLimitHour   int
	RateLimitDay    int

	StorageBackend string // postgres | file | memory
	NotesFile      string

	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	LogLevel string
}

func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		APIToken:       getenv("API_TOKEN", "please-change-this-default-token"),
		AllowedOrigins: getenvList("ALLOWED_ORIGINS", []string{"*"}),
		AllowedIPs:     getenvList("ALLOWED_IPS", nil),

		MaxContentLength: getenvInt64("MAX_CONTENT_LENGTH", 1048576),
		MaxNoteLength:    getenvInt("MAX_NOTE_LENGTH", 50000),

		RateLimitRead:   getenvInt("RATE_LIMIT_READ", 60),
		RateLimitWrite:  getenvInt("RATE_LIMIT_WRITE", 30),
		RateLimitRename: getenvInt("RATE_LIMIT_RENAME", 20),
		RateLimitDelete: getenvInt("RATE_LIMIT_DELETE", 10),
		RateLimitHour:   getenvInt("RATE_LIMIT_PER_HOUR", 200),
		RateLimitDay:    getenvInt("RATE_LIMIT_PER_DAY", 1000),

		StorageBackend: getenv("STORAGE_BACKEND", "memory"),
		NotesFile:      getenv("NOTES_FILE", "notes.json"),

		DatabaseURL:     getenv("DATABASE_URL", ""),
		MaxOpenConns:    getenvInt("DB_MAX_OPEN", 20),
		MaxIdleConns:    getenvInt("DB_MAX_IDLE", 10),
		ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return i
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getenvList splits a comma-separated value, dropping empty entries.
func getenvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
