// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DownstreamHTTP   = "http"
	DownstreamMemory = "memory"

	SinkLog   = "log"
	SinkRedis = "redis"

	LockNone  = "none"
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds configuration knobs for the HTTP server, downstream gateways and event delivery.
type Config struct {
	HTTPAddr        string
	ServiceName     string
	Env             string
	LogLevel        string
	LogFile         string
	ShutdownTimeout time.Duration

	DownstreamMode    string
	CatalogURL        string
	InventoryURL      string
	OrderURL          string
	PaymentURL        string
	DownstreamTimeout time.Duration

	// CatalogLookups bounds concurrent inventory lookups; 0 keeps the aggregator default.
	CatalogLookups int

	EventSink      string
	RedisAddr      string
	EventChannel   string
	EventQueueSize int

	CompletionLock    string
	CompletionLockTTL time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// oneof returns the lowercased value of key when it is among allowed, def otherwise.
func oneof(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(getenv(key, def)))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return def
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ServiceName:     getenv("SERVICE_NAME", "ecom-compositor"),
		Env:             getenv("ENV", "dev"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFile:         getenv("LOG_FILE", ""),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 10),

		DownstreamMode:    oneof("DOWNSTREAM_MODE", DownstreamHTTP, DownstreamHTTP, DownstreamMemory),
		CatalogURL:        strings.TrimRight(getenv("CATALOG_URL", "http://localhost:8810"), "/"),
		InventoryURL:      strings.TrimRight(getenv("INVENTORY_URL", "http://localhost:8811"), "/"),
		OrderURL:          strings.TrimRight(getenv("ORDER_URL", "http://localhost:8812"), "/"),
		PaymentURL:        strings.TrimRight(getenv("PAYMENT_URL", "http://localhost:8813"), "/"),
		DownstreamTimeout: durenvms("DOWNSTREAM_TIMEOUT_MS", 5000),
		CatalogLookups:    atoienv("CATALOG_LOOKUP_CONCURRENCY", 0),

		EventSink:      oneof("EVENT_SINK", SinkLog, SinkLog, SinkRedis),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		EventChannel:   getenv("EVENT_CHANNEL", "ecom-order-events"),
		EventQueueSize: atoienv("EVENT_QUEUE_SIZE", 1024),

		CompletionLock:    oneof("COMPLETION_LOCK", LockNone, LockNone, LockLocal, LockRedis),
		CompletionLockTTL: durenvms("COMPLETION_LOCK_TTL_MS", 30000),
	}
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.EventSink == SinkRedis || c.CompletionLock == LockRedis || c.RedisAddr != ""
}
