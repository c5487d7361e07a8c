package config

import (
	"testing"
	"time"
)

var keys = []string{
	"HTTP_ADDR", "SERVICE_NAME", "ENV", "LOG_LEVEL", "LOG_FILE", "SHUTDOWN_TIMEOUT",
	"DOWNSTREAM_MODE", "CATALOG_URL", "INVENTORY_URL", "ORDER_URL", "PAYMENT_URL",
	"DOWNSTREAM_TIMEOUT_MS", "CATALOG_LOOKUP_CONCURRENCY",
	"EVENT_SINK", "REDIS_ADDR", "EVENT_CHANNEL", "EVENT_QUEUE_SIZE",
	"COMPLETION_LOCK", "COMPLETION_LOCK_TTL_MS",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	if c.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr default")
	}
	if c.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout default")
	}
	if c.DownstreamMode != DownstreamHTTP || c.DownstreamTimeout != 5*time.Second {
		t.Fatalf("downstream defaults: %q %v", c.DownstreamMode, c.DownstreamTimeout)
	}
	if c.CatalogLookups != 0 {
		t.Fatalf("CatalogLookups default")
	}
	if c.EventSink != SinkLog || c.EventChannel != "ecom-order-events" || c.EventQueueSize != 1024 {
		t.Fatalf("event defaults: %+v", c)
	}
	if c.CompletionLock != LockNone || c.CompletionLockTTL != 30*time.Second {
		t.Fatalf("lock defaults")
	}
	if c.NeedsRedis() {
		t.Fatalf("defaults should not need redis")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("SHUTDOWN_TIMEOUT", "2")
	t.Setenv("DOWNSTREAM_MODE", "Memory")
	t.Setenv("ORDER_URL", "http://orders:8080/")
	t.Setenv("DOWNSTREAM_TIMEOUT_MS", "250")
	t.Setenv("CATALOG_LOOKUP_CONCURRENCY", "4")
	t.Setenv("EVENT_SINK", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("COMPLETION_LOCK", "local")
	c := Load()
	if c.HTTPAddr != ":9090" || c.ShutdownTimeout != 2*time.Second {
		t.Fatalf("server env")
	}
	if c.DownstreamMode != DownstreamMemory {
		t.Fatalf("DownstreamMode = %q", c.DownstreamMode)
	}
	if c.OrderURL != "http://orders:8080" {
		t.Fatalf("OrderURL = %q", c.OrderURL)
	}
	if c.DownstreamTimeout != 250*time.Millisecond || c.CatalogLookups != 4 {
		t.Fatalf("downstream env")
	}
	if c.EventSink != SinkRedis || !c.NeedsRedis() {
		t.Fatalf("event sink env")
	}
	if c.CompletionLock != LockLocal {
		t.Fatalf("CompletionLock = %q", c.CompletionLock)
	}
}

func TestLoadInvalidFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOWNSTREAM_TIMEOUT_MS", "soon")
	t.Setenv("EVENT_SINK", "kafka")
	t.Setenv("COMPLETION_LOCK", "zookeeper")
	c := Load()
	if c.DownstreamTimeout != 5*time.Second {
		t.Fatalf("DownstreamTimeout fallback")
	}
	if c.EventSink != SinkLog || c.CompletionLock != LockNone {
		t.Fatalf("enum fallback: %q %q", c.EventSink, c.CompletionLock)
	}
}
