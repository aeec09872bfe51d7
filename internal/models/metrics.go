package models

import "time"

// SystemMetrics is the instrumentation snapshot served on the analytics surface.
type SystemMetrics struct {
	CacheHitRatio                 float64   `json:"cache_hit_ratio"`
	CacheHits                     uint64    `json:"cache_hits"`
	CacheMisses                   uint64    `json:"cache_misses"`
	RequestsTotal                 uint64    `json:"requests_total"`
	AverageRequestDurationMs      float64   `json:"average_request_duration_ms"`
	UpstreamCallCount             uint64    `json:"upstream_call_count"`
	AverageUpstreamCallDurationMs float64   `json:"average_upstream_call_duration_ms"`
	LiveEventsTotal               uint64    `json:"live_events_total"`
	Goroutines                    int       `json:"goroutines"`
	GeneratedAt                   time.Time `json:"generated_at"`
}
