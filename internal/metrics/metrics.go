package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_tasks_created_total",
		Help: "Total number of translation tasks created",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_tasks_completed_total",
		Help: "Total number of translation tasks completed",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_tasks_failed_total",
		Help: "Total number of translation tasks failed",
	})

	ChunksProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_chunks_processed_total",
		Help: "Total number of audio chunks processed successfully",
	})

	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_translation_stage_failures_total",
		Help: "Total number of pipeline stage failures by stage",
	}, []string{"stage"})

	DenoiseFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_denoise_fallbacks_total",
		Help: "Total number of chunks processed with raw audio after a denoise failure",
	})

	ChunkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audio_translation_chunk_processing_seconds",
		Help:    "Per-chunk pipeline processing duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_translation_validation_rejections_total",
		Help: "Total number of submissions rejected before a task was created",
	})
)
