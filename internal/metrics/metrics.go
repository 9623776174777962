// Package metrics repurposes the teacher's BusinessMetrics shape
// (common/metrics/metrics.go) from order/payment counters to pipeline
// stage counters, still built with promauto so each is self-registering.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline holds one counter per pipeline stage transition.
type Pipeline struct {
	ArticlesScraped           prometheus.Counter
	ArticlesPublished         prometheus.Counter
	ArticlesAnalysed          prometheus.Counter
	ArticlesIngestedVector    prometheus.Counter
	ArticlesIngestedRelational prometheus.Counter
	GatewayPushes             *prometheus.CounterVec
	McpToolCalls              *prometheus.CounterVec
}

// NewPipeline creates the Pipeline counters for serviceName, matching the
// teacher's NewBusinessMetrics(serviceName) naming convention.
func NewPipeline(serviceName string) *Pipeline {
	return &Pipeline{
		ArticlesScraped: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_articles_scraped_total",
			Help: "Total number of articles fetched from the source page.",
		}),
		ArticlesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_articles_published_total",
			Help: "Total number of articles published to the analysis queue.",
		}),
		ArticlesAnalysed: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_articles_analysed_total",
			Help: "Total number of articles processed by the LLM analyser.",
		}),
		ArticlesIngestedVector: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_articles_ingested_vector_total",
			Help: "Total number of articles upserted into the vector store.",
		}),
		ArticlesIngestedRelational: promauto.NewCounter(prometheus.CounterOpts{
			Name: serviceName + "_articles_ingested_relational_total",
			Help: "Total number of articles upserted into the relational store.",
		}),
		GatewayPushes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: serviceName + "_gateway_pushes_total",
			Help: "Total number of gateway relay push attempts, by outcome.",
		}, []string{"outcome"}),
		McpToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: serviceName + "_mcp_tool_calls_total",
			Help: "Total number of MCP tool invocations, by tool and outcome.",
		}, []string{"tool", "outcome"}),
	}
}
