// internal/ai/telemetry.go
package ai

import (
	"time"

	"fleet-backoffice/internal/common/metrics"
)

// recordAttempt is a best-effort side channel by contract: it logs and
// counts one provider attempt, and any failure inside it is swallowed so
// telemetry can never fail or block a caller.
func (o *Orchestrator) recordAttempt(task TaskType, provider string, result Result, elapsed time.Duration) {
	defer func() {
		_ = recover()
	}()

	outcome := "success"
	if !result.Success {
		outcome = "failure"
	}

	metrics.AIRequestsTotal.WithLabelValues(string(task), provider, outcome).Inc()
	metrics.AIRequestDuration.WithLabelValues(string(task), provider).Observe(elapsed.Seconds())

	fields := map[string]interface{}{
		"taskType": task,
		"provider": provider,
		"outcome":  outcome,
		"elapsed":  elapsed.Milliseconds(),
	}
	if result.Err != nil {
		fields["error"] = result.Err.Error()
	}
	o.logger.Info("provider attempt", fields)
}
