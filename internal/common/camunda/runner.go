// internal/common/camunda/runner.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"admissions-engine/internal/common/errors"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/metrics"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/common/validation"
)

// completeRetry keeps job completion snappy; Zeebe re-activates the job on timeout anyway.
var completeRetry = &RetryConfig{
	MaxRetries: 2,
	BaseDelay:  200 * time.Millisecond,
	MaxDelay:   1 * time.Second,
}

// JobRunner is the shared decode, execute, complete or fail pipeline used by every worker.
type JobRunner struct {
	taskType string
	schema   *validation.Schema
	timeout  time.Duration
	obs      *observability.Observability
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

// NewJobRunner builds a runner. schema and obs may be nil.
func NewJobRunner(taskType string, schema *validation.Schema, timeout time.Duration, obs *observability.Observability, log logger.Logger) *JobRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JobRunner{
		taskType: taskType,
		schema:   schema,
		timeout:  timeout,
		obs:      obs,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

// Decode validates the job variables against the schema and unmarshals them into input.
func (r *JobRunner) Decode(variables string, input interface{}) error {
	if r.schema != nil {
		if err := r.schema.ValidateVariables(variables); err != nil {
			return err
		}
	}
	if variables == "" {
		variables = "{}"
	}
	if err := json.Unmarshal([]byte(variables), input); err != nil {
		return errors.NewInvalidInputError("parse input: " + err.Error())
	}
	return nil
}

// Run decodes the job into input, calls exec and reports the outcome to Zeebe.
func (r *JobRunner) Run(client worker.JobClient, job entities.Job, input interface{}, exec func(ctx context.Context) (interface{}, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	ctx, end := r.startSpan(ctx, job)

	r.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	output, err := r.execute(ctx, job, input, exec)
	duration := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(duration.Seconds())

	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(stdErr.Code)).Inc()
		r.record(ctx, duration, "failed")
		end(err)
		r.errors.HandleJobError(ctx, client, job, stdErr)
		return
	}

	if err := r.complete(ctx, client, job, output); err != nil {
		r.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		r.record(ctx, duration, "complete_failed")
		end(err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.record(ctx, duration, "success")
	end(nil)
	r.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":     job.Key,
		"durationMs": duration.Milliseconds(),
	})
}

func (r *JobRunner) execute(ctx context.Context, job entities.Job, input interface{}, exec func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if err := r.Decode(job.Variables, input); err != nil {
		return nil, err
	}
	return exec(ctx)
}

func (r *JobRunner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	_, err := executeWithRetry(ctx, completeRetry, func(ctx context.Context) (interface{}, error) {
		cmd, err := client.NewCompleteJobCommand().
			JobKey(job.Key).
			VariablesFromObject(output)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	}, "complete job")
	return err
}

func (r *JobRunner) startSpan(ctx context.Context, job entities.Job) (context.Context, func(error)) {
	if r.obs == nil {
		return ctx, func(error) {}
	}
	ctx, span := r.obs.StartSpan(ctx, r.taskType,
		attribute.Int64("zeebe.job_key", job.Key),
		attribute.Int64("zeebe.process_instance_key", job.ProcessInstanceKey),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (r *JobRunner) record(ctx context.Context, d time.Duration, status string) {
	if r.obs == nil {
		return
	}
	r.obs.RecordJobProcessed(ctx, r.taskType, status)
	r.obs.RecordJobDuration(ctx, r.taskType, d, status)
}
