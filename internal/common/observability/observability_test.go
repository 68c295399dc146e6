package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestStartSpan_WithoutJaeger(t *testing.T) {
	obs := New("lifecycle-test", "")
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "apply-course", attribute.String("job", "1"))
	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.End()

	obs.RecordJobProcessed(ctx, "apply-course", "success")
	obs.RecordJobDuration(ctx, "apply-course", 15*time.Millisecond, "success")
}

func TestStartSpan_WithJaegerEndpoint(t *testing.T) {
	obs := New("lifecycle-test", "http://127.0.0.1:14268/api/traces")
	require.NotNil(t, obs.tracerProvider)

	_, span := obs.StartSpan(context.Background(), "publish-admissions")
	span.End()
	obs.Shutdown()
}
