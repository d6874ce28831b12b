package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps upstream lookup fetches in X-Ray subsegments so slow or
// failing listing-API calls show up per lookup kind on the trace map.
type Tracer struct {
	serviceName string
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string) *Tracer {
	return &Tracer{
		serviceName: serviceName,
	}
}

// TraceFetch runs fn inside a subsegment named upstream.<kind>,
// annotated with the lookup kind and the service name so traces can be
// filtered per collection. Without an active parent segment (local
// runs, tests) fn runs untraced.
func (t *Tracer) TraceFetch(ctx context.Context, kind string, fn func(context.Context) error) error {
	ctx, seg := xray.BeginSubsegment(ctx, "upstream."+kind)
	if seg == nil {
		return fn(ctx)
	}

	seg.AddAnnotation("lookup_kind", kind)
	seg.AddAnnotation("service", t.serviceName)

	err := fn(ctx)
	seg.Close(err)
	return err
}
