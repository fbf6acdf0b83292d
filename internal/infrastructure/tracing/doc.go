/*
Package tracing provides lightweight request tracing.

Every HTTP request and every message received on the channel gets a span
identified by a ULID. Finished spans are collected asynchronously and written
to the structured log, so a slow or failing file operation can be followed
from the front end's request to the host's log line.

# Usage

	tracer := tracing.New("host", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "list-files")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Propagation

Trace context travels in the X-Trace-ID and X-Span-ID headers. The HTTP
middleware echoes both on every response.
*/
package tracing
