package telemetry

// Config carries the tracing settings the serve command maps from the
// telemetry section of the server configuration.
type Config struct {
	// Enabled gates the whole tracer setup; when false Init returns a
	// no-op shutdown and installs nothing
	Enabled bool

	// ServiceName identifies this process in the trace backend
	ServiceName string

	// ServiceVersion is the build version stamped at link time
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address (host:port)
	Endpoint string

	// Insecure disables TLS toward the collector
	Insecure bool

	// SampleRate is the head-sampling ratio in [0.0, 1.0]
	SampleRate float64
}
