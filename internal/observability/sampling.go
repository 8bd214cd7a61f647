package observability

import (
	"os"
	"strconv"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Standard OTEL sampler variables; read here rather than in config.
const (
	envTracesSampler    = "OTEL_TRACES_SAMPLER"
	envTracesSamplerArg = "OTEL_TRACES_SAMPLER_ARG"
)

const defaultTraceIDRatio = 1.0

// newSampler maps OTEL_TRACES_SAMPLER to a Sampler. Empty or unknown values give
// parentbased_always_on.
func newSampler() sdktrace.Sampler {
	ratio := parseTraceIDRatio(os.Getenv(envTracesSamplerArg))

	switch os.Getenv(envTracesSampler) {
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.TraceIDRatioBased(ratio)
	case "parentbased_traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	case "parentbased_always_off":
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// parseTraceIDRatio returns defaultTraceIDRatio for missing, unparsable or out-of-range args.
func parseTraceIDRatio(s string) float64 {
	if s == "" {
		return defaultTraceIDRatio
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return defaultTraceIDRatio
	}

	return f
}
