package jaeger

import (
	"go.opentelemetry.io/otel/exporters/jaeger"
)

const defaultEndpoint = "http://jaeger:14268/api/traces"

func NewJaeger(endpoint string) (*jaeger.Exporter, error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	return jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(endpoint),
	))
}

func MustNewJaeger(endpoint string) *jaeger.Exporter {
	exp, err := NewJaeger(endpoint)
	if err != nil {
		panic(err)
	}

	return exp
}
