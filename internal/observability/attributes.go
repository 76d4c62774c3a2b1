// Package observability provides metrics for changelog generation.
package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys
const (
	attrOrigin  = "origin"
	attrSuccess = "success"
	attrPhase   = "phase"
)

func originAttr(origin string) attribute.KeyValue {
	return attribute.String(attrOrigin, origin)
}

func successAttr(success bool) attribute.KeyValue {
	return attribute.Bool(attrSuccess, success)
}

func phaseAttr(phase string) attribute.KeyValue {
	return attribute.String(attrPhase, phase)
}

// WithOrigin returns a metric option with the origin attribute.
func WithOrigin(origin string) metric.MeasurementOption {
	return metric.WithAttributes(originAttr(origin))
}

// WithSuccess returns a metric option with the success attribute.
func WithSuccess(success bool) metric.MeasurementOption {
	return metric.WithAttributes(successAttr(success))
}
