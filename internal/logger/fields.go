package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"

	FieldEducation = "education"
	FieldSector    = "sector"
	FieldState     = "state"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describes an inbound HTTP request.
func RequestFields(requestID, method, path string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRequestID, Value: requestID},
		StringField{Key: FieldMethod, Value: method},
		StringField{Key: FieldPath, Value: path},
	)
}

// ProfileFields describes the non-sensitive part of a ranking profile.
// Empty values are dropped to keep entries compact.
func ProfileFields(education, sector, state string) []zap.Field {
	return StringFields(
		StringField{Key: FieldEducation, Value: education},
		StringField{Key: FieldSector, Value: sector},
		StringField{Key: FieldState, Value: state},
	)
}

// ForRequest returns a child logger tagged with the request fields.
func ForRequest(logger *zap.Logger, requestID, method, path string) *zap.Logger {
	return WithFields(logger, RequestFields(requestID, method, path)...)
}
