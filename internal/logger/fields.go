package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Structured log field keys shared across the ranking pipeline.
const (
	FieldProvider      = "ai_provider"
	FieldModel         = "ai_model"
	FieldBatchID       = "batch_id"
	FieldCandidate     = "candidate"
	FieldDocumentIndex = "document_index"
)

// StringField is a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Keys and values are
// trimmed and entries with an empty key or value are dropped.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// OracleFields describe the provider and model behind the scoring oracle.
func OracleFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithOracleFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, OracleFields(provider, model)...)
}

func BatchFields(batchID string) []zap.Field {
	return StringFields(StringField{Key: FieldBatchID, Value: batchID})
}

// CandidateFields identify one document of a batch. The index is always set
// since names may repeat.
func CandidateFields(index int, name string) []zap.Field {
	fields := []zap.Field{zap.Int(FieldDocumentIndex, index)}
	return append(fields, StringFields(StringField{Key: FieldCandidate, Value: name})...)
}
