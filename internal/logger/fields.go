package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider      = "ai_provider"
	FieldModel         = "ai_model"
	FieldCandidateID   = "candidate_id"
	FieldCandidateName = "candidate_name"
)

// StringField is a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields. Keys and values are
// trimmed; pairs with an empty key or value are skipped.
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

// WithFields attaches fields to logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AIFields describes the AI provider and model.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// CandidateFields identifies a candidate in log entries.
func CandidateFields(id, name string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidateID, Value: id},
		StringField{Key: FieldCandidateName, Value: name},
	)
}

func WithAIFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, AIFields(provider, model)...)
}

func WithCandidate(logger *zap.Logger, id, name string) *zap.Logger {
	return WithFields(logger, CandidateFields(id, name)...)
}
