package service

import (
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
)

// storeFailure logs a failed store operation and wraps it for callers
func storeFailure(logger *zap.Logger, op, key string, err error) error {
	logger.Error("Store operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return &domain.StoreError{Op: op, Key: key, Err: err}
}

// lookupFailure logs a failed read and answers with the not-found signal, so a
// broken store never surfaces from a single-record lookup
func lookupFailure(logger *zap.Logger, op, entity, key string, err error) error {
	logger.Error("Store operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return &domain.NotFoundError{Entity: entity, Key: key}
}
