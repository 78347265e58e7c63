package mongo

import (
	"errors"
	"fmt"
	"strings"

	"alcyxob/studio-calendar/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes raised when a query cannot be served without an index.
const (
	codeIndexNotFound         = 27
	codeNoQueryExecutionPlans = 291
)

// mapError translates driver errors into repository errors, keeping the
// driver message for diagnostics.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	if isMissingIndex(err) {
		return fmt.Errorf("%w: %v", repository.ErrMissingIndex, err)
	}
	return err
}

func isMissingIndex(err error) bool {
	var se mongo.ServerError
	if errors.As(err, &se) {
		if se.HasErrorCode(codeIndexNotFound) || se.HasErrorCode(codeNoQueryExecutionPlans) {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "requires an index") || strings.Contains(msg, "index required")
}
