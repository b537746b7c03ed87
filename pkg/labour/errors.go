package labour

import (
	"errors"
	"fmt"

	"github.com/arnavshah/labour-scheduler/pkg/repository"
)

var (
	// ErrNotFound means a referenced worker, task, shift or alert does not
	// exist or belongs to another user.
	ErrNotFound = errors.New("not found")
	// ErrValidation means malformed input reached the engine.
	ErrValidation = errors.New("validation failed")
	// ErrDataStore wraps persistence failures.
	ErrDataStore = errors.New("data store failure")

	ErrInvalidTransition = fmt.Errorf("%w: invalid shift status transition", ErrValidation)
	ErrShiftOverlap      = fmt.Errorf("%w: shift overlaps an existing shift of the worker", ErrValidation)
	ErrTaskNotPending    = errors.New("task is no longer pending")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr translates a repository error. Not-found is returned as is;
// anything else is logged with context and re-raised as ErrDataStore.
func (s *Service) storeErr(err error, op string, fields map[string]interface{}) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	s.log.Error().Err(err).Fields(fields).Str("op", op).Msg("data store failure")
	return fmt.Errorf("%s: %w: %w", op, ErrDataStore, err)
}
