package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

// requireOwner is re-run by every mutating call right before the write.
func requireOwner(actor domain.User, owner domain.UserRef, resource string) error {
	if actor.ID == 0 || actor.ID != owner.ID {
		return domain.Forbidden(fmt.Sprintf("only the author can modify this %s", resource))
	}
	return nil
}

func requireMaster(actor domain.User) error {
	if actor.ID == 0 || !actor.IsMaster {
		return domain.Forbidden("not authorized user")
	}
	return nil
}

// classify maps repository sentinels onto API errors.
func classify(err error, subject string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return domain.NotFound(subject + " not found")
	case errors.Is(err, repository.ErrDuplicate):
		return domain.Conflict(subject + " already exists")
	case errors.Is(err, repository.ErrAlreadyLiked):
		return domain.Conflict(subject + " already liked")
	case errors.Is(err, repository.ErrNotLiked):
		return domain.Conflict(subject + " not liked yet")
	default:
		return domain.Internal("failed to process "+subject, err)
	}
}

func validateName(name, subject string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < domain.NameMinLength || n > domain.NameMaxLength {
		return "", domain.ValidationFailed(fmt.Sprintf("%s name must be %d to %d characters",
			subject, domain.NameMinLength, domain.NameMaxLength))
	}
	return name, nil
}

func validateText(value, field string, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", domain.ValidationFailed(field + " is required")
	}
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		return "", domain.ValidationFailed(fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return value, nil
}

func pageFilter(contains string, page domain.Page) repository.Filter {
	return repository.Filter{
		Contains: strings.TrimSpace(contains),
		Offset:   page.Offset(),
		Limit:    page.Limit(),
	}
}
