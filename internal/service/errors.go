package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/apperr"
	"github.com/lshigami/quizmaster/internal/validation"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// validate runs the binding rules so direct callers get the same checks as
// HTTP requests.
func validate(req any) error {
	if err := validation.Struct(req); err != nil {
		return apperr.Validation("Validation failed", validation.Messages(err)...)
	}
	return nil
}
