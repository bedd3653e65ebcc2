package services

import (
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("already exists")
)

// logFailure ghi log tại nơi bắt lỗi rồi trả nguyên lỗi cho caller
func logFailure(op string, err error, fields logrus.Fields) error {
	entry := logrus.WithError(err).WithField("op", op)
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrDuplicate):
		entry.Warn("tag service request rejected")
	default:
		entry.Error("tag service store error")
	}
	return err
}
