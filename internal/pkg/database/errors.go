package database

import "github.com/ledgerline/identity-core/internal/pkg/apperror"

// ErrValueTooLong is returned when a value does not fit its column.
var ErrValueTooLong = apperror.New(apperror.KindValidation, "value exceeds the maximum length")
