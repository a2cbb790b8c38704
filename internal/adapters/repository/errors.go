package repository

import (
	"errors"
	"fmt"

	"github.com/okian/scout/internal/domain/model"
)

// Sentinel kinds for store errors. ErrNotFound also matches model.ErrNotFound.
var (
	ErrNotFound = fmt.Errorf("match record %w", model.ErrNotFound)
	ErrOpen     = errors.New("open store")
	ErrSchema   = errors.New("apply schema")
)
