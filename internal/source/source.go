// Package source abstracts where the raw exercise collection comes from:
// a remote catalog API or a local directory of YAML files.
package source

import (
	"context"

	"github.com/cqlclinic/clinic/internal/domain"
)

// Source provides the raw exercise collection. Records returned by
// Fetch have not yet passed schema validation.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Exercise, error)
}
