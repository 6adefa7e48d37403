package cache

import (
	"context"

	"github.com/yoockh/visadesk/internal/models"
)

// LookupCache holds lookup results keyed by the four-field tuple. It stores
// image keys rather than URLs because URLs may depend on the request origin.
type LookupCache interface {
	Get(ctx context.Context, f models.HolderFields) (h *models.HolderWithKeys, hit bool, err error)
	Set(ctx context.Context, f models.HolderFields, h *models.HolderWithKeys) error
}
