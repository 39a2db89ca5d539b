package out

import (
	"context"

	"focusforge/internal/modules/bestiary/domain"
)

// CatalogSource loads the static monster and XP configuration.
type CatalogSource interface {
	Load(ctx context.Context) (domain.Catalog, error)
}
