package health

import "context"

// CatalogPinger checks catalog store availability.
type CatalogPinger interface {
	Ping(ctx context.Context) error
}

// DirectoryPinger checks directory database availability.
type DirectoryPinger interface {
	Ping(ctx context.Context) error
}
