package health

import "context"

// DBPinger checks key-value store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SourcePinger checks catalog data source availability.
type SourcePinger interface {
	Ping(ctx context.Context) error
}

// ExpanderChecker checks semantic expander provider availability.
type ExpanderChecker interface {
	HealthCheck(ctx context.Context) error
}
