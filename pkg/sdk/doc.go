// Package catalogd embeds the data catalog compatibility validator and
// search index in a Go program, without running the HTTP service.
//
// The client reads catalog records from a data source (a seeded mock
// catalog or a YAML fixture file) and keeps a TTL-cached search index.
// An optional key-value store (in-memory, BadgerDB on disk, Redis or
// Valkey) shares index snapshots and caches semantic expansions.
//
//	client, _ := catalogd.New(ctx, catalogd.WithFixtureFile("catalog.yaml"))
//	defer client.Close()
//
//	hits, _ := client.Search().Query("card").Layers("Gold").Limit(10).Do(ctx)
//	res := client.Validation().Validate(ctx, contract, products)
//	if !res.Valid {
//	    fmt.Println(res.Errors)
//	}
package catalogd
