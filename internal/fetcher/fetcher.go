// Package fetcher produces actions for the processing queue, either from
// live vendor data or from previously recorded chain snapshots.
package fetcher

import "context"

// DataFetcher runs one production cycle: fetch or load chain snapshots and
// enqueue the actions that consume them.
type DataFetcher interface {
	Run(ctx context.Context) error
}
