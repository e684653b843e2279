// Package charts resolves, fetches and parses Billboard chart listings.
//
// # Date selection
//
// [ResolveDate] picks the chart date from the CLI inputs with a fixed precedence:
// explicit date, then a random 1990s date, then a random historical date, then the latest chart.
//
// # Fetching
//
// [Fetcher] performs exactly one GET per run against a URL built by [ChartURL].
// Any transport failure, timeout or non-2xx status is reported as [shared.ErrFetch]; nothing is retried.
//
// # Parsing
//
// [Parse] understands the current Billboard layout (".o-chart-results-list-row" rows) and the
// legacy one (".chart-list-item" elements carrying data-rank/data-title/data-artist attributes).
// A malformed row fails the whole parse with [shared.ErrParse] instead of being skipped.
package charts
