// Package tasks runs the chart pipeline: fetch, parse, limit, then hand the chart to an output [Sink].
//
// # Pipeline
//
// [ChartEngine.Run] fetches one chart page, parses it, truncates the entries to the requested limit
// and writes the result through the chosen [Sink]. Everything is sequential; a failed step aborts the run.
//
// # Sinks
//
//   - [CSVSink] writes rank,title,artist rows to a file
//   - [ConsoleSink] prints a numbered listing
//   - [PlaylistSink] pushes the entries to a Spotify playlist, one search and one append per entry
//
// Entries without a catalog match are skipped and reported in [OutputResult.Skipped]; they never abort a playlist run.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block: when the channel is full the update is dropped.
package tasks
