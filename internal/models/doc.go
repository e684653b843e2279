// Package models defines the data types that flow through the chart pipeline.
//
//   - [ChartRequest] : which chart to fetch (name + date, zero date meaning the latest chart)
//   - [ChartEntry] : one ranked (title, artist) pair parsed from a chart page
//   - [Chart] : a request together with its parsed entries, handed to an output sink
//   - [PlaylistTarget] : where and how the playlist sink writes
//   - [Track], [Playlist] : remote catalog objects returned by the playlist service
//
// All values are created fresh per run and never persisted, except through the CSV sink.
package models
