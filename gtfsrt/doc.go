// Package gtfsrt exports a bus line's real-time status as a GTFS-Realtime
// VehiclePositions feed.
//
// The feed carries a FULL_DATASET header and one VehiclePosition entity per
// vehicle. Stop ids and stop sequences are resolved against an optional
// station list; positions are only set when the upstream reported
// coordinates.
package gtfsrt
