// Package zhbus is a client for the Zhuhai bus transit-data service.
//
// It covers the three read-only queries the bus map UI needs:
//   - GetStationList: ordered stations of a line, by line id
//   - GetLineDetailByName: lines matching a (possibly ambiguous) name
//   - GetRealTimeStatus: live vehicles of a line relative to a head station
//
// The upstream response schema is undocumented. Decoding is tolerant: the
// body may be a bare array or an object carrying it under "data", field names
// match case-insensitively, unknown fields are ignored and a missing required
// field is reported as a decode error. If an object spells one field several
// ways ("Id" and "id"), the all-lower-case spelling wins, otherwise the first
// in document order. Coordinates that are not finite or out of range are
// treated as absent.
//
// Real-time results must not be cached; every GetRealTimeStatus call issues a
// new request.
package zhbus
