// Package utils provides internal utility functions shared by the SIRI and
// GTFS-Realtime exports.
// This package is not intended to be imported by external code.
package utils
