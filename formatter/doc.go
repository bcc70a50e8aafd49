// Package formatter wraps a VehicleMonitoring delivery in a SIRI envelope and
// serializes it.
//
//   - wrapper.go: ServiceDelivery envelope with producer codespace
//   - json.go: JSON output
//   - xml.go: XML output with escaping
//
// XML is written by hand to keep SIRI element order and namespace exact.
package formatter
