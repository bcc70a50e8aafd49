// Package siri defines SIRI (Service Interface for Real-time Information) data types.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport information.
// Only the VehicleMonitoringDelivery (VM) module is produced here: a bus line's
// real-time status maps onto one VehicleActivity per live vehicle.
//
// All types include JSON struct tags; XML is written by the formatter package.
package siri
