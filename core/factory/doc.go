// Package factory instantiates pluggable modules, such as metrics sinks,
// from configuration entries of the form
//
//	sinks:
//	  - type: influx
//	    conf:
//	      url: http://localhost:8086
//
// Implementations register a Factory under their type name at init time and
// decode their conf map with Decode.
package factory
