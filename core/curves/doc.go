// Package curves converts a multiple of pickup into an operating time for the
// standard relay characteristics supported by the coordination engine.
//
// Three families are available:
//   - IEC 60255-151 inverse curves: t = TMS·k/(M^α − 1)
//   - IEEE C37.112 inverse curves: t = TMS·(A/(M^p − 1) + B)
//   - IEC 61363 definite-time bands: t = TMS·band, independent of M above pickup
//
// A multiple at or below 1.0 never operates. Evaluate reports that as a
// NO_TRIP Operation, not as an error.
package curves
