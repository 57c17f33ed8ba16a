// Package shortcircuit computes IEC 60909 initial symmetrical short-circuit
// currents at every bus of a network.
//
// The network is reduced in per unit on a common power base. Positive and
// zero sequence bus admittance matrices are built for each connected
// component and inverted with gonum to obtain the driving-point impedances.
// A bus whose duty cannot be determined carries an IndeterminateFaultError
// instead of a zero current.
package shortcircuit
