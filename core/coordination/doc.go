// Package coordination evaluates relay trip times against fault currents and
// checks that protection operates selectively.
//
// An analysis produces a self-describing Table: one row per relay per test
// current, a verdict per downstream/backup relay pair and an interrupting
// duty check per breaker. Exporters and plotters consume the Table without
// access to the network or the device table.
package coordination
