// Package vrp defines the vehicle-routing domain documents exchanged with
// the remote solver: the problem (jobs and resources) and the solution
// (trips, visits, unserved jobs). Fields mirror the solver's wire format,
// camelCase JSON with optional fields left zero when absent.
package vrp
