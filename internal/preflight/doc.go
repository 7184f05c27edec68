// Package preflight provides readiness checks for the filesystem paths
// woffsmith reads from and writes to.
//
// The convert command runs these checks before any job is registered so a
// missing or read-only output directory is reported up front rather than
// after every font has been converted.
package preflight
