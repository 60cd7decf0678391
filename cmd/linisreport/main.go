// Package main provides the entry point for the linisreport CLI.
//
// linisreport inspects Lynis audit artifacts (lynis-report.dat and
// lynis.log), correlates findings with their run-log positions, and
// manages timestamped snapshots of live audit data.
//
// Usage:
//
//	linisreport list
//	linisreport show latest
//	linisreport snapshot latest
//
// See --help for all available options.
package main

// main is the entry point for linisreport.
func main() {
	Execute()
}
