// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain, the port interfaces and a small set of
// concurrency helpers; they never import adapters.
package services
