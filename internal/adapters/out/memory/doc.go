// Package memory holds process-local implementations of the storefront ports.
// They back STORE_BACKEND=memory (local development without GCP) and the
// package tests of the state containers and HTTP handlers.
package memory
