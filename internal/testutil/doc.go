// Package testutil holds shared helpers for package tests: a thread-safe
// log buffer, graph construction shortcuts, and scripted fakes for the
// remote execution service.
package testutil
