// Package testsupport builds isolated configurations and stub hashcat
// executables for package tests. Stubs are POSIX shell scripts that print
// canned status output, append to the potfile they were given, record their
// argv, and exit with a chosen code.
package testsupport
