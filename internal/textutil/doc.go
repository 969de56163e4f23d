// Package textutil holds small string helpers shared by the CLI and the
// hashcat integration: token and filename sanitization for session names and
// export paths, and width-bounded truncation for rendering long hashes.
package textutil
