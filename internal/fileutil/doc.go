// Package fileutil provides the file plumbing around a cracking session:
// materializing raw hash text into session-owned temp files, removing them,
// and writing exported results atomically.
package fileutil
