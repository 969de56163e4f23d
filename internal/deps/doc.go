// Package deps reports on the external pieces a cracking session relies on:
// the hashcat executable, the kernel and module directories it loads from its
// own directory, and host CPU and memory as sampled through gopsutil.
package deps
