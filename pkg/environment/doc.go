// Package environment names the deployment environment a process runs in
// and normalises the short aliases operators tend to type.
package environment
