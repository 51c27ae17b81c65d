//go:build !linux

package events

// No counter backend outside Linux; hardware events stay in the catalog so
// they can be listed, but resolve as unavailable.
const hardwareAvailable = false
