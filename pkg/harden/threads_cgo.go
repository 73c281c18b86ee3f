//go:build cgo

package harden

// runtime threads are started by pthread_create, which issues rseq and other
// calls outside the whitelist on every new thread
const libcThreads = true
