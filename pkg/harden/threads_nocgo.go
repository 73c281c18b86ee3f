//go:build !cgo

package harden

const libcThreads = false
