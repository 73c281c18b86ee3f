// Package mount describes mount(2) calls and chains them into the mount
// sequence used to build the sandbox root
package mount
