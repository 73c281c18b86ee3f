// Package cgroup configures the cgroup v2 group that bounds the sandbox.
//
// The supervisor enables the controllers on the hierarchy root, creates the
// group directory and writes every limit before the sandboxed process is
// released. The sandboxed process only performs the membership write
// (AddSelf), which fails while the group does not exist.
//
// Control files written:
//
//	cgroup.subtree_control  +cpu +memory +pids
//	cpu.max                 "<runtime> <period>" or max
//	memory.max              bytes or max
//	memory.high             bytes or max
//	memory.swap.max         bytes or max
//	pids.max                count or max
//
// Every write opens the file write-only without O_CREAT and issues exactly
// one write(2). The group is left in place after the run.
package cgroup
