// Package container creates one sandboxed process and supervises it until
// it exits.
//
// # Overview
//
// The supervisor re-executes the current binary (/proc/self/exe) with the
// single argument container_init inside new UTS, PID, mount, network and IPC
// namespaces. The binary must call Init from an init function so that the
// new process turns into the sandbox instead of running main.
//
// # Protocol
//
// Two pipes are inherited by the sandboxed process:
//
// - fd 3: the configuration record encoded as CBOR, closed by the supervisor
// after writing
//
// - fd 4: the synchronization pipe. The sandboxed process blocks reading one
// byte, which the supervisor writes only after the cgroup is configured.
//
// After the byte is read, the sandboxed process joins the cgroup, sets the
// hostname, isolates its filesystem, drops privileges, installs the syscall
// filter and executes the command. It cannot report failures other than
// through its exit status and stderr:
//
// - 125: the sandbox could not be constructed
//
// - 126: the command is not executable
//
// - 127: the command was not found
//
// The supervisor states follow the same order and each can be used once:
//
//	Runner.Start -> Created -> CgroupsConfigured -> SignalSent -> ExitReport
package container
