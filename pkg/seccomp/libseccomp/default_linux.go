package libseccomp

// DefaultAllow is the fixed syscall whitelist of the sandbox. Anything else
// kills the process with SIGSYS. Names the running architecture does not
// define are left out of the compiled program.
var DefaultAllow = []string{
	"access",
	"arch_prctl",
	"brk",
	"chdir",
	"chmod",
	"chown",
	"clock_gettime",
	"clock_nanosleep",
	"clone",
	"close",
	"dup",
	"dup2",
	"dup3",
	"execve",
	"execveat",
	"exit",
	"exit_group",
	"faccessat",
	"fchmod",
	"fchmodat",
	"fchown",
	"fchownat",
	"fcntl",
	"fdatasync",
	"fork",
	"fstat",
	"fsync",
	"futex",
	"getcwd",
	"getdents64",
	"geteuid",
	"getpid",
	"getpgid",
	"getppid",
	"getrandom",
	"getrlimit",
	"gettid",
	"gettimeofday",
	"getuid",
	"ioctl",
	"lseek",
	"lstat",
	"madvise",
	"mkdir",
	"mkdirat",
	"mmap",
	"mprotect",
	"mremap",
	"munmap",
	"newfstatat",
	"nanosleep",
	"open",
	"openat",
	"openat2",
	"poll",
	"pread64",
	"prctl",
	"prlimit64",
	"pwrite64",
	"read",
	"readlink",
	"readlinkat",
	"readv",
	"rename",
	"renameat",
	"renameat2",
	"rmdir",
	"rt_sigaction",
	"rt_sigprocmask",
	"rt_sigreturn",
	"sched_yield",
	"set_robust_list",
	"set_tid_address",
	"setpgid",
	"setrlimit",
	"sigaltstack",
	"stat",
	"statx",
	"symlink",
	"symlinkat",
	"time",
	"tgkill",
	"uname",
	"umask",
	"unlink",
	"unlinkat",
	"wait4",
	"waitid",
	"write",
	"writev",
	"utimensat",

	// network
	"socket",
	"connect",
	"sendfile",
	"recvfrom",
}
