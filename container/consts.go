package container

const (
	initArg = "container_init"

	// inherited descriptors of the sandboxed process, after stdio
	configFd = 3
	syncFd   = 4

	// ExitConstruction is the exit status of a sandbox that failed before
	// executing the command
	ExitConstruction = 125
)
