package cgroup

const (
	// systemd mounted cgroups
	basePath    = "/sys/fs/cgroup"
	cgroupProcs = "cgroup.procs"

	cgroupSubtreeControl = "cgroup.subtree_control"
	cgroupControllers    = "cgroup.controllers"

	cpuMax        = "cpu.max"
	cpuStat       = "cpu.stat"
	memoryMax     = "memory.max"
	memoryHigh    = "memory.high"
	memorySwapMax = "memory.swap.max"
	memoryPeak    = "memory.peak"
	memoryEvents  = "memory.events"
	pidsMax       = "pids.max"

	dirPerm = 0755

	CPU    = "cpu"
	Memory = "memory"
	Pids   = "pids"
)

// CgroupType is the cgroup version mounted at a root
type CgroupType int

const (
	CgroupTypeV1 CgroupType = iota + 1
	CgroupTypeV2
)

func (t CgroupType) String() string {
	switch t {
	case CgroupTypeV1:
		return "v1"
	case CgroupTypeV2:
		return "v2"
	default:
		return "invalid"
	}
}
