package cgroup

import (
	"fmt"
	"path"
	"strings"
)

// Controllers is the set of controllers the sandbox group depends on
type Controllers struct {
	CPU    bool
	Memory bool
	Pids   bool
}

// RequiredControllers are enabled on the root before the group is created
var RequiredControllers = Controllers{CPU: true, Memory: true, Pids: true}

// Set enables or disables a controller by name, unknown names are ignored
func (c *Controllers) Set(ct string, value bool) {
	switch ct {
	case CPU:
		c.CPU = value
	case Memory:
		c.Memory = value
	case Pids:
		c.Pids = value
	}
}

// Contains returns true if the current set enables all controllers of the other set
func (c *Controllers) Contains(o *Controllers) bool {
	return (c.CPU || !o.CPU) && (c.Memory || !o.Memory) && (c.Pids || !o.Pids)
}

// Names returns the enabled controllers in the order they are written
func (c *Controllers) Names() []string {
	names := make([]string, 0, 3)
	for _, v := range []struct {
		e bool
		n string
	}{
		{c.CPU, CPU},
		{c.Memory, Memory},
		{c.Pids, Pids},
	} {
		if v.e {
			names = append(names, v.n)
		}
	}
	return names
}

// SubtreeControl formats the set for cgroup.subtree_control
func (c *Controllers) SubtreeControl() string {
	names := c.Names()
	if len(names) == 0 {
		return ""
	}
	return "+" + strings.Join(names, " +")
}

func (c *Controllers) String() string {
	return "[" + strings.Join(c.Names(), ", ") + "]"
}

// AvailableControllers parses cgroup.controllers of the given cgroup v2 root
func AvailableControllers(root string) (*Controllers, error) {
	b, err := readFile(path.Join(root, cgroupControllers))
	if err != nil {
		return nil, err
	}
	c := new(Controllers)
	for _, ctrl := range strings.Fields(string(b)) {
		c.Set(ctrl, true)
	}
	return c, nil
}

// CheckAvailable verifies the root offers every required controller
func CheckAvailable(root string) error {
	ct, err := AvailableControllers(root)
	if err != nil {
		return &CgroupConfigError{File: path.Join(root, cgroupControllers), Err: err}
	}
	if !ct.Contains(&RequiredControllers) {
		return &CgroupConfigError{
			File: path.Join(root, cgroupControllers),
			Err:  fmt.Errorf("controllers %v available, %v required", ct, &RequiredControllers),
		}
	}
	return nil
}
