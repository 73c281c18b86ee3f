package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Limit is a resource amount written to a cgroup control file. The value -1
// stands for unlimited and is rendered as "max".
type Limit int64

// Unlimited is the sentinel for the "max" token
const Unlimited Limit = -1

const maxToken = "max"

var errEmptyLimit = errors.New("empty limit")

func (l Limit) String() string {
	if l < 0 {
		return maxToken
	}
	return strconv.FormatInt(int64(l), 10)
}

// Set parses "max", "-1" or a byte amount with an optional k/m/g suffix
func (l *Limit) Set(str string) error {
	str = strings.TrimSpace(str)
	if str == "" {
		return errEmptyLimit
	}
	if str == maxToken || str == "-1" {
		*l = Unlimited
		return nil
	}

	switch str[len(str)-1] {
	case 'b', 'B':
		str = str[:len(str)-1]
	}
	factor := 0
	if str != "" {
		switch str[len(str)-1] {
		case 'k', 'K':
			factor = 10
			str = str[:len(str)-1]
		case 'm', 'M':
			factor = 20
			str = str[:len(str)-1]
		case 'g', 'G':
			factor = 30
			str = str[:len(str)-1]
		}
	}

	t, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("limit %q: %w", str, err)
	}
	if t < 0 {
		return fmt.Errorf("limit %d: negative amount", t)
	}
	if t > (1<<63-1)>>factor {
		return fmt.Errorf("limit %q: overflows int64", str)
	}
	*l = Limit(t << factor)
	return nil
}

// Type implements pflag.Value
func (l Limit) Type() string {
	return "limit"
}

// UnmarshalYAML accepts both integer and string scalars
func (l *Limit) UnmarshalYAML(n *yaml.Node) error {
	return l.Set(n.Value)
}

// DefaultCPUPeriod is the kernel default period for cpu.max in microseconds
const DefaultCPUPeriod = 100000

// CPUQuota is the cpu.max pair. A negative Runtime means no bandwidth limit.
type CPUQuota struct {
	Runtime Limit  `yaml:"runtime"` // in us
	Period  uint64 `yaml:"period"`  // in us
}

// String formats the quota in the cpu.max syntax
func (q CPUQuota) String() string {
	if q.Runtime < 0 {
		return maxToken
	}
	return strconv.FormatInt(int64(q.Runtime), 10) + " " + strconv.FormatUint(q.Period, 10)
}

// Set parses "<runtime> <period>", "<runtime>" (default period) or "max"
func (q *CPUQuota) Set(str string) error {
	fields := strings.Fields(str)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("cpu quota %q: want \"<runtime> <period>\" or \"max\"", str)
	}

	var r CPUQuota
	if fields[0] == maxToken {
		r.Runtime = Unlimited
	} else {
		v, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("cpu quota %q: invalid runtime", str)
		}
		r.Runtime = Limit(v)
	}
	r.Period = DefaultCPUPeriod
	if len(fields) == 2 {
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("cpu quota %q: invalid period", str)
		}
		r.Period = v
	}
	*q = r
	return nil
}

// Type implements pflag.Value
func (q CPUQuota) Type() string {
	return "quota"
}

// UnmarshalYAML accepts the cpu.max string form as well as a mapping
func (q *CPUQuota) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return q.Set(n.Value)
	}
	type plain CPUQuota
	p := plain(*q)
	if err := n.Decode(&p); err != nil {
		return err
	}
	*q = CPUQuota(p)
	return nil
}
