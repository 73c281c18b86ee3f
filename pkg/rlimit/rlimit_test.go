package rlimit

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestPrepareRLimit(t *testing.T) {
	tests := []struct {
		name   string
		rl     RLimits
		expect []int
	}{
		{
			name:   "Empty",
			rl:     RLimits{},
			expect: []int{},
		},
		{
			name:   "CPU only",
			rl:     RLimits{CPU: 1},
			expect: []int{unix.RLIMIT_CPU},
		},
		{
			name:   "All fields",
			rl:     RLimits{CPU: 1, CPUHard: 2, FileSize: 2048, Stack: 4096, OpenFile: 16, DisableCore: true},
			expect: []int{unix.RLIMIT_CPU, unix.RLIMIT_FSIZE, unix.RLIMIT_STACK, unix.RLIMIT_NOFILE, unix.RLIMIT_CORE},
		},
		{
			name:   "DisableCore only",
			rl:     RLimits{DisableCore: true},
			expect: []int{unix.RLIMIT_CORE},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rls := tt.rl.PrepareRLimit()
			if len(rls) != len(tt.expect) {
				t.Fatalf("expected %d rlimits, got %d", len(tt.expect), len(rls))
			}
			for i, r := range rls {
				if r.Res != tt.expect[i] {
					t.Errorf("expected Res %d at %d, got %d", tt.expect[i], i, r.Res)
				}
			}
		})
	}
}

func TestPrepareRLimitCPUHard(t *testing.T) {
	rls := (&RLimits{CPU: 3, CPUHard: 1}).PrepareRLimit()
	if len(rls) != 1 {
		t.Fatalf("expected 1 rlimit, got %d", len(rls))
	}
	if rls[0].Rlim.Max != 3 {
		t.Errorf("hard cpu limit below soft: got %d, want 3", rls[0].Rlim.Max)
	}
}

func TestRLimitString(t *testing.T) {
	tests := []struct {
		name string
		rl   RLimit
		want string
	}{
		{
			name: "CPU",
			rl:   RLimit{Res: unix.RLIMIT_CPU, Rlim: unix.Rlimit{Cur: 1, Max: 2}},
			want: "CPU[1 s:2 s]",
		},
		{
			name: "NOFILE",
			rl:   RLimit{Res: unix.RLIMIT_NOFILE, Rlim: unix.Rlimit{Cur: 10, Max: 20}},
			want: "OpenFile[10:20]",
		},
		{
			name: "FSIZE",
			rl:   RLimit{Res: unix.RLIMIT_FSIZE, Rlim: unix.Rlimit{Cur: 100, Max: 200}},
			want: "File[100 B:200 B]",
		},
		{
			name: "STACK",
			rl:   RLimit{Res: unix.RLIMIT_STACK, Rlim: unix.Rlimit{Cur: 4096, Max: 8 << 20}},
			want: "Stack[4.0 KiB:8.0 MiB]",
		},
		{
			name: "CORE",
			rl:   RLimit{Res: unix.RLIMIT_CORE},
			want: "Core[0 B:0 B]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rl.String()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRLimitsString(t *testing.T) {
	rl := RLimits{
		CPU:         1,
		CPUHard:     2,
		FileSize:    2048,
		OpenFile:    16,
		DisableCore: true,
	}
	want := "RLimits[CPU[1 s:2 s],File[2.0 KiB:2.0 KiB],OpenFile[16:16],Core[0 B:0 B]]"
	if got := rl.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := (RLimits{}).String(); got != "RLimits[]" {
		t.Errorf("got %q, want %q", got, "RLimits[]")
	}
}

func TestApplyCore(t *testing.T) {
	var before unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &before); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		unix.Setrlimit(unix.RLIMIT_CORE, &before)
	})
	// lowering the soft limit to the current hard limit never needs privilege
	rls := []RLimit{{Res: unix.RLIMIT_CORE, Rlim: unix.Rlimit{Cur: 0, Max: before.Max}}}
	if err := Apply(rls); err != nil {
		t.Fatal(err)
	}
	var after unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &after); err != nil {
		t.Fatal(err)
	}
	if after.Cur != 0 {
		t.Errorf("core soft limit = %d, want 0", after.Cur)
	}
}
