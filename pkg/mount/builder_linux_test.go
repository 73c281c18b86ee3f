package mount

import (
	"strings"
	"testing"
)

func TestBuilder_WithBind(t *testing.T) {
	b := NewBuilder().WithBind("/src", "/dst", true)
	if len(b.Mounts) != 1 {
		t.Fatalf("expected 1 mount, got %d", len(b.Mounts))
	}
	m := b.Mounts[0]
	if m.Source != "/src" || m.Target != "/dst" {
		t.Errorf("unexpected mount: %+v", m)
	}
	if !m.IsBindMount() {
		t.Errorf("expected bind mount")
	}
	if !m.IsReadOnly() {
		t.Errorf("expected readonly mount")
	}
}

func TestBuilder_WithTmpfs(t *testing.T) {
	b := NewBuilder().WithTmpfs("/tmp/euclid", TmpfsSize(64))
	m := b.Mounts[0]
	if !m.IsTmpFs() {
		t.Errorf("expected tmpfs mount")
	}
	if m.Target != "/tmp/euclid" || m.Data != "size=64M" {
		t.Errorf("unexpected mount: %+v", m)
	}
}

func TestBuilder_WithOverlay(t *testing.T) {
	data, err := OverlayData("/l", "/u", "/w")
	if err != nil {
		t.Fatal(err)
	}
	m := NewBuilder().WithOverlay("/m", data).Mounts[0]
	if !m.IsOverlay() || m.Source != "overlay" || m.Flags != 0 {
		t.Errorf("unexpected mount: %+v", m)
	}
}

func TestBuilder_String(t *testing.T) {
	b := NewBuilder().
		WithBind("/src", "/dst", false).
		WithTmpfs("/tmp", "size=1M").
		WithDevtmpfs("/dev").
		WithProc("/proc")
	s := b.String()
	if !strings.HasPrefix(s, "Mounts: ") {
		t.Errorf("unexpected prefix: %q", s)
	}
	for _, want := range []string{"rbind[/src:/dst:rw]", "tmpfs[/tmp:size=1M]", "devtmpfs[/dev]", "proc[rw]"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s: %q", want, s)
		}
	}
	if got := strings.Count(s, ", "); got != 3 {
		t.Errorf("expected 3 separators, got %d", got)
	}
}
