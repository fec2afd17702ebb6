package utils

import (
	"strings"
	"testing"
)

func TestInstanceIDIsStable(t *testing.T) {
	a, b := InstanceID(), InstanceID()
	if a != b {
		t.Fatalf("instance id changed between calls: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "ETERNO-") {
		t.Errorf("unexpected id %q", a)
	}
}
