package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceFiresDueCallbacksInOrder(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFake(start)

	var order []string
	c.AfterFunc(2*time.Second, func() { order = append(order, "second") })
	c.AfterFunc(time.Second, func() { order = append(order, "first") })
	c.AfterFunc(time.Minute, func() { order = append(order, "late") })

	c.Advance(3 * time.Second)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("fired = %v; want [first second]", order)
	}
	if got := c.Pending(); got != 1 {
		t.Errorf("Pending = %d; want 1", got)
	}
	if !c.Now().Equal(start.Add(3 * time.Second)) {
		t.Errorf("Now = %v; want %v", c.Now(), start.Add(3*time.Second))
	}
}

func TestFake_StopPreventsCallback(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if timer.Stop() {
		t.Error("second Stop returned true")
	}
	c.Advance(time.Hour)
	if fired {
		t.Error("stopped callback fired")
	}
}
