package clock

import (
	"testing"
	"time"
)

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	start := time.Date(2026, time.October, 19, 8, 0, 0, 0, time.Local)
	c := Fake(start)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	select {
	case <-ticker.C:
		t.Fatalf("ticker fired before advance")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ticker.C:
		if !got.Equal(start.Add(time.Second)) {
			t.Fatalf("unexpected tick time %s", got)
		}
	default:
		t.Fatalf("expected tick after advance")
	}

	c.Advance(500 * time.Millisecond)
	select {
	case <-ticker.C:
		t.Fatalf("ticker fired before its next deadline")
	default:
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(time.Date(2026, time.October, 19, 8, 0, 0, 0, time.Local))
	ticker := c.NewTicker(time.Second)
	ticker.Stop()
	c.Advance(2 * time.Second)
	select {
	case <-ticker.C:
		t.Fatalf("stopped ticker fired")
	default:
	}
}

func TestFakeSet(t *testing.T) {
	c := Fake(time.Date(2026, time.October, 19, 8, 0, 0, 0, time.Local))
	target := time.Date(2026, time.October, 20, 9, 0, 0, 0, time.Local)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Fatalf("expected %s, got %s", target, c.Now())
	}
}
