package metadata

import (
	"testing"

	"github.com/theirongolddev/aislog/internal/model"
)

func TestCacheEmpty(t *testing.T) {
	var c Cache
	if _, ok := c.Get(); ok {
		t.Error("expected no snapshot before Set")
	}
}

func TestCacheSetGet(t *testing.T) {
	var c Cache
	c.Set([]model.Project{
		{Name: "demo", SessionCount: 3, Provider: model.ProviderClaude},
		{Name: "cli", SessionCount: 2, Provider: model.ProviderCodex},
	})

	snap, ok := c.Get()
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.ProjectCount != 2 || snap.SessionCount != 5 {
		t.Errorf("counts = %d projects / %d sessions", snap.ProjectCount, snap.SessionCount)
	}
	if snap.ScannedAt.IsZero() {
		t.Error("ScannedAt not set")
	}
}

func TestCacheCopyOut(t *testing.T) {
	var c Cache
	c.Set([]model.Project{{Name: "demo"}})

	snap, _ := c.Get()
	snap.Projects[0].Name = "mutated"

	again, _ := c.Get()
	if again.Projects[0].Name != "demo" {
		t.Errorf("cached snapshot mutated: %q", again.Projects[0].Name)
	}
}

func TestCacheClear(t *testing.T) {
	var c Cache
	c.Set([]model.Project{{Name: "demo"}})
	c.Clear()
	if _, ok := c.Get(); ok {
		t.Error("expected no snapshot after Clear")
	}
}
