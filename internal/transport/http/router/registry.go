package router

import (
	"sort"

	"go-gin-social-graph/internal/transport/http/ez"
)

// Module mounts its routes on the /api/v1 group.
type Module interface{ Mount(ez.EZ) }

// Optional: lower priority mounts first; modules without it count as 100.
type prioritizer interface{ Priority() int }

// MountAll mounts mods in priority order, keeping the given order on ties.
func MountAll(e ez.EZ, mods ...Module) {
	mods = append([]Module(nil), mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
