package testutil

import (
	"github.com/specialistvlad/stagegrid/internal/config"
)

// Arrangement builds an arrangement from stages and descriptors.
func Arrangement(stages [][]string, tasks ...*config.TaskDescriptor) *config.Arrangement {
	a := &config.Arrangement{
		Name:   "test",
		Stages: stages,
		Tasks:  make(map[string]*config.TaskDescriptor, len(tasks)),
	}
	for _, d := range tasks {
		a.Tasks[d.ID] = d
	}
	return a
}

// Tasks returns default descriptors for ids, all using impl.
func Tasks(impl string, ids ...string) []*config.TaskDescriptor {
	out := make([]*config.TaskDescriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, config.NewTask(id, impl))
	}
	return out
}
