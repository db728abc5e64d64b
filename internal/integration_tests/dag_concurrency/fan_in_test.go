package dag_concurrency

import (
	"context"
	"testing"
	"time"

	"github.com/specialistvlad/stagegrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test for: fan-in synchronization waits for all parallel nodes.
func TestDagConcurrency_FanInSynchronization(t *testing.T) {
	// --- Arrange ---
	const sleep = 100 * time.Millisecond
	arrangement := `[{"name": "fan-in", "stages": [["A,B,C:D"]], "tasks": {
		"A": {"impl": "test.recorder"}, "B": {"impl": "test.recorder"},
		"C": {"impl": "test.recorder"}, "D": {"impl": "test.recorder"}}}]`
	rec := testutil.NewRecorder()
	for _, id := range []string{"A", "B", "C", "D"} {
		rec.On(id, testutil.Behavior{Sleep: sleep})
	}
	testApp, _ := setupRun(t, arrangement, 4, rec)

	// --- Act ---
	start := time.Now()
	_, err := testApp.Run(context.Background())
	elapsed := time.Since(start)

	// --- Assert ---
	require.NoError(t, err)
	d, ok := rec.Record("D")
	require.True(t, ok)
	for _, id := range []string{"A", "B", "C"} {
		r, ok := rec.Record(id)
		require.True(t, ok, "%s did not run", id)
		assert.False(t, d.Start.Before(r.End), "D started before %s finished", id)
	}
	// Three parallel sleeps plus one dependent sleep.
	assert.Less(t, elapsed, 3*sleep, "A, B and C should run in parallel")
}

// Test for: fan-out starts every dependent once its single dependency finished.
func TestDagConcurrency_FanOutExecution(t *testing.T) {
	// --- Arrange ---
	const sleep = 100 * time.Millisecond
	arrangement := `[{"name": "fan-out", "stages": [["A:B,C,D"]], "tasks": {
		"A": {"impl": "test.recorder"}, "B": {"impl": "test.recorder"},
		"C": {"impl": "test.recorder"}, "D": {"impl": "test.recorder"}}}]`
	rec := testutil.NewRecorder()
	for _, id := range []string{"B", "C", "D"} {
		rec.On(id, testutil.Behavior{Sleep: sleep})
	}
	testApp, _ := setupRun(t, arrangement, 4, rec)

	// --- Act ---
	start := time.Now()
	_, err := testApp.Run(context.Background())
	elapsed := time.Since(start)

	// --- Assert ---
	require.NoError(t, err)
	a, _ := rec.Record("A")
	for _, id := range []string{"B", "C", "D"} {
		r, ok := rec.Record(id)
		require.True(t, ok)
		assert.False(t, r.Start.Before(a.End), "%s started before A finished", id)
	}
	assert.Less(t, elapsed, 2*sleep, "B, C and D should run in parallel")
}

// Test for: middle stages run concurrently with each other, the post-stage after all of them.
func TestDagConcurrency_MiddleStagesOverlap(t *testing.T) {
	// --- Arrange ---
	const sleep = 150 * time.Millisecond
	arrangement := `[{"name": "middle", "stages": [["pre"], ["m1"], ["m2"], ["m3"], ["post"]], "tasks": {
		"pre": {"impl": "test.recorder"}, "m1": {"impl": "test.recorder"},
		"m2": {"impl": "test.recorder"}, "m3": {"impl": "test.recorder"},
		"post": {"impl": "test.recorder"}}}]`
	rec := testutil.NewRecorder()
	for _, id := range []string{"m1", "m2", "m3"} {
		rec.On(id, testutil.Behavior{Sleep: sleep})
	}
	testApp, _ := setupRun(t, arrangement, 8, rec)

	// --- Act ---
	start := time.Now()
	_, err := testApp.Run(context.Background())
	elapsed := time.Since(start)

	// --- Assert ---
	require.NoError(t, err)
	assert.Less(t, elapsed, 2*sleep, "middle stages should overlap")

	pre, _ := rec.Record("pre")
	post, _ := rec.Record("post")
	for _, id := range []string{"m1", "m2", "m3"} {
		r, ok := rec.Record(id)
		require.True(t, ok)
		assert.False(t, r.Start.Before(pre.End), "%s started before the pre-stage finished", id)
		assert.False(t, post.Start.Before(r.End), "post started before %s finished", id)
	}
}
