package exercise

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type promptRecorder struct {
	mu     sync.Mutex
	titles []string
}

func (r *promptRecorder) record(prompt Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, prompt.Title)
}

func (r *promptRecorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func TestRangeRandomStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	value := Range{Min: time.Second, Max: 2 * time.Second}
	for i := 0; i < 100; i++ {
		sample := value.Random(rng)
		assert.GreaterOrEqual(t, sample, time.Second)
		assert.Less(t, sample, 2*time.Second)
	}
	assert.Equal(t, time.Second, Range{Min: time.Second}.Random(rng))
}

func TestRotatorCyclesPrompts(t *testing.T) {
	recorder := &promptRecorder{}
	rotator := New(Config{Hold: Range{Min: time.Millisecond}}, nil, recorder.record)

	rotator.Start(context.Background())
	require.Eventually(t, func() bool {
		return len(recorder.Titles()) >= 6
	}, 2*time.Second, time.Millisecond)
	rotator.Stop()

	titles := recorder.Titles()
	assert.Equal(t, []string{"Wrist Rolls", "Neck Stretch", "Shoulder Shrugs", "Palming", "Distant Gaze", "Wrist Rolls"}, titles[:6])
}

func TestRotatorStopsAndResumes(t *testing.T) {
	recorder := &promptRecorder{}
	prompts := []Prompt{{Title: "A"}, {Title: "B"}, {Title: "C"}}
	rotator := New(Config{Hold: Range{Min: time.Hour}}, prompts, recorder.record)

	rotator.Start(context.Background())
	require.Eventually(t, func() bool { return len(recorder.Titles()) == 1 }, time.Second, time.Millisecond)
	rotator.Stop()

	rotator.Start(context.Background())
	require.Eventually(t, func() bool { return len(recorder.Titles()) == 2 }, time.Second, time.Millisecond)
	rotator.Stop()

	assert.Equal(t, []string{"A", "B"}, recorder.Titles())
}

func TestDefaultPromptsAreComplete(t *testing.T) {
	for _, prompt := range DefaultPrompts() {
		assert.NotEmpty(t, prompt.Title)
		assert.NotEmpty(t, prompt.Description)
	}
}
