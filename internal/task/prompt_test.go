package task

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recap-api/internal/domain"
)

func historiesWithContent(t *testing.T, contents ...string) []*domain.TopicHistory {
	t.Helper()
	out := make([]*domain.TopicHistory, 0, len(contents))
	for _, c := range contents {
		h, err := domain.NewTopicHistory(uuid.New(), c)
		require.NoError(t, err)
		out = append(out, h)
	}
	return out
}

func TestBuildPrompt_Default(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("Raft consensus", historiesWithContent(t, "leader election basics"))

	assert.Contains(t, prompt, `"Raft consensus"`)
	assert.Contains(t, prompt, "leader election basics")
	assert.Contains(t, prompt, "do not repeat")
}

func TestBuildPrompt_CleanPromptToken(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(
		"Explain one Raft safety property in depth #clean-prompt",
		historiesWithContent(t, "log matching"),
	)

	assert.True(t, strings.HasPrefix(prompt, "Explain one Raft safety property in depth"),
		"clean-prompt subject must be used verbatim")
	assert.NotContains(t, prompt, domain.SubjectTokenCleanPrompt, "token must be stripped")
	assert.Contains(t, prompt, "log matching", "prior history still wraps as context")
}

func TestBuildPrompt_DiscardHistoryToken(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(
		"Raft consensus #discard-history",
		historiesWithContent(t, "leader election basics"),
	)

	assert.NotContains(t, prompt, "leader election basics", "history must be suppressed")
	assert.NotContains(t, prompt, domain.SubjectTokenDiscardHistory)
}

func TestBuildPrompt_HistoryLimit(t *testing.T) {
	t.Parallel()

	histories := historiesWithContent(t,
		"lesson one", "lesson two", "lesson three",
		"lesson four", "lesson five", "lesson six",
	)

	prompt := BuildPrompt("Some subject", histories)

	// Only the five most recent (first five, newest first) are included.
	assert.Contains(t, prompt, "lesson five")
	assert.NotContains(t, prompt, "lesson six")
}

func TestBuildPrompt_LongHistoryExcerpted(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("verbose lesson content ", 50)
	prompt := BuildPrompt("Some subject", historiesWithContent(t, long))

	assert.Contains(t, prompt, "...")
	assert.Less(t, len(prompt), len(long), "prior history must be excerpted, not quoted whole")
}
