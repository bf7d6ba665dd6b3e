package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
)

type stubCompleter struct {
	reply  string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

type stubProfiles struct {
	profiles []domain.RiskProfile
	err      error
}

func (s *stubProfiles) Profiles(context.Context) ([]domain.RiskProfile, error) {
	return s.profiles, s.err
}

func testProfiles() []domain.RiskProfile {
	return []domain.RiskProfile{
		{
			Neighbourhood: "Downsview",
			RiskScore:     72,
			RiskLevel:     "High",
			Incidents:     domain.CategoryCounts{Shootings: 4, Total: 4},
			Predictions:   domain.CategoryCounts{Shootings: 2},
			OverallTrend:  15,
		},
		{
			Neighbourhood: "Rexdale",
			RiskScore:     31,
			RiskLevel:     "Low",
			OverallTrend:  -8,
		},
	}
}

func TestMentionedAreas(t *testing.T) {
	profiles := testProfiles()

	areas := mentionedAreas(profiles, "How safe is DOWNSVIEW this weekend?")
	require.Len(t, areas, 1)
	assert.Equal(t, "Downsview", areas[0].Name)
	assert.Equal(t, 72, areas[0].RiskScore)

	areas = mentionedAreas(profiles, "Compare downsview and rexdale for me")
	assert.Len(t, areas, 2)

	areas = mentionedAreas(profiles, "Tell me about Scarborough")
	assert.Empty(t, areas)
}

func TestIsResourceQuestion(t *testing.T) {
	assert.True(t, isResourceQuestion("Where can I find victim support?"))
	assert.True(t, isResourceQuestion("I need HELP"))
	assert.False(t, isResourceQuestion("How many shootings in Downsview?"))
}

func TestSplitFollowUps(t *testing.T) {
	text := `Downsview has a risk score of 72/100.

### FOLLOW_UP_QUESTIONS
1. "What safety measures are recommended for Downsview?"
2. "How do these numbers compare to last year?"
3. "When is Downsview safest to visit?"
###`

	response, questions := splitFollowUps(text)
	assert.Equal(t, "Downsview has a risk score of 72/100.", response)
	require.Len(t, questions, 3)
	assert.Equal(t, "What safety measures are recommended for Downsview?", questions[0])
}

func TestSplitFollowUpsMissingBlock(t *testing.T) {
	response, questions := splitFollowUps("Just an answer with no questions.")
	assert.Equal(t, "Just an answer with no questions.", response)
	assert.Empty(t, questions)
}

func TestSplitFollowUpsMalformedLines(t *testing.T) {
	text := `Answer.

### FOLLOW_UP_QUESTIONS
1. "Good question?"
2. unquoted line is skipped
###`

	response, questions := splitFollowUps(text)
	assert.Equal(t, "Answer.", response)
	require.Len(t, questions, 1)
	assert.Equal(t, "Good question?", questions[0])
}

func TestBuildChatPromptEmbedsAreaData(t *testing.T) {
	areas := mentionedAreas(testProfiles(), "downsview")
	prompt := buildChatPrompt("How safe is Downsview?", areas, false)

	assert.Contains(t, prompt, "Downsview:")
	assert.Contains(t, prompt, "Risk Level: High (72/100)")
	assert.Contains(t, prompt, "shootingIncidents: 4")
	assert.Contains(t, prompt, "shootingIncidents: ~2")
	assert.Contains(t, prompt, "Trend: ↑15%")
	assert.Contains(t, prompt, "User Question: How safe is Downsview?")
	assert.Contains(t, prompt, "### FOLLOW_UP_QUESTIONS")
}

func TestBuildChatPromptResourceQuestion(t *testing.T) {
	areas := mentionedAreas(testProfiles(), "downsview")
	prompt := buildChatPrompt("Where can victims get help in Downsview?", areas, true)

	assert.NotContains(t, prompt, "Area Safety Data")
	assert.Contains(t, prompt, "SUPPORTIVE response")
}

func TestTrendArrow(t *testing.T) {
	assert.Equal(t, "↑15%", trendArrow(15))
	assert.Equal(t, "↓8%", trendArrow(-8))
	assert.Equal(t, "0%", trendArrow(0))
}

func TestChatEndToEnd(t *testing.T) {
	completer := &stubCompleter{reply: `Answer text.

### FOLLOW_UP_QUESTIONS
1. "Follow up one?"
2. "Follow up two?"
3. "Follow up three?"
###`}
	svc := NewChatService(completer, &stubProfiles{profiles: testProfiles()}, logging.Nop())

	result, err := svc.Chat(context.Background(), "How risky is Downsview?")
	require.NoError(t, err)
	assert.Equal(t, "Answer text.", result.Response)
	assert.Len(t, result.FollowUpQuestions, 3)
	require.Len(t, result.MentionedNeighbourhoods, 1)
	assert.Equal(t, "Downsview", result.MentionedNeighbourhoods[0].Name)
	assert.Contains(t, completer.prompt, "Risk Level: High")
}

func TestChatProfileSourceFailure(t *testing.T) {
	svc := NewChatService(&stubCompleter{}, &stubProfiles{err: errors.New("es down")}, logging.Nop())
	_, err := svc.Chat(context.Background(), "anything")
	assert.Error(t, err)
}

func TestChatWithoutCompleter(t *testing.T) {
	svc := NewChatService(nil, &stubProfiles{}, logging.Nop())
	_, err := svc.Chat(context.Background(), "anything")
	assert.Error(t, err)
}
