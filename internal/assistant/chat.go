package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
)

// ProfileSource supplies the current safety analysis. The API layer backs
// this with the cached analysis pipeline.
type ProfileSource interface {
	Profiles(ctx context.Context) ([]domain.RiskProfile, error)
}

// MentionedArea is one neighbourhood referenced in a chat message, with the
// risk data embedded in the model prompt and echoed to the client.
type MentionedArea struct {
	Name         string                `json:"name"`
	RiskLevel    string                `json:"riskLevel"`
	RiskScore    int                   `json:"riskScore"`
	Incidents    domain.CategoryCounts `json:"incidents"`
	Predictions  domain.CategoryCounts `json:"predictions"`
	OverallTrend int                   `json:"overallTrend"`
}

// ChatResult is the chat endpoint response.
type ChatResult struct {
	Response                string          `json:"response"`
	FollowUpQuestions       []string        `json:"followUpQuestions"`
	MentionedNeighbourhoods []MentionedArea `json:"mentionedNeighbourhoods"`
	Timestamp               time.Time       `json:"timestamp"`
}

// ChatService answers safety questions grounded in the current analysis.
type ChatService struct {
	completer Completer
	profiles  ProfileSource
	logger    logging.Logger
}

// NewChatService creates a chat service. A nil completer makes Chat fail;
// callers should not expose the endpoint without a configured model.
func NewChatService(completer Completer, profiles ProfileSource, log logging.Logger) *ChatService {
	return &ChatService{completer: completer, profiles: profiles, logger: log}
}

// Chat answers one user message. The current per-area risk data for any
// neighbourhood named in the message is embedded in the prompt, and the
// model's trailing follow-up question block is split off into structured
// suggestions.
func (s *ChatService) Chat(ctx context.Context, message string) (*ChatResult, error) {
	if s.completer == nil {
		return nil, fmt.Errorf("chat assistant is not configured")
	}

	profiles, err := s.profiles.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load safety analysis: %w", err)
	}

	areas := mentionedAreas(profiles, message)
	resource := isResourceQuestion(message)
	prompt := buildChatPrompt(message, areas, resource)

	s.logger.Info("Chat request",
		logging.Int("mentioned_areas", len(areas)),
		logging.Bool("resource_question", resource),
	)

	text, err := s.completer.Complete(ctx, "", prompt)
	if err != nil {
		return nil, err
	}

	response, followUps := splitFollowUps(text)
	return &ChatResult{
		Response:                response,
		FollowUpQuestions:       followUps,
		MentionedNeighbourhoods: areas,
		Timestamp:               time.Now().UTC(),
	}, nil
}

// mentionedAreas returns the profile data for every neighbourhood whose
// name appears in the message, case-insensitively. Profile order is
// preserved, so higher-risk areas come first.
func mentionedAreas(profiles []domain.RiskProfile, message string) []MentionedArea {
	lower := strings.ToLower(message)
	areas := make([]MentionedArea, 0)
	for i := range profiles {
		p := &profiles[i]
		if p.Neighbourhood == "" || !strings.Contains(lower, strings.ToLower(p.Neighbourhood)) {
			continue
		}
		areas = append(areas, MentionedArea{
			Name:         p.Neighbourhood,
			RiskLevel:    p.RiskLevel,
			RiskScore:    p.RiskScore,
			Incidents:    p.Incidents,
			Predictions:  p.Predictions,
			OverallTrend: p.OverallTrend,
		})
	}
	return areas
}

// resourceKeywords flag a message as asking for help rather than statistics.
var resourceKeywords = []string{"resource", "help", "support", "victim"}

func isResourceQuestion(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range resourceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// categoryCountLines renders the non-zero per-category counts as
// "type: count" pairs.
func categoryCountLines(counts domain.CategoryCounts, prefix string, includeZero bool) string {
	parts := make([]string, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		n := counts.Get(cat)
		if n == 0 && !includeZero {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s%d", cat, prefix, n))
	}
	return strings.Join(parts, ", ")
}

func trendArrow(trend int) string {
	if trend > 0 {
		return fmt.Sprintf("↑%d%%", trend)
	}
	if trend < 0 {
		return fmt.Sprintf("↓%d%%", -trend)
	}
	return "0%"
}

// buildChatPrompt assembles the grounded prompt. Resource questions get a
// support-oriented template without the statistics block.
func buildChatPrompt(message string, areas []MentionedArea, resource bool) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful AI assistant specializing in Toronto's safety information. ")
	if resource {
		sb.WriteString("Provide supportive and resource-focused responses.\n")
	} else {
		sb.WriteString("Provide BRIEF and CONCISE responses with SPECIFIC NUMBERS from the data provided.\n")
	}

	if !resource && len(areas) > 0 {
		sb.WriteString("\nArea Safety Data:\n")
		for _, a := range areas {
			sb.WriteString(fmt.Sprintf("\n%s:\n", a.Name))
			sb.WriteString(fmt.Sprintf("• Risk Level: %s (%d/100)\n", a.RiskLevel, a.RiskScore))
			sb.WriteString(fmt.Sprintf("• Current Incidents: %s\n", categoryCountLines(a.Incidents, "", false)))
			sb.WriteString(fmt.Sprintf("• 3-Month Predictions: %s\n", categoryCountLines(a.Predictions, "~", true)))
			sb.WriteString(fmt.Sprintf("• Trend: %s\n", trendArrow(a.OverallTrend)))
		}
	}

	sb.WriteString("\nUser Question: ")
	sb.WriteString(message)
	sb.WriteString("\n")

	if resource {
		sb.WriteString(`
Provide a SUPPORTIVE response in this format:
1. Immediate support resources (emergency numbers, hotlines)
2. Available victim services and organizations
3. Steps to get help
4. Additional support information
`)
	} else {
		sb.WriteString(`
Provide a CONCISE response in this format:
1. One-line summary including specific numbers (risk score and trend)
2. Current statistics (use actual numbers)
3. 3-month predictions (use predicted numbers)
4. One specific safety tip
`)
	}

	sb.WriteString(`
Keep the entire response under 100 words.

After your response, add exactly three relevant follow-up questions in this EXACT format (including the ###):

### FOLLOW_UP_QUESTIONS
1. "What specific safety measures are recommended for this area?"
2. "How do these statistics compare to last year?"
3. "What are the safest times to visit this location?"
###

Make sure each follow-up question is:
1. Relevant to the user's original question
2. Specific and actionable
3. Focused on different aspects (e.g., prevention, comparison, timing)
Do not use generic placeholders - make each question specific to the context.`)

	return sb.String()
}

var (
	followUpBlockRe = regexp.MustCompile(`### FOLLOW_UP_QUESTIONS\n([\s\S]*?)\n###`)
	followUpLineRe  = regexp.MustCompile(`\d+\.\s*"([^"]+)"`)
)

// splitFollowUps separates the model's answer from its trailing follow-up
// question block. A malformed or missing block leaves the full text as the
// answer with no suggestions. At most three questions are returned.
func splitFollowUps(text string) (string, []string) {
	match := followUpBlockRe.FindStringSubmatch(text)
	if match == nil {
		return strings.TrimSpace(text), []string{}
	}

	questions := make([]string, 0, 3)
	for _, line := range strings.Split(match[1], "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := followUpLineRe.FindStringSubmatch(line); m != nil {
			questions = append(questions, m[1])
		}
	}
	if len(questions) > 3 {
		questions = questions[:3]
	}

	response := strings.TrimSpace(strings.SplitN(text, "### FOLLOW_UP_QUESTIONS", 2)[0])
	return response, questions
}
