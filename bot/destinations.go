package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"travel-bot/models"

	"go.uber.org/zap"
)

const (
	maxVerbatimRegionLen = 20
	maxRecommendations   = 10
)

var leadingNumber = regexp.MustCompile(`^\d+[.)]\s*`)

// handleDestinations answers one region query and then drops back to general
// mode. Questions leave the mode without an answer so they can be handled as
// general conversation.
func (r *Router) handleDestinations(ctx context.Context, conv models.Conversation, text string) (Outcome, error) {
	if looksLikeQuestion(text) {
		if err := r.store.UpdateConversationMode(ctx, conv.ID, models.ModeGeneral); err != nil {
			return Outcome{}, fmt.Errorf("leave destinations mode: %w", err)
		}
		return RedirectToGeneral(text), nil
	}

	reply, err := r.gateway.Complete(ctx, conv, destinationsPrompt, text)
	if err != nil {
		return Outcome{}, err
	}
	if containsAny(reply, regionQuestionMarkers) {
		return Replied(reply), nil
	}

	region, ok := extractRegion(text)
	if !ok {
		return Replied(reply), nil
	}

	recommendations, err := r.gateway.Recommend(ctx, region)
	if err != nil {
		r.logger.Error("recommend destinations failed", zap.String("region", region), zap.Error(err))
		return Replied(regionHeader(region) + "抱歉，目前無法取得該地區的景點資訊。請稍後再試或查詢其他地區。"), nil
	}

	if err := r.store.UpdateConversationMode(ctx, conv.ID, models.ModeGeneral); err != nil {
		return Outcome{}, fmt.Errorf("leave destinations mode: %w", err)
	}
	return Replied(formatRecommendations(region, recommendations)), nil
}

func looksLikeQuestion(text string) bool {
	return containsAny(text, questionKeywords)
}

// extractRegion finds a known region in text, or accepts short text without
// a question mark as the region name itself.
func extractRegion(text string) (string, bool) {
	for _, kw := range regionKeywords {
		if strings.Contains(text, kw) {
			return kw, true
		}
	}
	if utf8.RuneCountInString(text) <= maxVerbatimRegionLen && !strings.ContainsAny(text, "?？") {
		return text, true
	}
	return "", false
}

func regionHeader(region string) string {
	return fmt.Sprintf("📊 %s 地區的熱門旅遊景點：\n\n", region)
}

// formatRecommendations renumbers the model's list, keeping at most ten
// non-empty lines.
func formatRecommendations(region, raw string) string {
	var b strings.Builder
	b.WriteString(regionHeader(region))
	n := 0
	for _, line := range strings.Split(raw, "\n") {
		clean := strings.TrimSpace(leadingNumber.ReplaceAllString(strings.TrimSpace(line), ""))
		if clean == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, clean)
		if n == maxRecommendations {
			break
		}
	}
	return b.String()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
