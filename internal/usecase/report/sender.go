package report

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var tamRe = regexp.MustCompile(`(?i)\bTAM\b[^$\n]*(\$[\d.,]+\s*(?:billion|million|thousand|[BMK])?)`)

type SendResult struct {
	OK     bool     `json:"ok"`
	Sent   int      `json:"messages_sent"`
	Total  int      `json:"total_chunks"`
	Errors []string `json:"errors,omitempty"`
}

// Sender posts reports through a notifier, pacing consecutive messages.
type Sender struct {
	notifier output.Notifier
	spacing  time.Duration
	log      output.LoggerPort
}

func NewSender(n output.Notifier, log output.LoggerPort) *Sender {
	return &Sender{notifier: n, spacing: 300 * time.Millisecond, log: log}
}

func (s *Sender) WithSpacing(d time.Duration) *Sender {
	s.spacing = d
	return s
}

// SendFullReport converts the markdown report, sends a header and then every
// chunk. Individual failures are collected, not returned.
func (s *Sender) SendFullReport(ctx context.Context, markdown, sessionID string, eliminated bool, score float64) SendResult {
	chunks := SplitMessage(MarkdownToSlack(markdown), MaxMessageLen)

	emoji, verdict := "✅", "PASS"
	if eliminated {
		emoji, verdict = "❌", "FAIL"
	}
	header := fmt.Sprintf("%s *Full Evaluation Report* - Session `%s` - Score: *%.1f/10* - Verdict: *%s*",
		emoji, sessionID, score, verdict)

	messages := append([]string{header}, chunks...)
	res := SendResult{Total: len(messages)}
	for i, msg := range messages {
		if i > 0 && s.spacing > 0 {
			select {
			case <-ctx.Done():
				res.Errors = append(res.Errors, ctx.Err().Error())
				return res
			case <-time.After(s.spacing):
			}
		}
		if err := s.notifier.Notify(ctx, entity.Notification{Text: msg}); err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Sent++
	}
	res.OK = res.Sent == res.Total
	if !res.OK {
		s.log.Warn("Report partially delivered", "notifier", s.notifier.Name(), "sent", res.Sent, "total", res.Total)
	}
	return res
}

// SendEvaluationSummary posts a block-kit card for one result.
func (s *Sender) SendEvaluationSummary(ctx context.Context, r *entity.IdeaResult, reportPath string) error {
	return s.notifier.Notify(ctx, SummaryNotification(r, reportPath))
}

func SummaryNotification(r *entity.IdeaResult, reportPath string) entity.Notification {
	emoji, verdict := "✅", "PASS"
	if r.Eliminated {
		emoji, verdict = "❌", "FAIL"
	}
	tam := "N/A"
	if m := tamRe.FindStringSubmatch(r.MarketSizing); m != nil {
		tam = strings.TrimSpace(m[1])
	}

	mk := func(s string) entity.BlockText { return entity.BlockText{Type: "mrkdwn", Text: s} }
	blocks := []entity.Block{
		{Type: "header", Text: &entity.BlockText{Type: "plain_text", Text: emoji + " Startup Evaluation Complete", Emoji: true}},
		{Type: "section", Fields: []entity.BlockText{
			mk(fmt.Sprintf("*Session ID:*\n`%s`", r.SessionID)),
			mk(fmt.Sprintf("*Score:*\n*%.1f/10*", r.TotalScore)),
		}},
		{Type: "section", Fields: []entity.BlockText{
			mk(fmt.Sprintf("*Verdict:*\n%s *%s*", emoji, verdict)),
			mk("*TAM:*\n" + tam),
		}},
		{Type: "divider"},
		{Type: "section", Text: ptr(mk("*Problem Statement:*\n>" + shorten(r.Topic, 200)))},
	}
	if len(r.CriterionScores) > 0 {
		blocks = append(blocks,
			entity.Block{Type: "divider"},
			entity.Block{Type: "section", Text: ptr(mk("*Criteria:*\n" + formatCriteria(r.CriterionScores)))},
		)
	}
	if len(r.Warnings) > 0 {
		blocks = append(blocks, entity.Block{Type: "section", Text: ptr(mk("*Warnings:*\n• " + strings.Join(r.Warnings, "\n• ")))})
	}
	if reportPath != "" {
		blocks = append(blocks, entity.Block{Type: "context", Fields: []entity.BlockText{mk("📄 Full report: `" + reportPath + "`")}})
	}

	return entity.Notification{
		Text:   fmt.Sprintf("Startup Evaluation Complete: %s (%.1f/10) - Session %s", verdict, r.TotalScore, r.SessionID),
		Blocks: blocks,
	}
}

func ptr[T any](v T) *T { return &v }
