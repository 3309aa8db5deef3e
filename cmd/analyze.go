package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pable/go-nhl-metrics/internal/series"
	"github.com/pable/go-nhl-metrics/internal/stats"
	"github.com/pable/go-nhl-metrics/internal/viewer"
)

const analyzeSystemPrompt = `You are an NHL statistics analyst. You are given structured per-game
distribution data for one skater, goalie or team and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise. Call out small samples (fewer than 15 games) as unreliable.

Data glossary:
- mean / sd: sample mean and population standard deviation per game.
- normal_fit: false when the series is constant or too short for a curve.
- reference: share of games strictly below and strictly above a line;
  games landing exactly on the line are reported as "equal".
- normal_below / normal_above: the same split under the fitted normal.
- over_under: share of games strictly above each half-integer line.
- transitions: for teams, row-normalized % of games with each goal count in
  the later period given the goal count in the earlier period.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeKind   string
	analyzeRef    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id-or-name> <question>",
	Short: "AI-powered grounded analysis of an entity (requires ANTHROPIC_API_KEY)",
	Long: `Send the computed views of one skater, goalie or team to the Anthropic API
together with a question, and stream the answer.

Example:
  nhlmetrics analyze "Connor McDavid" "How often does he clear 1.5 points?"
  nhlmetrics analyze --ref 27.5 shesterkin "Is the over on 27.5 saves a good bet?"`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default $NHLMETRICS_ANALYZE_MODEL)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.Flags().StringVar(&analyzeKind, "kind", "", "restrict the lookup to skater, goalie or team")
	analyzeCmd.Flags().StringVar(&analyzeRef, "ref", "", "reference line to include in the data")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	kind, err := kindFlag(analyzeKind)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	e, b, err := resolveBundle(db, kind, args[0])
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("no entity found matching %q", args[0])
	}

	contextJSON, err := buildEntityContext(b, viewer.ReferenceOption(analyzeRef))
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	log.Debug().Str("entity", e.Name).Int("bytes", len(contextJSON)).Msg("analysis context built")

	model := analyzeModel
	if model == "" {
		model = cfg.AnalyzeModel
	}
	key := analyzeAPIKey
	if key == "" {
		key = cfg.AnthropicAPIKey
	}
	return callAnthropic(cmd.Context(), key, model, contextJSON, args[1])
}

// buildEntityContext serialises the views of b into compact JSON.
func buildEntityContext(b series.Bundle, ref *float64) (string, error) {
	doc := map[string]any{
		"subject": b.EntityKind().String(),
		"name":    b.EntityName(),
		"id":      b.EntityID(),
	}

	if tb, ok := b.(series.TeamSeriesBundle); ok {
		tv, err := viewer.Team(tb)
		if err != nil {
			return "", err
		}
		doc["games"] = tv.Games
		doc["transitions"] = map[string]any{
			"period1_to_period2":   transitionContext(tv.P1ToP2),
			"periods12_to_period3": transitionContext(tv.FirstTwoToP3),
		}
		doc["total_goals"] = summaryContext(tv.Total)
		doc["total_goals_over_under"] = overUnderContext(tv.TotalLines)
	} else {
		views, err := metricViews(b, "all", viewer.Options{Reference: ref})
		if err != nil {
			return "", err
		}
		metrics := make([]map[string]any, 0, len(views))
		for _, v := range views {
			m := map[string]any{
				"metric":     v.Label,
				"summary":    summaryContext(v.Summary),
				"over_under": overUnderContext(v.OverUnder),
			}
			if v.Truncated {
				m["truncated_to_games"] = len(v.Series)
			}
			if r := v.Reference; r != nil && !r.InsufficientData {
				rc := map[string]any{
					"line":  r.Reference,
					"below": round2(r.EmpiricalBelowPct),
					"above": round2(r.EmpiricalAbovePct),
					"equal": round2(r.EmpiricalEqualPct),
				}
				if r.Theoretical != nil {
					rc["normal_below"] = round2(r.Theoretical.BelowPct)
					rc["normal_above"] = round2(r.Theoretical.AbovePct)
				}
				m["reference"] = rc
			}
			metrics = append(metrics, m)
		}
		doc["metrics"] = metrics
	}

	data, err := json.Marshal(doc)
	return string(data), err
}

func summaryContext(s stats.Summary) map[string]any {
	if s.InsufficientData {
		return map[string]any{"games": 0}
	}
	return map[string]any{
		"games":      s.Count,
		"mean":       round2(s.Mean),
		"sd":         round2(s.Sigma),
		"min":        s.Min,
		"median":     s.Median,
		"max":        s.Max,
		"normal_fit": s.HasCurve(),
	}
}

func overUnderContext(c stats.OverUnderCurve) map[string]float64 {
	out := make(map[string]float64, len(c.Points))
	for _, p := range c.Points {
		out[fmt.Sprintf("%.1f", p.Threshold)] = round2(p.OverPct)
	}
	return out
}

func transitionContext(m stats.TransitionMatrix) map[string]any {
	out := make(map[string]any, len(m.Rows))
	for _, f := range m.FromValues() {
		row := make(map[string]float64)
		for _, t := range m.ToValues() {
			if pct := m.Cell(f, t); pct > 0 {
				row[fmt.Sprint(t)] = round2(pct)
			}
		}
		out[fmt.Sprint(f)] = map[string]any{"games": m.RowGames(f), "pct": row}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
