package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forPelevin/ayatreel/internal/domain/overlay"
	"github.com/forPelevin/ayatreel/internal/domain/subtitles"
	"github.com/forPelevin/ayatreel/internal/pipeline"
	"github.com/forPelevin/ayatreel/internal/types"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the composition plan for a duration and text as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := planFromFlags(cmd)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	addPlanFlags(cmd)
	return cmd
}

func newASSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ass",
		Short: "Print the ASS overlay script for a duration and text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan, err := planFromFlags(cmd)
			if err != nil {
				return err
			}
			script, err := subtitles.RenderPlanASS(plan)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), script)
			return err
		},
	}
	addPlanFlags(cmd)
	return cmd
}

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("duration", 0, "Audio duration in seconds")
	cmd.Flags().String("arab", "", "Arabic text")
	cmd.Flags().String("translation", "", "Translation text")
	cmd.Flags().String("surah-name", "", "Surah name for the reference caption")
	cmd.Flags().Int("ayat", 0, "Ayat number for the reference caption")
	cmd.Flags().String("chrome", "", "Optional hook line")
	cmd.Flags().String("words", "", "JSON word timings: [{position,start_ms,end_ms}] or [[position,start_ms,end_ms]]")
	cmd.Flags().String("segments", "", "JSON audio segments: [{start,end}]")
	_ = cmd.MarkFlagRequired("duration")
}

func planFromFlags(cmd *cobra.Command) (types.CompositionPlan, error) {
	tuning, err := loadTuning(cmd)
	if err != nil {
		return types.CompositionPlan{}, err
	}
	req := overlay.Request{}
	req.AudioDuration, _ = cmd.Flags().GetFloat64("duration")
	req.TextArab, _ = cmd.Flags().GetString("arab")
	req.TextTranslation, _ = cmd.Flags().GetString("translation")
	req.SurahName, _ = cmd.Flags().GetString("surah-name")
	req.Ayat, _ = cmd.Flags().GetInt("ayat")
	req.Chrome, _ = cmd.Flags().GetString("chrome")

	if path, _ := cmd.Flags().GetString("words"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return types.CompositionPlan{}, err
		}
		if req.WordTimings, err = parseWordTimings(b); err != nil {
			return types.CompositionPlan{}, fmt.Errorf("words %s: %w", path, err)
		}
	}
	if path, _ := cmd.Flags().GetString("segments"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return types.CompositionPlan{}, err
		}
		if err := json.Unmarshal(b, &req.Segments); err != nil {
			return types.CompositionPlan{}, fmt.Errorf("segments %s: %w", path, err)
		}
	}
	return pipeline.NewScheduler(tuning).BuildPlan(req)
}

// parseWordTimings accepts objects or the compact [position, start_ms,
// end_ms] triples used by public alignment datasets.
func parseWordTimings(b []byte) ([]types.WordTiming, error) {
	var objs []types.WordTiming
	if err := json.Unmarshal(b, &objs); err == nil {
		return objs, nil
	}
	var rows [][]int
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	out := make([]types.WordTiming, 0, len(rows))
	for i, r := range rows {
		if len(r) < 3 {
			return nil, fmt.Errorf("row %d: want [position, start_ms, end_ms], got %v", i, r)
		}
		out = append(out, types.WordTiming{Position: r[0], StartMS: r[1], EndMS: r[2]})
	}
	return out, nil
}
