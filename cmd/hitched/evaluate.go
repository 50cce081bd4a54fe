package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/compatibility"
	"github.com/mroshb/hitched/internal/profile"
	"github.com/mroshb/hitched/internal/safety"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate PROFILE_A.json PROFILE_B.json",
	Short: "Score two raw profiles without touching storage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readRawProfile(args[0])
		if err != nil {
			return err
		}
		b, err := readRawProfile(args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(evaluatePair(a, b, safety.NewPipeline(nil)))
	},
}

type evaluation struct {
	compatibility.Result
	Explanation string `json:"explanation"`
}

// evaluatePair scores two raw profiles and passes the texts through pipeline.
func evaluatePair(a, b map[string]any, pipeline *safety.Pipeline) evaluation {
	n := profile.NewNormalizer()
	res := compatibility.Evaluate(n.Normalize("a", a), n.Normalize("b", b))

	res.Reasons = pipeline.Strings(res.Reasons)
	res.Reason = pipeline.Text(res.Reason)
	res.Notes = pipeline.Text(res.Notes)
	return evaluation{Result: res, Explanation: pipeline.Text(compatibility.Explain(res.Score))}
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func readRawProfile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw, nil
}
