package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/content"
	"github.com/abhisek/conceptlink/internal/game"
	"github.com/abhisek/conceptlink/internal/hints"
)

var replayCmd = &cobra.Command{
	Use:   "replay <model> <moves>",
	Short: "Play a puzzle headlessly from a moves file",
	Long: `Drive a session from a moves file and print the outcome of every move,
the final score and the profile.

One move per line; blank lines and lines starting with # are ignored:

  connect <source> <target>
  inspect <node>
  hint
  finish

Use "-" as the moves file to read from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Bool("json", false, "Print the report as JSON")
	replayCmd.Flags().Duration("step", 5*time.Second, "Simulated time between moves")
	replayCmd.Flags().Bool("finish", true, "Finish the session if the moves leave it active")
	replayCmd.Flags().Bool("record", false, "Record the session to the store and configured sinks")
}

type move struct {
	Line int
	Op   string
	Args []string
}

func (m move) String() string {
	return strings.Join(append([]string{m.Op}, m.Args...), " ")
}

var moveArity = map[string]int{
	"connect": 2,
	"inspect": 1,
	"hint":    0,
	"finish":  0,
}

// parseMoves reads a moves file, rejecting unknown operations and wrong
// argument counts with the offending line number.
func parseMoves(r io.Reader) ([]move, error) {
	var moves []move
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		op := strings.ToLower(fields[0])
		want, ok := moveArity[op]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown move %q", line, fields[0])
		}
		if len(fields)-1 != want {
			return nil, fmt.Errorf("line %d: %s takes %d argument(s), got %d", line, op, want, len(fields)-1)
		}
		moves = append(moves, move{Line: line, Op: op, Args: fields[1:]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read moves: %w", err)
	}
	return moves, nil
}

type replayStep struct {
	Line    int    `json:"line"`
	Move    string `json:"move"`
	Outcome string `json:"outcome"`
	Delta   int    `json:"delta"`
	Score   int    `json:"score"`
}

type replayReport struct {
	SessionID   string                `json:"session_id"`
	ModelID     string                `json:"model_id"`
	Phase       game.Phase            `json:"phase"`
	CompletedBy game.CompletionReason `json:"completed_by,omitempty"`
	Score       int                   `json:"score"`
	Steps       []replayStep          `json:"steps"`
	Profile     *analytics.Profile    `json:"profile,omitempty"`
}

// replayMoves starts s and applies every move in order. Moves after the
// session completes are reported as rejected.
func replayMoves(s *game.Session, moves []move, finish bool) (replayReport, error) {
	if err := s.Start(); err != nil {
		return replayReport{}, err
	}

	steps := make([]replayStep, 0, len(moves))
	for _, m := range moves {
		before := s.Score()
		step := replayStep{Line: m.Line, Move: m.String()}
		switch m.Op {
		case "connect":
			res := s.AttemptConnection(m.Args[0], m.Args[1])
			switch res.Status {
			case game.Accepted:
				step.Outcome = string(res.Classification)
				if res.Completed {
					step.Outcome += " (completed)"
				}
			case game.AlreadySolved:
				step.Outcome = "already solved"
			default:
				step.Outcome = "rejected: " + res.Err.Error()
			}
		case "inspect":
			step.Outcome = "inspected"
			if err := s.InspectNode(m.Args[0]); err != nil {
				step.Outcome = "rejected: " + err.Error()
			}
		case "hint":
			res := s.RequestHint()
			switch res.Status {
			case hints.Granted:
				step.Outcome = fmt.Sprintf("hint %s → %s", res.Edge.Source, res.Edge.Target)
			case game.HintRejected:
				step.Outcome = "rejected: " + res.Err.Error()
			default:
				step.Outcome = string(res.Status)
			}
		case "finish":
			step.Outcome = "finished"
			if err := s.Finish(); err != nil {
				step.Outcome = "rejected: " + err.Error()
			}
		}
		step.Score = s.Score()
		step.Delta = step.Score - before
		steps = append(steps, step)
	}

	if finish && s.Phase() == game.PhaseActive {
		if err := s.Finish(); err != nil {
			return replayReport{}, err
		}
	}

	st := s.State()
	rep := replayReport{
		SessionID:   st.SessionID,
		ModelID:     st.ModelID,
		Phase:       st.Phase,
		CompletedBy: st.CompletedBy,
		Score:       st.Score,
		Steps:       steps,
	}
	if p, err := s.Profile(); err == nil {
		rep.Profile = &p
	}
	return rep, nil
}

// steppedClock advances by step on every reading after the first.
func steppedClock(start time.Time, step time.Duration) func() time.Time {
	now := start.Add(-step)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	step, _ := cmd.Flags().GetDuration("step")
	finish, _ := cmd.Flags().GetBool("finish")
	record, _ := cmd.Flags().GetBool("record")

	model, err := content.LoadFile(args[0])
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open moves: %w", err)
		}
		defer f.Close()
		in = f
	}
	moves, err := parseMoves(in)
	if err != nil {
		return err
	}

	gameCfg, err := appConfig.GameConfig()
	if err != nil {
		return err
	}
	opts := []game.Option{
		game.WithConfig(gameCfg),
		game.WithClock(steppedClock(time.Now().UTC(), step)),
	}

	if record {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		recorder, err := buildRecorder(cmd.Context(), appConfig, st.EventRepo())
		if err != nil {
			return err
		}
		defer closeRecorder(recorder)
		opts = append(opts, game.WithObserver(recorder))
	}

	s, err := game.New(model, opts...)
	if err != nil {
		return err
	}
	rep, err := replayMoves(s, moves, finish)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReplay(out, rep)
	return nil
}

func printReplay(out io.Writer, rep replayReport) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tMOVE\tOUTCOME\tDELTA\tSCORE")
	for _, s := range rep.Steps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%+d\t%d\n", s.Line, s.Move, s.Outcome, s.Delta, s.Score)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nSession %s: %s", rep.SessionID, rep.Phase)
	if rep.CompletedBy != "" {
		fmt.Fprintf(out, " (%s)", rep.CompletedBy)
	}
	fmt.Fprintf(out, ", score %d\n", rep.Score)

	if rep.Profile == nil {
		return
	}
	p := rep.Profile
	fmt.Fprintf(out, "Completion score %d/100, overall %s\n\n", p.CompletionScore, p.Overall)
	for _, m := range analytics.AllMetrics() {
		fmt.Fprintf(out, "  %-21s %5.1f\n", m, p.Metrics.Get(m))
	}
	fmt.Fprintf(out, "\nTop skill: %s\nFocus area: %s\n", p.TopSkill, p.FocusArea)
	for _, m := range p.Mistakes {
		fmt.Fprintf(out, "Mistake: %s → %s ×%d %s\n", m.Source, m.Target, m.Count, m.Explanation)
	}
}
