package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/canvasreplay/internal/event"
	"github.com/roach88/canvasreplay/internal/harness"
	"github.com/roach88/canvasreplay/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Type  string
	Since int64
	Until int64
	Limit int
}

// InspectEntry is one log entry in inspect output.
type InspectEntry struct {
	Index int         `json:"index"`
	Hash  string      `json:"hash"`
	Event event.Event `json:"event"`
}

// InspectResult is the inspect payload.
type InspectResult struct {
	Scenario string         `json:"scenario"`
	Total    int            `json:"total"`
	Counts   map[string]int `json:"counts"`
	Entries  []InspectEntry `json:"entries"`
	Digest   string         `json:"digest"`

	// order keeps CountByType's ordering for text output.
	order []store.TypeCount
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <scenario.yaml>",
		Short: "Record a scenario and query its event log",
		Long: `Record the scenario's steps, index the log in an in-memory SQLite
database and print per-type counts followed by the matching entries.

Timestamps are Unix milliseconds; --since and --until are inclusive.

Example:
  canvasreplay inspect ./scenarios/editor_session.yaml
  canvasreplay inspect --type node_update ./scenarios/editor_session.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "only entries of this event type")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only entries at or after this timestamp")
	cmd.Flags().Int64Var(&opts.Until, "until", 0, "only entries at or before this timestamp")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of entries (0 = all)")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Type != "" && !event.Type(opts.Type).Valid() {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown event type %q", opts.Type))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	log, err := harness.Record(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to record scenario", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := inspectLog(ctx, log, store.Filter{
		Type:  event.Type(opts.Type),
		Since: opts.Since,
		Until: opts.Until,
		Limit: opts.Limit,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to index log", err)
	}
	result.Scenario = scenario.Name

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s\n", result.Scenario)
	fmt.Fprintf(w, "Events: %d\n", result.Total)
	fmt.Fprintf(w, "Digest: %s\n", result.Digest)
	for _, tc := range result.order {
		fmt.Fprintf(w, "  %-16s %d\n", tc.Type, tc.Count)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tTIMESTAMP\tTYPE\tHASH")
	for _, e := range result.Entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", e.Index, e.Event.Timestamp, e.Event.Type, shortHash(e.Hash))
	}
	return tw.Flush()
}

// inspectLog indexes log and runs the filtered query.
func inspectLog(ctx context.Context, log []event.Event, filter store.Filter) (*InspectResult, error) {
	st, err := store.Open()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Index(ctx, log); err != nil {
		return nil, err
	}

	total, err := st.Count(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := st.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := st.ReadRange(ctx, filter)
	if err != nil {
		return nil, err
	}
	digest, err := event.Digest(log)
	if err != nil {
		return nil, err
	}

	result := &InspectResult{
		Total:   total,
		Counts:  make(map[string]int, len(counts)),
		Entries: make([]InspectEntry, len(entries)),
		Digest:  digest,
		order:   counts,
	}
	for _, tc := range counts {
		result.Counts[string(tc.Type)] = tc.Count
	}
	for i, e := range entries {
		result.Entries[i] = InspectEntry{Index: e.Index, Hash: e.Hash, Event: e.Event}
	}
	return result, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
