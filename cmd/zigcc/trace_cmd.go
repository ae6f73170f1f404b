package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"zigcc/internal/dispatch"
	"zigcc/internal/trace"
)

func newTraceCmd(a *app) *cobra.Command {
	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect the per-tool trace logs",
	}

	traceCmd.AddCommand(&cobra.Command{
		Use:   "list <tool>",
		Short: "Summarize every recorded invocation of a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.readTrace(cmd, args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No trace records.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTraceTable(records))
			return nil
		},
	})

	traceCmd.AddCommand(&cobra.Command{
		Use:   "show <tool> <n>",
		Short: "Print record n (1-based) verbatim",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid record number %q", args[1])
			}
			records, err := a.readTrace(cmd, args[0])
			if err != nil {
				return err
			}
			if n < 1 || n > len(records) {
				return fmt.Errorf("record %d out of range (1-%d)", n, len(records))
			}
			_, err = cmd.OutOrStdout().Write(records[n-1].Render())
			return err
		},
	})

	traceCmd.AddCommand(&cobra.Command{
		Use:   "follow <tool>",
		Short: "Print new records as they are appended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.tracePath(args[0])
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Following %s (Ctrl+C to stop)\n", path)
			fmt.Fprintln(out, renderTraceHeader())
			n := 0
			return trace.Follow(ctx, path, func(rec trace.Record) {
				n++
				fmt.Fprintln(out, renderTraceRow(n, rec))
			})
		},
	})

	return traceCmd
}

func (a *app) tracePath(tool string) (string, error) {
	if _, ok := dispatch.LookupTool(tool); !ok {
		return "", fmt.Errorf("unknown tool %q (known: %v)", tool, dispatch.ToolNames())
	}
	dir, err := a.installDir()
	if err != nil {
		return "", err
	}
	return trace.FilePath(dir, tool), nil
}

// readTrace returns the readable records of tool's log. A damaged tail is
// reported on stderr and the records before it are kept.
func (a *app) readTrace(cmd *cobra.Command, tool string) ([]trace.Record, error) {
	path, err := a.tracePath(tool)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	records, err := trace.Parse(data)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %v\n", path, err)
	}
	return records, nil
}
