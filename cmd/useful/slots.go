package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sghaida/useful/dependency"
	"github.com/sghaida/useful/examples/purge"
	"github.com/sghaida/useful/telemetry"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List the Purger's slots and recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "CLASS\t%s\n\n", purge.Class.Name())
			_, _ = fmt.Fprintln(w, "SLOT\tKIND\tCAPABILITY\tRECIPES")
			for _, info := range purge.Class.Slots() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Kind, orDash(info.Capability), orDash(joinNamespaces(info.Recipes)))
			}
			return w.Flush()
		},
	}
}

func newSinksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sinks",
		Short: "List the telemetry sinks usable in the sinks setting",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range telemetry.Available() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func joinNamespaces(namespaces []dependency.Namespace) string {
	parts := make([]string, len(namespaces))
	for i, ns := range namespaces {
		parts[i] = string(ns)
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
