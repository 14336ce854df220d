package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// canonCmd prints persisted canons
var canonCmd = &cobra.Command{
	Use:   "canon [name]",
	Short: "Show canons saved in the canon database",
	Long: `Without a name, lists the saved canons. With a name, prints each
graph of that canon in the output format.

Requires canon.path in the config or --db.`,
	Args: cobra.MaximumNArgs(1),
	RunE: showCanon,
}

func showCanon(cmd *cobra.Command, args []string) error {
	if cfg.Canon.Path == "" {
		return fmt.Errorf("no canon database configured (set canon.path or --db)")
	}
	svc, closeSvc, err := newService(nil, nil)
	if err != nil {
		return err
	}
	defer closeSvc()

	w := cmd.OutOrStdout()
	if len(args) == 0 {
		names, err := svc.StoredCanons(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(w, "no saved canons")
		}
		for _, name := range names {
			fmt.Fprintln(w, name)
		}
		return nil
	}

	graphs, err := svc.StoredCanon(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, g := range graphs {
		if err := svc.Render(g, w); err != nil {
			return err
		}
	}
	return nil
}
