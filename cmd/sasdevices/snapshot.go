package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/saslab/sasdevices/internal/config"
	"github.com/saslab/sasdevices/internal/db"
	"github.com/saslab/sasdevices/internal/report"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store the current topology in the snapshot database",
	Long: `Run the topology enumeration and persist the result.

Snapshots make recabling and disk swaps auditable: take one before and
one after, then compare group membership and path counts with
'sasdevices history show'.`,
	Run: runSnapshot,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored topology snapshots",
	Run:   runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one stored snapshot",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of snapshots to list")
	historyCmd.AddCommand(historyShowCmd)
}

func openDB(cfg *config.Config) (*db.DB, error) {
	return db.New(cfg.DBPath)
}

func runSnapshot(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	rep, err := buildReport(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	database, err := openDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	out := report.BuildOutput(rep, namerFromConfig(cfg))
	id, err := database.SaveRun(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved snapshot %s: %d groups, %d units, %d orphans\n",
		id, len(out.Groups), countUnits(out), len(out.Orphans))
}

func countUnits(out *report.Output) int {
	n := 0
	for _, g := range out.Groups {
		n += len(g.Units)
	}
	return n
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	database, err := openDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	runs, err := database.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying snapshots: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No snapshots stored. Run 'sasdevices snapshot' to take one.")
		return
	}

	fmt.Printf("%-36s %-20s %-6s %-9s %-6s %-7s %s\n",
		"ID", "TAKEN", "HOSTS", "EXPANDERS", "GROUPS", "ORPHANS", "SKIPPED")
	for _, r := range runs {
		fmt.Printf("%-36s %-20s %-6d %-9d %-6d %-7d %d\n",
			r.ID, humanize.Time(r.CreatedAt), r.Hosts, r.Expanders,
			r.Groups, r.Orphans, r.Skipped)
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	database, err := openDB(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	run, groups, units, err := database.GetRun(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Snapshot %s taken %s on %s\n", run.ID,
		humanize.Time(run.CreatedAt), run.Hostname)
	fmt.Printf("Hosts: %d  Expanders: %d  Skipped: %d\n\n",
		run.Hosts, run.Expanders, run.Skipped)

	for _, g := range groups {
		fmt.Printf("Enclosure group: %s\n", g.Label)
		for _, u := range units {
			if u.GroupIndex == nil || *u.GroupIndex != g.Index {
				continue
			}
			paths := fmt.Sprintf("%d", u.Paths)
			if u.UnderPathed {
				paths += "*"
			}
			fmt.Printf("%3d %25s %12s %12s %-3s %10s %12s %8s %s\n",
				u.Bay, u.LU, u.Blocks, u.SGs, paths,
				u.Vendor, u.Model, u.Rev, u.Size)
		}
	}

	orphans := false
	for _, u := range units {
		if u.GroupIndex != nil {
			continue
		}
		if !orphans {
			fmt.Println("Orphan devices:")
			orphans = true
		}
		fmt.Printf("%3d %25s %12s %12s %-3d %10s %12s %8s %s\n",
			u.Bay, u.LU, u.Blocks, u.SGs, u.Paths,
			u.Vendor, u.Model, u.Rev, u.Size)
	}
}
