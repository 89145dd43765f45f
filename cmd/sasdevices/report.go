package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/saslab/sasdevices/internal/config"
	"github.com/saslab/sasdevices/internal/report"
	"github.com/saslab/sasdevices/internal/ses"
	"github.com/saslab/sasdevices/internal/sysfs"
	"github.com/saslab/sasdevices/internal/topology"
	"github.com/saslab/sasdevices/internal/vpd"
	"github.com/spf13/cobra"
)

func runReport(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

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

	namer := namerFromConfig(cfg)

	if jsonOut {
		if err := report.RenderJSON(os.Stdout, rep, namer); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	report.Render(os.Stdout, rep, namer, report.Options{
		Verbose: verbose,
		Color:   useColor(cfg, noColor),
	})
}

// buildReport runs the acquisition and aggregation pipeline. A missing
// device class is noted on the report and the remaining categories are
// still enumerated.
func buildReport(cfg *config.Config) (*report.Report, error) {
	tree := sysfs.New(cfg.SysfsRoot)

	hostname, _ := os.Hostname()
	rep := &report.Report{
		Hostname: hostname,
		When:     time.Now().UTC(),
	}

	var err error
	if rep.Hosts, err = tree.Hosts(); err != nil {
		if !errors.Is(err, sysfs.ErrClassNotFound) {
			return nil, err
		}
		rep.NotFound = append(rep.NotFound, "sas_host")
	}
	if rep.Expanders, err = tree.Expanders(); err != nil {
		if !errors.Is(err, sysfs.ErrClassNotFound) {
			return nil, err
		}
		rep.NotFound = append(rep.NotFound, "sas_expander")
	}

	var records []topology.Record
	if records, err = tree.EndDevices(); err != nil {
		if !errors.Is(err, sysfs.ErrClassNotFound) {
			return nil, err
		}
		rep.NotFound = append(rep.NotFound, "sas_end_device")
	}

	topo := topology.Aggregate(records, vpd.New(cfg.SysfsRoot))
	rep.Clusters = topology.Cluster(topo.Units)
	rep.Skipped = topo.Skipped
	rep.Warnings = topo.Warnings

	return rep, nil
}

// namerFromConfig wires configured nickname overrides on top of SES
// lookups.
func namerFromConfig(cfg *config.Config) *ses.Namer {
	overrides := make(map[string]string, len(cfg.Nicknames))
	for _, n := range cfg.Nicknames {
		overrides[n.SASAddress] = n.Nickname
	}
	return &ses.Namer{Overrides: overrides}
}

func useColor(cfg *config.Config, noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	switch cfg.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}
