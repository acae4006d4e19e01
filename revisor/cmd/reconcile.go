package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
)

var reconcileJSON bool
var showTiming bool

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile <narrative-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Run the evidence pipeline on a narrative file",
	Long: `Reads a model-generated narrative (use "-" for stdin), extracts the
finding and journal proposal, validates the journal, runs the leading-digit
test, and cross-references against the SIE export given with --file.`,
	Run: func(_ *cobra.Command, args []string) {
		start := time.Now()

		narrative, err := readInput(args[0])
		if err != nil {
			log.Fatalln(err)
		}
		ledgerText, err := readLedgerText()
		if err != nil {
			log.Fatalln(err)
		}
		pol, err := cliPolicy()
		if err != nil {
			log.Fatalln(err)
		}

		res := revisor.Reconcile(narrative, ledgerText, pol)

		if reconcileJSON {
			out, merr := json.MarshalIndent(res, "", "  ")
			if merr != nil {
				log.Fatalln(merr)
			}
			fmt.Println(string(out))
		} else {
			printResult(res)
		}

		if showTiming {
			elapsed := durafmt.Parse(time.Since(start).Round(time.Millisecond))
			fmt.Fprintf(os.Stderr, "reconciled in %s\n", elapsed)
		}
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Emit the full result as JSON.")
	reconcileCmd.Flags().BoolVar(&showTiming, "timing", false, "Report elapsed time on stderr.")
}

func printResult(res revisor.Result) {
	buf := bufio.NewWriter(os.Stdout)
	defer buf.Flush()

	fmt.Fprintf(buf, "integrity hash: %s\n", res.IntegrityHash)

	if res.Finding == nil {
		fmt.Fprintln(buf, "finding:        none extracted")
	} else {
		material := ""
		if res.Finding.IsMaterial {
			material = " [MATERIAL]"
		}
		fmt.Fprintf(buf, "finding:        %s%s\n  %s\n", res.Finding.Type, material, res.Finding.Content)
	}
	rest := res.Findings
	if len(rest) > 0 {
		rest = rest[1:]
	}
	for _, f := range rest {
		origin := "extracted"
		if f.Synthetic {
			origin = "synthesized"
		}
		fmt.Fprintf(buf, "also (%s): %s: %s\n", origin, f.Type, f.Content)
	}

	switch {
	case res.Journal != nil && res.Journal.Balanced:
		fmt.Fprintf(buf, "journal:        %d lines, balanced (debit %s / credit %s)\n",
			len(res.Journal.Entries), res.Journal.TotalDebit.StringFixedBank(2), res.Journal.TotalCredit.StringFixedBank(2))
	case res.Journal != nil:
		fmt.Fprintf(buf, "journal:        %d lines, NOT balanced, off by %s\n",
			len(res.Journal.Entries), res.Journal.Difference().StringFixedBank(2))
	case res.JournalError != "":
		fmt.Fprintf(buf, "journal:        rejected (%s)\n", res.JournalError)
	default:
		fmt.Fprintln(buf, "journal:        none proposed")
	}
	if res.Journal != nil {
		for _, e := range res.Journal.Entries {
			fmt.Fprintf(buf, "    %-6s %-30s %12s %12s\n",
				e.Account, e.Description, e.Debit.StringFixedBank(2), e.Credit.StringFixedBank(2))
		}
	}

	if res.Anomaly.SampleSize < 10 {
		fmt.Fprintf(buf, "digit test:     inconclusive (%d samples)\n", res.Anomaly.SampleSize)
	} else if res.Anomaly.Suspicious {
		fmt.Fprintf(buf, "digit test:     SUSPICIOUS, deviation %.1f%% over %d samples (advisory)\n",
			res.Anomaly.Score*100, res.Anomaly.SampleSize)
	} else {
		fmt.Fprintf(buf, "digit test:     unremarkable (%d samples)\n", res.Anomaly.SampleSize)
	}

	if res.MatchedVoucher != nil {
		v := res.MatchedVoucher
		fmt.Fprintf(buf, "ledger match:   voucher %s %s on %s: %s\n", v.Series, v.Number, v.Date, v.Text)
	} else if sieFilePath != "" {
		fmt.Fprintln(buf, "ledger match:   none found")
	}
}
