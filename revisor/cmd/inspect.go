package cmd

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hwallberg/revisor"
)

var columnWidth int
var columnWide bool
var showAccounts bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a parsed SIE export",
	Long: `Parses the SIE export given with --file and prints the organization,
chart of accounts, and vouchers with a per-voucher balance check.`,
	Run: func(_ *cobra.Command, _ []string) {
		if sieFilePath == "" {
			log.Fatalln("inspect requires --file")
		}
		doc, err := cliLedger()
		if err != nil {
			log.Fatalln(err)
		}

		if columnWide {
			columnWidth = 132
			fd := int(os.Stdout.Fd())
			if isatty.IsTerminal(os.Stdout.Fd()) {
				if tw, _, terr := term.GetSize(fd); terr == nil {
					columnWidth = tw
				}
			}
		}

		printDocument(doc)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVar(&columnWidth, "columns", 80, "Set a column width for output.")
	inspectCmd.Flags().BoolVar(&columnWide, "wide", false, "Wide output (use terminal width).")
	inspectCmd.Flags().BoolVar(&showAccounts, "accounts", false, "Include the chart of accounts.")
}

func printDocument(doc *revisor.Document) {
	buf := bufio.NewWriter(os.Stdout)
	defer buf.Flush()

	fmt.Fprintf(buf, "%s (org.nr %s)\n", doc.Name, doc.OrgNr)
	fmt.Fprintf(buf, "%d accounts, %d vouchers\n\n", len(doc.Accounts), len(doc.Vouchers))

	if showAccounts {
		for _, a := range doc.Accounts {
			fmt.Fprintf(buf, "  %-6s %s\n", a.Code, a.Name)
		}
		fmt.Fprintln(buf)
	}

	for i := range doc.Vouchers {
		v := &doc.Vouchers[i]
		header := fmt.Sprintf("%s %s  %s  %s", v.Series, v.Number, v.Date, v.Text)
		balance := "balanced"
		if !v.Balance().IsZero() {
			balance = "off by " + v.Balance().StringFixedBank(2)
		}
		pad := columnWidth - utf8.RuneCountInString(header) - utf8.RuneCountInString(balance)
		if pad < 1 {
			pad = 1
		}
		fmt.Fprintf(buf, "%s%s%s\n", header, strings.Repeat(" ", pad), balance)

		for _, t := range v.Transactions {
			amount := t.Amount.StringFixedBank(2)
			desc := t.Description
			width := columnWidth - 4 - 6 - 1 - 12 - 1
			if width > 0 && utf8.RuneCountInString(desc) > width {
				desc = string([]rune(desc)[:width])
			}
			fmt.Fprintf(buf, "    %-6s %12s %s\n", t.Account, amount, desc)
		}
		fmt.Fprintln(buf)
	}
}
