package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/alfredxing/calc/compute"
	date "github.com/joyt/godate"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
)

var matchAmountStr string
var matchDateStr string
var matchAccount string

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Cross-reference an amount against the ledger's control account",
	Long: `Searches the SIE export given with --file for the first voucher with a
transaction of the given absolute amount on the control account. The amount
may be a parenthesized arithmetic expression, e.g. --amount "(40000*1.25)".`,
	Run: func(_ *cobra.Command, _ []string) {
		if sieFilePath == "" || matchAmountStr == "" {
			log.Fatalln("match requires --file and --amount")
		}
		doc, err := cliLedger()
		if err != nil {
			log.Fatalln(err)
		}
		pol, err := cliPolicy()
		if err != nil {
			log.Fatalln(err)
		}
		account := matchAccount
		if account == "" {
			account = pol.ControlAccount
		}

		amount, err := parseAmountArg(matchAmountStr)
		if err != nil {
			log.Fatalln(err)
		}

		verDate := ""
		if matchDateStr != "" {
			parsed, derr := date.Parse(matchDateStr)
			if derr != nil {
				log.Fatalf("unable to parse date(%s): %v", matchDateStr, derr)
			}
			verDate = parsed.Format("20060102")
		}

		v := revisor.FindMatchingVoucher(doc, amount, account, verDate)
		if v == nil {
			fmt.Printf("no voucher matches %s on account %s\n", amount.StringFixedBank(2), account)
			return
		}
		fmt.Printf("voucher %s %s on %s: %s\n", v.Series, v.Number, v.Date, v.Text)
		for _, t := range v.Transactions {
			fmt.Printf("    %-6s %12s %s\n", t.Account, t.Amount.StringFixedBank(2), t.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&matchAmountStr, "amount", "a", "", "Amount to search for (number or parenthesized expression).")
	matchCmd.Flags().StringVarP(&matchDateStr, "date", "d", "", "Restrict the search to vouchers on this date.")
	matchCmd.Flags().StringVar(&matchAccount, "account", "", "Control account code (defaults to the policy's).")
}

// parseAmountArg accepts a plain decimal or a parenthesized expression.
func parseAmountArg(s string) (decimal.Decimal, error) {
	if strings.HasPrefix(s, "(") {
		val, err := compute.Evaluate(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("unable to evaluate amount expression %q: %w", s, err)
		}
		return decimal.NewFromFloat(val), nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount %q: %w", s, err)
	}
	return amount, nil
}
