package cmd

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/jbrukh/bayesian"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <description>...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Suggest a BAS account for a description, learned from the ledger",
	Long: `Trains a naive-Bayes classifier on the voucher texts of the SIE export
given with --file and predicts which account a new transaction with the given
description would be booked against. The control account is excluded from the
classes; it appears on nearly every voucher and would drown the signal.`,
	Run: func(_ *cobra.Command, args []string) {
		if sieFilePath == "" {
			log.Fatalln("suggest requires --file")
		}
		doc, err := cliLedger()
		if err != nil {
			log.Fatalln(err)
		}
		pol, err := cliPolicy()
		if err != nil {
			log.Fatalln(err)
		}

		classifier, err := trainClassifier(doc, pol.ControlAccount)
		if err != nil {
			log.Fatalln(err)
		}

		words := strings.Fields(strings.Join(args, " "))
		account := predictAccount(classifier, words)
		if account == "" {
			fmt.Println("no confident suggestion")
			return
		}
		name := doc.AccountName(account)
		if name != "" {
			fmt.Printf("%s  %s\n", account, name)
		} else {
			fmt.Println(account)
		}
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

// trainClassifier learns account classes from voucher texts: for every
// voucher, each booked account (except the control account) is taught the
// words of the voucher text.
func trainClassifier(doc *revisor.Document, controlAccount string) (*bayesian.Classifier, error) {
	uniqueAccounts := make(map[string]bool)
	for _, v := range doc.Vouchers {
		for _, t := range v.Transactions {
			if t.Account != controlAccount {
				uniqueAccounts[t.Account] = true
			}
		}
	}

	classes := make([]bayesian.Class, 0, len(uniqueAccounts))
	for code := range uniqueAccounts {
		classes = append(classes, bayesian.Class(code))
	}
	if len(classes) < 2 {
		return nil, fmt.Errorf("ledger has %d distinct accounts outside the control account; need at least 2 to train", len(classes))
	}

	classifier := bayesian.NewClassifier(classes...)
	for _, v := range doc.Vouchers {
		words := strings.Fields(v.Text)
		if len(words) == 0 {
			continue
		}
		for _, t := range v.Transactions {
			if t.Account != controlAccount {
				classifier.Learn(words, bayesian.Class(t.Account))
			}
		}
	}
	return classifier, nil
}

// predictAccount classifies the description words. A suggestion is only
// returned when the spread between the best and second-best log score
// indicates a high-confidence match; otherwise the empty string.
func predictAccount(classifier *bayesian.Classifier, words []string) string {
	highScore1 := math.Inf(-1)
	highScore2 := math.Inf(-1)
	matchIdx := 0
	scores, _, _ := classifier.LogScores(words)
	for j, score := range scores {
		if score > highScore1 {
			highScore2 = highScore1
			highScore1 = score
			matchIdx = j
		} else if score > highScore2 {
			highScore2 = score
		}
	}
	if highScore1-highScore2 > 10 {
		return string(classifier.Classes[matchIdx])
	}
	return ""
}
