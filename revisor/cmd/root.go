package cmd

import (
	"io"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
)

var sieFilePath string
var policyFilePath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "revisor",
	Short: "Verify machine-generated audit evidence against SIE ledgers",
	Long: `revisor turns free-text audit narratives into verified artifacts: a
classified finding, a validated double-entry journal proposal, a leading-digit
anomaly check, and a cross-reference against a SIE4 ledger export.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:  rootCmd,
		Headings: cc.HiCyan + cc.Bold + cc.Underline,
		Commands: cc.HiYellow + cc.Bold,
		Example:  cc.Italic,
		ExecName: cc.Bold,
		Flags:    cc.Bold,
	})
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sieFilePath, "file", "f", "", "SIE export to cross-reference against.")
	rootCmd.PersistentFlags().StringVar(&policyFilePath, "policy", "", "TOML policy file overriding the default thresholds.")
}

// cliLedger parses the SIE file given with --file, or stdin for "-".
func cliLedger() (*revisor.Document, error) {
	if sieFilePath == "-" {
		return revisor.ParseSIE(os.Stdin), nil
	}
	return revisor.ParseSIEFile(sieFilePath)
}

// readInput reads a narrative file, or stdin for "-".
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// readLedgerText returns the raw text of the --file SIE export, or "" when
// no ledger was given. The pipeline does its own parsing.
func readLedgerText() (string, error) {
	if sieFilePath == "" {
		return "", nil
	}
	if sieFilePath == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(sieFilePath)
	return string(data), err
}
