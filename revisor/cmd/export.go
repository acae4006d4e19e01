package cmd

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
	"github.com/hwallberg/revisor/revisor/vault"
)

var exportOut string
var exportTitle string
var exportCompress bool

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <narrative-file>",
	Args:  cobra.ExactArgs(1),
	Short: "Run the pipeline and write an evidence record",
	Long: `Runs the evidence pipeline on a narrative file and writes the resulting
record as JSON, ready for ingestion by the evidence store. With --compress the
output is brotli-compressed and the file gets a .br suffix.`,
	Run: func(_ *cobra.Command, args []string) {
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

		title := exportTitle
		if title == "" {
			title = recordTitle(args[0])
		}
		rec := vault.NewRecord(res, narrative, title)
		data, err := rec.Marshal()
		if err != nil {
			log.Fatalln(err)
		}

		out := exportOut
		if out == "" {
			out = rec.ID + ".json"
		}
		if exportCompress {
			data, err = brotliCompress(data)
			if err != nil {
				log.Fatalln(err)
			}
			if !strings.HasSuffix(out, ".br") {
				out += ".br"
			}
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			log.Fatalln(err)
		}
		log.Println("wrote", out)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (defaults to <record-id>.json).")
	exportCmd.Flags().StringVar(&exportTitle, "title", "", "Record title (defaults to the narrative filename).")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "Brotli-compress the record.")
}

func recordTitle(path string) string {
	if path == "-" {
		return "stdin narrative"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func brotliCompress(data []byte) ([]byte, error) {
	var out bytes.Buffer
	w := brotli.NewWriter(&out)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
