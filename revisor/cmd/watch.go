package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hako/durafmt"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"

	"github.com/hwallberg/revisor"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Args:  cobra.ExactArgs(1),
	Short: "Reconcile narrative files as they land in a directory",
	Long: `Watches a directory and runs the evidence pipeline on every narrative
file written into it. Results are logged; files whose integrity hash was
already seen within 24 hours are skipped. Stop with Ctrl-C.`,
	Run: func(_ *cobra.Command, args []string) {
		ledgerText, err := readLedgerText()
		if err != nil {
			log.Fatalln(err)
		}
		pol, err := cliPolicy()
		if err != nil {
			log.Fatalln(err)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Fatalln(err)
		}
		defer watcher.Close()
		if err := watcher.Add(args[0]); err != nil {
			log.Fatalln(err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		seen := gocache.New(24*time.Hour, time.Hour)
		start := time.Now()
		processed := 0

		logger.Info("watching", "dir", args[0])
		for {
			select {
			case <-ctx.Done():
				elapsed := durafmt.Parse(time.Since(start).Round(time.Second))
				logger.Info("stopping", "processed", processed, "uptime", elapsed.String())
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if reconcileFile(logger, seen, event.Name, ledgerText, pol) {
					processed++
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watch error", "err", werr)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// reconcileFile runs the pipeline on one file and logs the outcome. Returns
// false when the file was skipped as unreadable or already seen.
func reconcileFile(logger *slog.Logger, seen *gocache.Cache, path, ledgerText string, pol revisor.Policy) bool {
	narrative, err := os.ReadFile(path)
	if err != nil || len(narrative) == 0 {
		return false
	}

	res := revisor.Reconcile(string(narrative), ledgerText, pol)
	if _, dup := seen.Get(res.IntegrityHash); dup {
		logger.Info("skipping duplicate", "file", filepath.Base(path), "hash", res.IntegrityHash[:12])
		return false
	}
	seen.SetDefault(res.IntegrityHash, true)

	attrs := []any{
		"file", filepath.Base(path),
		"hash", res.IntegrityHash[:12],
		"findings", len(res.Findings),
	}
	if res.Finding != nil {
		attrs = append(attrs, "type", string(res.Finding.Type), "material", res.Finding.IsMaterial)
	}
	if res.Journal != nil {
		attrs = append(attrs, "balanced", res.Journal.Balanced)
	}
	if res.Anomaly.Suspicious {
		attrs = append(attrs, "suspicious", true)
	}
	if res.MatchedVoucher != nil {
		attrs = append(attrs, "voucher", res.MatchedVoucher.Series+" "+res.MatchedVoucher.Number)
	}
	logger.Info("reconciled", attrs...)
	return true
}
