package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/amit7itz/goset"
	"github.com/fleetsync/gcp-integration-syncer/health"
	"github.com/fleetsync/gcp-integration-syncer/prometheus"
	"github.com/fleetsync/gcp-integration-syncer/shared/gcpprojects"
	"github.com/fleetsync/gcp-integration-syncer/shared/kibana"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncerconfig"
	"github.com/fleetsync/gcp-integration-syncer/shared/version"
	"github.com/fleetsync/gcp-integration-syncer/syncer"
	"github.com/fleetsync/gcp-integration-syncer/syncer/template"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func main() {
	syncerconfig.InitCLIFlags()

	if viper.GetBool(syncerconfig.DebugLogKey) {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Infof("Starting gcp-integration-syncer version %s", version.Version())

	syncerconfig.MustGetString(syncerconfig.KibanaEndpointKey)
	syncerconfig.MustGetString(syncerconfig.ElasticAPIKeyKey)
	syncerconfig.MustGetString(syncerconfig.MasterAgentPolicyNameKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := gcpprojects.NewSource(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("unable to initialize GCP project source")
	}
	defer source.Close()

	tmpl := template.New(viper.GetString(syncerconfig.DerivedNamePrefixKey))
	store := kibana.NewClient(tmpl)
	exclusions := goset.FromSlice(viper.GetStringSlice(syncerconfig.ExcludedProjectsKey))
	if exclusions.Len() > 0 {
		logrus.Infof("Excluding projects from sync: %v", exclusions.Items())
	}

	engine := syncer.NewEngine(source, store, tmpl, exclusions)

	go serveMetrics(viper.GetString(syncerconfig.MetricsAddrKey))
	go serveHealthProbe(viper.GetString(syncerconfig.ProbeAddrKey))

	if viper.GetBool(syncerconfig.RunOnceKey) {
		failed, err := runPass(ctx, engine)
		if err != nil {
			logrus.WithError(err).Fatal("reconciliation pass failed")
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	interval := viper.GetDuration(syncerconfig.SyncIntervalKey)
	logrus.Infof("Starting sync loop with interval %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// A single goroutine runs passes, so passes never overlap.
	for {
		if _, err := runPass(ctx, engine); err != nil {
			logrus.WithError(err).Error("reconciliation pass failed, retrying on the next interval")
		}

		select {
		case <-ctx.Done():
			logrus.Info("Shutting down")
			return
		case <-ticker.C:
		}
	}
}

func runPass(ctx context.Context, engine *syncer.Engine) (failedOperations int, err error) {
	health.UpdateLastPassStartTime()

	result, err := engine.RunPass(ctx)
	if err != nil {
		prometheus.IncrementPassesFailed()
		return 0, err
	}

	health.UpdateLastPassEndTime()
	prometheus.IncrementPassesCompleted()

	logrus.WithFields(logrus.Fields{
		"pass":      result.PassID,
		"created":   len(result.Created),
		"updated":   len(result.Updated),
		"deleted":   len(result.Deleted),
		"failed":    len(result.Failed),
		"malformed": len(result.Malformed),
	}).Info("Reconciliation pass completed")

	if len(result.Failed) > 0 {
		failures := lo.Map(result.Failed, func(failure syncer.FailedOperation, _ int) string {
			return fmt.Sprintf("%s (%s): %s", failure.ProjectID, failure.Operation, failure.Reason)
		})
		logrus.Warningf("%d operations failed: %s", len(failures), strings.Join(failures, "; "))
	}

	return len(result.Failed), nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.WithError(err).Fatal("metrics server failed")
	}
}

func serveHealthProbe(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := health.Checker(r); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.WithError(err).Fatal("health probe server failed")
	}
}
