package syncerconfig

import (
	"strings"
	"time"

	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KibanaEndpointKey          = "kibana-endpoint" // Base URL of the Kibana instance hosting the Fleet API
	ElasticAPIKeyKey           = "elastic-api-key" // API key for the Fleet API, sent as an ApiKey Authorization header
	KibanaClientTimeoutKey     = "kibana-client-timeout"
	KibanaClientTimeoutDefault = 30 * time.Second
	MasterAgentPolicyNameKey   = "master-agent-policy-name" // Name of the agent policy holding the single master integration
	DerivedNamePrefixKey       = "derived-name-prefix"      // Prefix of every integration policy this syncer owns
	DerivedNamePrefixDefault   = "gcp-sync"
	ExcludedProjectsKey        = "excluded-projects" // Project IDs that never get an integration policy
	GCPParentScopeKey          = "gcp-parent"        // Optional organizations/... or folders/... scope for the project search
	GCPQuotaProjectKey         = "gcp-quota-project" // Project whose quota the Resource Manager calls are billed against
	SyncIntervalKey            = "sync-interval"
	SyncIntervalDefault        = 5 * time.Minute
	RunOnceKey                 = "run-once" // Run a single pass and exit instead of looping
	RunOnceDefault             = false
	MetricsAddrKey             = "metrics-bind-address"
	MetricsAddrDefault         = ":2112"
	ProbeAddrKey               = "health-probe-bind-address"
	ProbeAddrDefault           = ":8181"
	DebugLogKey                = "debug"
	DebugLogDefault            = false

	EnvPrefix = "FLEETSYNC"
)

func init() {
	viper.SetDefault(KibanaClientTimeoutKey, KibanaClientTimeoutDefault)
	viper.SetDefault(DerivedNamePrefixKey, DerivedNamePrefixDefault)
	viper.SetDefault(ExcludedProjectsKey, nil)
	viper.SetDefault(SyncIntervalKey, SyncIntervalDefault)
	viper.SetDefault(RunOnceKey, RunOnceDefault)
	viper.SetDefault(MetricsAddrKey, MetricsAddrDefault)
	viper.SetDefault(ProbeAddrKey, ProbeAddrDefault)
	viper.SetDefault(DebugLogKey, DebugLogDefault)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("/etc/fleetsync")
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			logrus.WithError(err).Panic("Failed to read config file")
		}
	}
}

func InitCLIFlags() {
	pflag.String(KibanaEndpointKey, "", "Base URL of the Kibana instance hosting the Fleet API")
	pflag.String(ElasticAPIKeyKey, "", "API key used to authenticate against the Fleet API")
	pflag.Duration(KibanaClientTimeoutKey, KibanaClientTimeoutDefault, "Timeout for each Fleet API request")
	pflag.String(MasterAgentPolicyNameKey, "", "Name of the agent policy holding the master integration policy")
	pflag.String(DerivedNamePrefixKey, DerivedNamePrefixDefault, "Name prefix of the integration policies managed by this syncer")
	pflag.StringSlice(ExcludedProjectsKey, nil, "GCP project IDs to exclude from syncing. Specify multiple values by specifying multiple times or separate with commas.")
	pflag.String(GCPParentScopeKey, "", "Optional organizations/ or folders/ scope to restrict the project search to")
	pflag.String(GCPQuotaProjectKey, "", "GCP project whose quota is used for Resource Manager calls")
	pflag.Duration(SyncIntervalKey, SyncIntervalDefault, "Interval between reconciliation passes")
	pflag.Bool(RunOnceKey, RunOnceDefault, "Run a single reconciliation pass and exit")
	pflag.String(MetricsAddrKey, MetricsAddrDefault, "The address the metric endpoint binds to.")
	pflag.String(ProbeAddrKey, ProbeAddrDefault, "The address the probe endpoint binds to.")
	pflag.Bool(DebugLogKey, DebugLogDefault, "Enable debug logging")

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		logrus.WithError(err).Panic("Failed to bind CLI flags")
	}

	pflag.Parse()
}

// MustGetString fails fast on configuration the syncer cannot run without.
func MustGetString(key string) string {
	value := viper.GetString(key)
	if value == "" {
		logrus.Fatalf("%s configuration value is required", key)
	}

	return value
}
