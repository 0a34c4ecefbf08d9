package syncerconfig

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, DerivedNamePrefixDefault, viper.GetString(DerivedNamePrefixKey))
	assert.Equal(t, 30*time.Second, viper.GetDuration(KibanaClientTimeoutKey))
	assert.Equal(t, 5*time.Minute, viper.GetDuration(SyncIntervalKey))
	assert.False(t, viper.GetBool(RunOnceKey))
	assert.Empty(t, viper.GetStringSlice(ExcludedProjectsKey))
	assert.Equal(t, MetricsAddrDefault, viper.GetString(MetricsAddrKey))
	assert.Equal(t, ProbeAddrDefault, viper.GetString(ProbeAddrKey))
}

func TestEnvBinding(t *testing.T) {
	t.Setenv("FLEETSYNC_KIBANA_ENDPOINT", "https://kibana.example.com:5601")
	assert.Equal(t, "https://kibana.example.com:5601", viper.GetString(KibanaEndpointKey))
}
