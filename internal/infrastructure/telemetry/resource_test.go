package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResource(t *testing.T) {
	lookup := func(t *testing.T, cfg Config, key string) (string, bool) {
		res, err := newResource(cfg)
		require.NoError(t, err)
		v, ok := res.Set().Value(attribute.Key(key))
		return v.AsString(), ok
	}

	t.Run("stamps name and version", func(t *testing.T) {
		cfg := Config{ServiceName: "custody-backend", ServiceVersion: "1.4.0"}
		name, _ := lookup(t, cfg, "service.name")
		version, _ := lookup(t, cfg, "service.version")
		assert.Equal(t, "custody-backend", name)
		assert.Equal(t, "1.4.0", version)
	})

	t.Run("defaults version and skips empty environment", func(t *testing.T) {
		cfg := Config{ServiceName: "custody-backend"}
		version, _ := lookup(t, cfg, "service.version")
		assert.Equal(t, "dev", version)
		_, ok := lookup(t, cfg, "deployment.environment.name")
		assert.False(t, ok)
	})

	t.Run("stamps environment", func(t *testing.T) {
		env, ok := lookup(t, Config{ServiceName: "custody-backend", Environment: "staging"}, "deployment.environment.name")
		require.True(t, ok)
		assert.Equal(t, "staging", env)
	})
}
