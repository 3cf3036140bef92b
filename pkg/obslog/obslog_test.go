package obslog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonancedb/resonancedb/pkg/obslog"
)

func TestNewBuildsALogger(t *testing.T) {
	log, err := obslog.New("debug")
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	log, err := obslog.New("not-a-level")
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNoopDiscardsEverything(t *testing.T) {
	log := obslog.Noop()
	require.NotNil(t, log)
	assert.NotPanics(t, func() {
		log.Infow("this goes nowhere", "k", "v")
	})
}
