package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillmark/quill/internal/errors"
)

func collectorWith(severities ...errors.Severity) *errors.Collector {
	c := errors.NewCollector()
	for _, s := range severities {
		c.Add(errors.Diagnostic{Rule: "title-required", Severity: s, Message: "x"})
	}
	return c
}

func TestLintVerdict(t *testing.T) {
	t.Run("clean run returns nil", func(t *testing.T) {
		assert.NoError(t, lintVerdict(collectorWith(), false))
		assert.NoError(t, lintVerdict(collectorWith(), true))
	})

	t.Run("errors fail regardless of strict", func(t *testing.T) {
		c := collectorWith(errors.SeverityError)
		assert.Error(t, lintVerdict(c, false))
		assert.Error(t, lintVerdict(c, true))
	})

	t.Run("warnings fail only under strict", func(t *testing.T) {
		c := collectorWith(errors.SeverityWarning)
		assert.NoError(t, lintVerdict(c, false))
		assert.Error(t, lintVerdict(c, true))
	})
}
