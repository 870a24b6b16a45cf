package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{
		Rule:     "fence-closed",
		File:     "content/post.md",
		Line:     12,
		Column:   1,
		Message:  "fence not closed",
		Severity: SeverityError,
	}
	assert.Equal(t, "content/post.md:12:1: error: fence not closed (fence-closed)", d.Error())

	d.Line = 0
	assert.Equal(t, "content/post.md: error: fence not closed (fence-closed)", d.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestCollectorAdd(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.False(t, c.HasWarnings())

	c.Add(Diagnostic{Rule: "title-required", Severity: SeverityError})
	assert.True(t, c.HasErrors())
	assert.Equal(t, 1, c.Count())

	diags := c.Diagnostics()
	require.Len(t, diags, 1)
	assert.False(t, diags[0].Timestamp.IsZero())
}

func TestCollectorWarningsAreNotErrors(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Rule: "fence-language", Severity: SeverityWarning})

	assert.True(t, c.HasWarnings())
	assert.False(t, c.HasErrors())
}

func TestCollectorGeneralErrors(t *testing.T) {
	c := NewCollector()
	c.AddError(nil)
	assert.False(t, c.HasErrors())

	c.AddError(fmt.Errorf("scan failed"))
	assert.True(t, c.HasErrors())
	assert.Len(t, c.Errors(), 1)
}

func TestCollectorErrorsIncludeDiagnostics(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Rule: "a", Severity: SeverityError, Message: "first"})
	c.AddError(fmt.Errorf("second"))

	errs := c.Errors()
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "first")
	assert.Contains(t, errs[1].Error(), "second")
}

func TestCollectorByFile(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{File: "a.md", Severity: SeverityError})
	c.Add(Diagnostic{File: "b.md", Severity: SeverityWarning})
	c.Add(Diagnostic{File: "a.md", Severity: SeverityInfo})

	assert.Len(t, c.ByFile("a.md"), 2)
	assert.Len(t, c.ByFile("b.md"), 1)
	assert.Empty(t, c.ByFile("c.md"))
}

func TestCollectorBySeverity(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Severity: SeverityError})
	c.Add(Diagnostic{Severity: SeverityWarning})
	c.Add(Diagnostic{Severity: SeverityWarning})

	assert.Len(t, c.BySeverity(SeverityWarning), 2)
	assert.Len(t, c.BySeverity(SeverityError), 1)
	assert.Empty(t, c.BySeverity(SeverityFatal))
}

func TestCollectorClear(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Severity: SeverityError})
	c.AddError(fmt.Errorf("boom"))

	c.Clear()
	assert.Equal(t, 0, c.Count())
	assert.False(t, c.HasErrors())
}

func TestCollectorConcurrentAdds(t *testing.T) {
	c := NewCollector()
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Add(Diagnostic{Severity: SeverityInfo})
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 800, c.Count())
}
