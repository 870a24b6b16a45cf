package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrintDoctorTable(t *testing.T) {
	report := &DoctorReport{
		Timestamp: time.Now(),
		Results: []DiagnosticResult{
			{Name: "config-file", Status: "ok", Message: "parses"},
			{Name: "server-port", Status: "warning", Message: "port in use"},
		},
	}
	assert.NoError(t, printDoctorTable(report), "warnings alone do not fail the command")

	report.Results = append(report.Results, DiagnosticResult{
		Name: "content-dir", Status: "error", Message: "missing",
	})
	err := printDoctorTable(report)
	assert.Error(t, err, "errors surface as a returned error so deferred cleanup runs")
	assert.Contains(t, err.Error(), "1 problem(s)")
}
