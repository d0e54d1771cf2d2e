package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscalateIsMonotone(t *testing.T) {
	tests := []struct {
		name string
		a, b CheckStatus
		want CheckStatus
	}{
		{"pass vs pass", CheckStatusPass, CheckStatusPass, CheckStatusPass},
		{"pass vs warning", CheckStatusPass, CheckStatusWarning, CheckStatusWarning},
		{"warning vs pass", CheckStatusWarning, CheckStatusPass, CheckStatusWarning},
		{"warning vs blocked", CheckStatusWarning, CheckStatusBlocked, CheckStatusBlocked},
		{"blocked vs pass", CheckStatusBlocked, CheckStatusPass, CheckStatusBlocked},
		{"blocked vs warning", CheckStatusBlocked, CheckStatusWarning, CheckStatusBlocked},
		{"unknown never downgrades", CheckStatusBlocked, CheckStatus("garbage"), CheckStatusBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escalate(tt.a, tt.b))
		})
	}
}

func TestOverallStatusIsMaxSeverity(t *testing.T) {
	items := []ComplianceCheckItem{
		{CheckType: CheckTypeLeaveBalance, Status: CheckStatusPass},
		{CheckType: CheckTypeMonthlyOvertime, Status: CheckStatusWarning},
		{CheckType: CheckTypeAICompliance, Status: CheckStatusPass},
	}
	assert.Equal(t, CheckStatusWarning, OverallStatus(items))

	items = append(items, ComplianceCheckItem{CheckType: CheckTypeDailyOvertime, Status: CheckStatusBlocked})
	assert.Equal(t, CheckStatusBlocked, OverallStatus(items))
}

func TestOverallStatusEmptyIsPass(t *testing.T) {
	assert.Equal(t, CheckStatusPass, OverallStatus(nil))
}
