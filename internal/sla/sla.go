package sla

import (
	"sync"

	"github.com/nexbridge/adaptersentry/pkg/types"
)

// Provider serves SLA compliance reports declared in configuration. Reports
// are keyed by adapter type, not adapter id: one report covers every adapter
// of that protocol family.
type Provider struct {
	mu      sync.RWMutex
	reports []types.SLAComplianceReport
}

// NewProvider creates a provider seeded with the configured reports
func NewProvider(reports []types.SLAComplianceReport) *Provider {
	return &Provider{reports: reports}
}

// GetAllComplianceReports returns a copy of all configured reports
func (p *Provider) GetAllComplianceReports() []types.SLAComplianceReport {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]types.SLAComplianceReport, len(p.reports))
	copy(out, p.reports)
	return out
}

// Replace swaps the report set, used on configuration reload
func (p *Provider) Replace(reports []types.SLAComplianceReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = reports
}
