package testutils

import "github.com/one-acre-fund/application-score-card/internal/domain"

// AreaTemplate describes one assessment area and the entries it asks about.
type AreaTemplate struct {
	ID      int
	Title   string
	Entries []EntryTemplate
}

// EntryTemplate is a single question inside an area.
type EntryTemplate struct {
	Title   string
	Details string
}

// AssessmentAreas mirrors the areas of the score card template. Entries
// are kept short; only their titles and ids matter to the scoring.
var AssessmentAreas = []AreaTemplate{
	{ID: 1, Title: "Documentation", Entries: []EntryTemplate{
		{Title: "README", Details: "The repository has a README explaining purpose and setup."},
		{Title: "Runbook", Details: "An on-call runbook exists and is linked from the catalog."},
		{Title: "Architecture", Details: "An architecture overview is kept next to the code."},
	}},
	{ID: 2, Title: "Testing", Entries: []EntryTemplate{
		{Title: "Unit tests", Details: "Unit tests run on every pull request."},
		{Title: "Integration tests", Details: "Integration tests cover the main user journeys."},
		{Title: "Coverage", Details: "Coverage is tracked and does not regress."},
	}},
	{ID: 3, Title: "Security", Entries: []EntryTemplate{
		{Title: "Secrets", Details: "No secrets are stored in the repository."},
		{Title: "Dependencies", Details: "Dependencies are scanned for known vulnerabilities."},
		{Title: "Access", Details: "Production access follows least privilege."},
		{Title: "Pen test", Details: "A penetration test was performed in the last year."},
	}},
	{ID: 4, Title: "Operations", Entries: []EntryTemplate{
		{Title: "Monitoring", Details: "Dashboards exist for the golden signals."},
		{Title: "Alerting", Details: "Alerts page the owning team."},
		{Title: "Backups", Details: "Backups are taken and restores are rehearsed."},
	}},
	{ID: 5, Title: "Delivery", Entries: []EntryTemplate{
		{Title: "CI", Details: "Every change is built and tested automatically."},
		{Title: "CD", Details: "Deployments are automated and repeatable."},
	}},
}

// EntityNames is the pool of catalog names used for generated records.
var EntityNames = []string{
	"billing", "payments", "loan-ledger", "farmer-registry", "sms-gateway",
	"repayment-api", "field-app", "inventory", "reporting", "identity",
	"notifications", "data-warehouse", "crm-sync", "pricing", "mobile-money",
}

// Namespaces used for generated records. The empty and default namespaces
// are included so normalization is exercised.
var Namespaces = []string{"", domain.DefaultNamespace, "finance", "field-ops"}

// Reviewers used for generated records.
var Reviewers = []string{"amina@example.org", "joseph@example.org", "wanjiru@example.org"}

// PlaceholderComments are left-over template comments that should trigger
// warnings.
var PlaceholderComments = []string{"TODO", "tbd - waiting on platform team", "<add comments here>"}
