package domain

import "strings"

// DashboardType identifies the landing dashboard a session is routed to.
type DashboardType string

const (
	DashboardAdmin      DashboardType = "ADMIN"
	DashboardSupervisor DashboardType = "SUPERVISOR"
	DashboardCaseWorker DashboardType = "CASE_WORKER"
	DashboardProvider   DashboardType = "PROVIDER"
	DashboardRecipient  DashboardType = "RECIPIENT"
	DashboardUser       DashboardType = "USER"
)

// Role claim values issued by the identity provider.
const (
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleCaseWorker = "CASE_WORKER"
	RoleProvider   = "PROVIDER"
	RoleRecipient  = "RECIPIENT"
	RoleUser       = "USER"
)

// dashboardRank is the precedence table: when several roles apply, the
// dashboard with the highest rank wins. Ranks are unique.
var dashboardRank = map[DashboardType]int{
	DashboardAdmin:      5,
	DashboardSupervisor: 4,
	DashboardCaseWorker: 3,
	DashboardProvider:   2,
	DashboardRecipient:  1,
	DashboardUser:       0,
}

// dashboardURLs maps each dashboard to its landing route.
var dashboardURLs = map[DashboardType]string{
	DashboardAdmin:      "/admin/dashboard",
	DashboardSupervisor: "/supervisor/dashboard",
	DashboardCaseWorker: "/my-workspace",
	DashboardProvider:   "/provider/dashboard",
	DashboardRecipient:  "/recipient/dashboard",
	DashboardUser:       "/dashboard",
}

// LoginURL is the entry point every logout and expired session is sent to.
const LoginURL = "/login"

var (
	adminAliases = stringSet(
		RoleAdmin, "UAADMINROLE", "HPADMIN", "COUNTYSECURITYADMINROLE", "SYSTEMROLE",
	)
	supervisorAliases = stringSet(
		RoleSupervisor, "SUPERVISORROLE", "SUPERROLE", "CASEMANAGEMENTSUPERVISORROLE",
		"ELIGIBILITYSUPERVISORROLE", "INTAKESUPERVISORROLE", "HOMEMAKERSUPERVISOR",
	)
	ignoredRoles = stringSet(
		"offline_access", "uma_authorization", "BASESECURITYGROUP",
	)
)

// caseWorkerMarker classifies a composite staff role by substring. The marker
// does not apply when the role also satisfies except.
type caseWorkerMarker struct {
	substr string
	except func(role string) bool
}

func endsWithProvider(r string) bool { return strings.HasSuffix(r, RoleProvider) }
func mentionsProvider(r string) bool { return strings.Contains(r, RoleProvider) }

var caseWorkerMarkers = []caseWorkerMarker{
	{substr: "CASEMANAGEMENT"},
	{substr: "PAYROLL"},
	{substr: "INTAKE"},
	{substr: "ELIGIBILITY"},
	{substr: "PROVIDERMANAGEMENT"},
	{substr: "REFERRAL"},
	{substr: "HOMEMAKER", except: endsWithProvider},
	{substr: "TIMESHEET"},
	{substr: "AUDIT"},
	{substr: "CDSS"},
	{substr: "HELPDESK"},
	{substr: "CALLCENTER"},
	{substr: "INVESTIGATOR"},
	{substr: "BVI"},
	{substr: "COLLECTION"},
	{substr: "OVERPAYMENT"},
	{substr: "STATEHEARING"},
	{substr: "WARRANT"},
	{substr: "PAYMENTCORRECTION"},
	{substr: "ICT"},
	{substr: "FORMSCORR"},
	{substr: "HOMEVISIT"},
	{substr: "CASENOTES"},
	{substr: "PERSONNOTES"},
	{substr: "QUALITYASSURANCE"},
	{substr: "SPECTRAN"},
	{substr: "CASEAPPROVAL"},
	{substr: "DPPROCESS"},
	{substr: "CMIPSCORE"},
	{substr: "NORMALLOGIN"},
	{substr: "CASELOAD"},
	{substr: "COUNTY"},
	{substr: "PUBLICAUTHORITY"},
	{substr: "PABENEFITS"},
	{substr: "PAPROVIDER"},
	{substr: "PROGRAMMGMT"},
	{substr: "CIROLE"},
	{substr: "COMBINEDROLE"},
	{substr: "WEBSERVICESROLE"},
	{substr: "WPCSROLE"},
	{substr: "TPF"},
	{substr: "HP", except: mentionsProvider},
}

// Rank returns the precedence of d. Unknown dashboards rank with USER.
func (d DashboardType) Rank() int {
	return dashboardRank[d]
}

// URL returns the landing route for d, falling back to the generic dashboard.
func (d DashboardType) URL() string {
	if u, ok := dashboardURLs[d]; ok {
		return u
	}
	return dashboardURLs[DashboardUser]
}

// Valid reports whether d is one of the known dashboards.
func (d DashboardType) Valid() bool {
	_, ok := dashboardRank[d]
	return ok
}

// ClassifyRole maps a single role claim to the dashboard it grants. Matching
// is case-sensitive on the trimmed value. The second result is false for
// ignored or unrecognised roles.
func ClassifyRole(role string) (DashboardType, bool) {
	r := strings.TrimSpace(role)
	if isIgnoredRole(r) {
		return "", false
	}

	switch {
	case adminAliases[r]:
		return DashboardAdmin, true
	case supervisorAliases[r]:
		return DashboardSupervisor, true
	case r == RoleProvider:
		return DashboardProvider, true
	case r == RoleRecipient:
		return DashboardRecipient, true
	case r == RoleCaseWorker:
		return DashboardCaseWorker, true
	case r == RoleUser:
		return DashboardUser, true
	case strings.Contains(r, RoleSupervisor):
		return DashboardSupervisor, true
	}

	for _, m := range caseWorkerMarkers {
		if strings.Contains(r, m.substr) && (m.except == nil || !m.except(r)) {
			return DashboardCaseWorker, true
		}
	}

	// Remaining staff composites (NEWUSERROLE, BASESECURITYROLE, ...).
	if strings.HasSuffix(r, "ROLE") || strings.HasSuffix(r, "GROUP") {
		return DashboardCaseWorker, true
	}
	return "", false
}

// DashboardForRoles selects the single landing dashboard for a role set.
// The result depends only on the set of roles, never on their order.
func DashboardForRoles(roles []string) DashboardType {
	best := DashboardUser
	for _, r := range roles {
		d, ok := ClassifyRole(r)
		if ok && d.Rank() > best.Rank() {
			best = d
		}
	}
	return best
}

// DashboardsForRoles returns every dashboard the role set classifies to,
// always including USER.
func DashboardsForRoles(roles []string) map[DashboardType]bool {
	held := map[DashboardType]bool{DashboardUser: true}
	for _, r := range roles {
		if d, ok := ClassifyRole(r); ok {
			held[d] = true
		}
	}
	return held
}

// CanAccessDashboard reports whether a role set may open the given dashboard.
// Staff dashboards are reachable from more privileged staff dashboards.
func CanAccessDashboard(roles []string, dashboard DashboardType) bool {
	resolved := DashboardForRoles(roles)
	switch dashboard {
	case DashboardCaseWorker:
		return resolved == DashboardCaseWorker || resolved == DashboardSupervisor || resolved == DashboardAdmin
	case DashboardSupervisor:
		return resolved == DashboardSupervisor || resolved == DashboardAdmin
	case DashboardAdmin, DashboardProvider, DashboardRecipient:
		return resolved == dashboard
	}
	return false
}

func isIgnoredRole(r string) bool {
	return r == "" || ignoredRoles[r] || strings.HasPrefix(r, "default-roles-")
}

func stringSet(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
