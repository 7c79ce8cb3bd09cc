package domain

// NavItem is a navigation affordance (shortcut or workspace tab).
type NavItem struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Icon  string   `json:"icon,omitempty"`
	Href  string   `json:"href"`
	Paths []string `json:"paths,omitempty"`
}

// navEntry lists the shortcut and tab ids a dashboard type may see.
type navEntry struct {
	shortcuts []string
	tabs      []string
}

// shortcutCatalog is the declaration order every shortcut list is emitted in.
var shortcutCatalog = []NavItem{
	{ID: "new-referral", Label: "New Referral", Icon: "house", Href: "/recipients/new"},
	{ID: "new-application", Label: "New Application", Icon: "clipboard", Href: "/new-application"},
	{ID: "find-person", Label: "Find a Person", Icon: "person", Href: "/recipients"},
	{ID: "find-hearing-case", Label: "Find a State Hearing Case", Icon: "scale", Href: "/state-hearings"},
	{ID: "my-timesheets", Label: "My Timesheets", Icon: "clock", Href: "/provider/timesheets"},
	{ID: "evv-check-in", Label: "EVV Check-In", Icon: "geo", Href: "/provider/evv"},
	{ID: "my-providers", Label: "My Providers", Icon: "people", Href: "/recipient/providers"},
	{ID: "approve-timesheets", Label: "Approve Timesheets", Icon: "check", Href: "/recipient/timesheets"},
	{ID: "batch-jobs", Label: "Batch Jobs", Icon: "gear", Href: "/batch-jobs"},
	{ID: "field-masking", Label: "Field Masking", Icon: "lock", Href: "/admin/field-masking"},
	{ID: "notifications", Label: "Notifications", Icon: "bell", Href: "/notifications"},
	{ID: "profile", Label: "My Profile", Icon: "person-circle", Href: "/profile"},
}

// tabCatalog is the declaration order every tab list is emitted in.
var tabCatalog = []NavItem{
	{ID: "my-workspace", Label: "My Workspace", Href: "/my-workspace", Paths: []string{"/", "/my-workspace", "/workspace"}},
	{ID: "my-cases", Label: "My Cases", Href: "/my-cases", Paths: []string{"/my-cases", "/cases"}},
	{ID: "inbox", Label: "Inbox", Href: "/inbox", Paths: []string{"/inbox"}},
	{ID: "calendar", Label: "Calendar", Href: "/calendar", Paths: []string{"/calendar"}},
	{ID: "timesheets", Label: "Timesheets", Href: "/timesheets", Paths: []string{"/timesheets"}},
	{ID: "reports", Label: "Reports", Href: "/analytics", Paths: []string{"/analytics"}},
	{ID: "batch-jobs", Label: "Batch Jobs", Href: "/batch-jobs", Paths: []string{"/batch-jobs", "/visualization"}},
	{ID: "administration", Label: "Administration", Href: "/admin", Paths: []string{"/admin"}},
}

// navTable is the static role -> affordance mapping. USER is the baseline
// every session receives.
var navTable = map[DashboardType]navEntry{
	DashboardUser: {
		shortcuts: []string{"notifications", "profile"},
		tabs:      []string{"my-workspace", "inbox"},
	},
	DashboardRecipient: {
		shortcuts: []string{"my-providers", "approve-timesheets"},
		tabs:      []string{"timesheets"},
	},
	DashboardProvider: {
		shortcuts: []string{"my-timesheets", "evv-check-in"},
		tabs:      []string{"timesheets"},
	},
	DashboardCaseWorker: {
		shortcuts: []string{"new-referral", "new-application", "find-person", "find-hearing-case"},
		tabs:      []string{"my-cases", "calendar"},
	},
	DashboardSupervisor: {
		shortcuts: []string{"new-referral", "new-application", "find-person", "find-hearing-case", "batch-jobs"},
		tabs:      []string{"my-cases", "calendar", "reports", "batch-jobs"},
	},
	DashboardAdmin: {
		shortcuts: []string{"find-person", "batch-jobs", "field-masking"},
		tabs:      []string{"reports", "batch-jobs", "administration"},
	},
}

// VisibleShortcuts returns the shortcuts the role set may see: the union over
// every held dashboard, de-duplicated by id, in catalog order.
func VisibleShortcuts(roles []string) []NavItem {
	return visibleItems(shortcutCatalog, roles, func(e navEntry) []string { return e.shortcuts })
}

// VisibleTabs returns the workspace tabs the role set may see, in catalog order.
func VisibleTabs(roles []string) []NavItem {
	return visibleItems(tabCatalog, roles, func(e navEntry) []string { return e.tabs })
}

// TabForPath returns the id of the first visible tab owning path.
func TabForPath(roles []string, path string) (string, bool) {
	for _, tab := range VisibleTabs(roles) {
		for _, p := range tab.Paths {
			if p == path {
				return tab.ID, true
			}
		}
	}
	return "", false
}

func visibleItems(catalog []NavItem, roles []string, pick func(navEntry) []string) []NavItem {
	allowed := make(map[string]bool)
	for d := range DashboardsForRoles(roles) {
		for _, id := range pick(navTable[d]) {
			allowed[id] = true
		}
	}

	out := make([]NavItem, 0, len(allowed))
	seen := make(map[string]bool, len(allowed))
	for _, item := range catalog {
		if !allowed[item.ID] || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		out = append(out, item)
	}
	return out
}
