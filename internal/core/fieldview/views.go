package fieldview

import "sort"

// View binds a portal resource to its backend path and display columns.
type View struct {
	Resource string   `json:"resource"`
	Path     string   `json:"-"`
	Columns  []Column `json:"columns"`
}

var views = map[string]View{
	"timesheets": {
		Resource: "timesheets",
		Path:     "/timesheets",
		Columns: []Column{
			{Field: "id", Label: "ID", Type: TypeText},
			{Field: "employeeName", Label: "Provider", Type: TypeText},
			{Field: "payPeriodStart", Label: "Period Start", Type: TypeDate},
			{Field: "payPeriodEnd", Label: "Period End", Type: TypeDate},
			{Field: "totalHours", Label: "Hours", Type: TypeNumber},
			{Field: "status", Label: "Status", Type: TypeBadge},
			{Field: "submittedAt", Label: "Submitted", Type: TypeDateTime},
		},
	},
	"warrants": {
		Resource: "warrants",
		Path:     "/warrants",
		Columns: []Column{
			{Field: "warrantNumber", Label: "Warrant", Type: TypeText},
			{Field: "providerName", Label: "Payee", Type: TypeText},
			{Field: "amount", Label: "Amount", Type: TypeCurrency},
			{Field: "issueDate", Label: "Issued", Type: TypeDate},
			{Field: "status", Label: "Status", Type: TypeBadge},
		},
	},
	"providers": {
		Resource: "providers",
		Path:     "/providers",
		Columns: []Column{
			{Field: "providerNumber", Label: "Provider #", Type: TypeText},
			{Field: "firstName", Label: "First Name", Type: TypeText},
			{Field: "lastName", Label: "Last Name", Type: TypeText},
			{Field: "ssn", Label: "SSN", Type: TypeText},
			{Field: "county", Label: "County", Type: TypeText},
			{Field: "providerStatus", Label: "Status", Type: TypeBadge},
		},
	},
	"recipients": {
		Resource: "recipients",
		Path:     "/recipients",
		Columns: []Column{
			{Field: "id", Label: "ID", Type: TypeText},
			{Field: "firstName", Label: "First Name", Type: TypeText},
			{Field: "lastName", Label: "Last Name", Type: TypeText},
			{Field: "dateOfBirth", Label: "Date of Birth", Type: TypeDate},
			{Field: "countyName", Label: "County", Type: TypeText},
			{Field: "personType", Label: "Type", Type: TypeBadge},
		},
	},
	"cases": {
		Resource: "cases",
		Path:     "/cases",
		Columns: []Column{
			{Field: "caseNumber", Label: "Case #", Type: TypeText},
			{Field: "recipientName", Label: "Recipient", Type: TypeText},
			{Field: "caseOwnerName", Label: "Owner", Type: TypeText},
			{Field: "authorizedHours", Label: "Authorized Hours", Type: TypeNumber},
			{Field: "caseStatus", Label: "Status", Type: TypeBadge},
			{Field: "createdAt", Label: "Created", Type: TypeDateTime},
		},
	},
	"tasks": {
		Resource: "tasks",
		Path:     "/tasks",
		Columns: []Column{
			{Field: "id", Label: "ID", Type: TypeText},
			{Field: "title", Label: "Title", Type: TypeText},
			{Field: "priority", Label: "Priority", Type: TypeText},
			{Field: "status", Label: "Status", Type: TypeBadge},
			{Field: "dueDate", Label: "Due", Type: TypeDate},
		},
	},
	"applications": {
		Resource: "applications",
		Path:     "/applications",
		Columns: []Column{
			{Field: "applicationNumber", Label: "Application #", Type: TypeText},
			{Field: "applicantName", Label: "Applicant", Type: TypeText},
			{Field: "applicationDate", Label: "Received", Type: TypeDate},
			{Field: "status", Label: "Status", Type: TypeBadge},
		},
	},
	"referrals": {
		Resource: "referrals",
		Path:     "/referrals",
		Columns: []Column{
			{Field: "referralId", Label: "Referral", Type: TypeText},
			{Field: "potentialRecipientName", Label: "Name", Type: TypeText},
			{Field: "referralDate", Label: "Date", Type: TypeDate},
			{Field: "status", Label: "Status", Type: TypeBadge},
		},
	},
}

// LookupView returns the view registered for resource.
func LookupView(resource string) (View, bool) {
	v, ok := views[resource]
	return v, ok
}

// Resources returns the registered resource names, sorted.
func Resources() []string {
	out := make([]string, 0, len(views))
	for name := range views {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
