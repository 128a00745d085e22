package model

// Role codes
const (
	RoleAdmin  = "ADMIN"
	RoleClerk  = "CLERK"
	RoleViewer = "VIEWER"
)

var rolePrivileges = map[string][]string{
	RoleAdmin: AllPrivileges,
	RoleClerk: {
		PrivProductView,
		PrivTransactionView,
		PrivTransactionCreate,
		PrivReportView,
	},
	RoleViewer: {
		PrivProductView,
		PrivTransactionView,
		PrivReportView,
	},
}

// RoleInfo describes a role for the role listing endpoint.
type RoleInfo struct {
	Code       string   `json:"code"`
	Privileges []string `json:"privileges"`
}

// Roles lists every role, most privileged first.
func Roles() []RoleInfo {
	codes := []string{RoleAdmin, RoleClerk, RoleViewer}
	out := make([]RoleInfo, len(codes))
	for i, code := range codes {
		out[i] = RoleInfo{Code: code, Privileges: PrivilegesFor(code)}
	}
	return out
}

// ValidRole reports whether code names a known role.
func ValidRole(code string) bool {
	_, ok := rolePrivileges[code]
	return ok
}

// PrivilegesFor returns a copy of the privileges granted to a role.
// Unknown roles get none.
func PrivilegesFor(role string) []string {
	privs := rolePrivileges[role]
	out := make([]string, len(privs))
	copy(out, privs)
	return out
}
