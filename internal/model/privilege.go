package model

// Privilege codes carried in the JWT and checked by middleware.RequirePrivilege.
const (
	PrivProductView       = "product:view"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivTransactionDelete = "transaction:delete"
	PrivReportView        = "report:view"
	PrivUserManage        = "user:manage"
)

// AllPrivileges lists every privilege in display order.
var AllPrivileges = []string{
	PrivProductView,
	PrivProductCreate,
	PrivProductUpdate,
	PrivTransactionView,
	PrivTransactionCreate,
	PrivTransactionDelete,
	PrivReportView,
	PrivUserManage,
}
