package rbac

type Role string
type Action string

const (
	RoleViewer  Role = "viewer"
	RoleFinance Role = "finance"
	RolePMO     Role = "pmo"
	RoleAdmin   Role = "admin"
)

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionApprove Action = "approve"
	ActionAdmin   Action = "admin"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RolePMO:
		return action == ActionRead || action == ActionWrite || action == ActionApprove
	case RoleFinance:
		return action == ActionRead || action == ActionWrite
	case RoleViewer:
		return action == ActionRead
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleViewer, RoleFinance, RolePMO, RoleAdmin:
		return Role(role)
	default:
		return RoleViewer
	}
}
