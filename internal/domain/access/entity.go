package access

// GroupsSnapshot pairs the tenants a user may request access to with the
// ones they already belong to. Both lists are non-nil.
type GroupsSnapshot struct {
	Available []string
	Mine      []string
}

type AccessRequest struct {
	TenantName    string
	Permission    Permission
	Justification string
}

// RequestOutcome is the governance API's answer to an access request,
// normalized so every field is populated.
type RequestOutcome struct {
	Status     string
	Message    string
	TenantName string
	Permission string
}
