package access

import "errors"

var (
	ErrTenantRequired    = errors.New("tenant_name is required")
	ErrInvalidPermission = errors.New("permission must be 'read_only' or 'read_write'")
	ErrNoGovernanceToken = errors.New("no governance token available for this session")
)

type Permission string

const (
	PermissionReadOnly  Permission = "read_only"
	PermissionReadWrite Permission = "read_write"
)

func (p Permission) Valid() bool {
	return p == PermissionReadOnly || p == PermissionReadWrite
}
