package domain

// Role is the closed set of account roles. Ids match the seeded roles table.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

const (
	RoleAdminID uint = 1
	RoleUserID  uint = 2
)

var roleIDs = map[Role]uint{
	RoleAdmin: RoleAdminID,
	RoleUser:  RoleUserID,
}

// Roles lists every role in id order.
func Roles() []Role { return []Role{RoleAdmin, RoleUser} }

func (r Role) ID() uint { return roleIDs[r] }

func (r Role) Valid() bool {
	_, ok := roleIDs[r]
	return ok
}

// ParseRole is case-sensitive: "admin" is not ADMIN.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func RoleByID(id uint) (Role, error) {
	for r, rid := range roleIDs {
		if rid == id {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}
