package user

// Column limits of the users table.
const (
	NameMaxLength  = 50
	EmailMaxLength = 255
)

// Fields lists the attributes of a User in wire and column order.
var Fields = []string{"id", "name", "email"}

// User represents a user entity in the system.
type User struct {
	ID    int64  // ID is assigned by the store and never changes
	Name  string // Name of the user, at most NameMaxLength characters
	Email string // Email of the user, at most EmailMaxLength characters
}

// Patch carries a partial update. A nil field is left unchanged.
type Patch struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

// Apply writes the supplied fields of p onto u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
}
