package domain

// Role determines which operations a logged-in user may reach.
type Role string

const (
	// RoleDriver may start/end trips and log refuels, but only for the
	// vehicle assigned to them.
	RoleDriver Role = "driver"
	// RoleAdmin has unrestricted access, including reports and exports.
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleDriver || r == RoleAdmin
}

// User is an account in the credential table. VehicleReg is the single vehicle
// a driver account is scoped to; it is empty for admins.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	VehicleReg   string `json:"vehicle_reg,omitempty"`
}

// MayOperate reports whether the user may submit mutating operations
// (start/end trip, log refuel) for the given vehicle registration.
func (u User) MayOperate(vehicleReg string) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.Role == RoleDriver && u.VehicleReg == vehicleReg
}
