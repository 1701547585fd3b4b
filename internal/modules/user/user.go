package user

import "time"

// AdminType is the document type admin accounts are stored as.
const AdminType = "adminUser"

// User is an operator allowed to sign in to the dashboard.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	CreatedAt    time.Time `json:"_createdAt"`
	UpdatedAt    time.Time `json:"_updatedAt"`
}

// Public is the user as shown over the API, without the password hash.
type Public struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt}
}
