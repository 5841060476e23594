package store

import "time"

// User mirrors the account table owned by the web app. The relay only reads
// it through the Meeting association.
type User struct {
	ID        string    `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"uniqueIndex;column:email"`
	Password  string    `gorm:"column:password"`
	Image     *string   `gorm:"column:image"`
	CreatedAt time.Time `gorm:"column:createdAt"`
	UpdatedAt time.Time `gorm:"column:updatedAt"`

	Meetings []Meeting `gorm:"foreignKey:HostID;references:ID"`
}

// Meeting maps the scheduled-meeting table; HostID is the identity that gets
// the admission fast-path.
type Meeting struct {
	ID        string    `gorm:"primaryKey;column:id"`
	CreatedAt time.Time `gorm:"column:createdAt"`
	HostID    string    `gorm:"column:hostId"`
	Host      User      `gorm:"foreignKey:HostID;references:ID"`
}

// TableName keeps the web app's casing.
func (Meeting) TableName() string {
	return "Meetings"
}
