package models

// Follow is a directed edge: UserFollowingID follows UserBeingFollowedID.
type Follow struct {
	UserBeingFollowedID uint `json:"user_being_followed_id" gorm:"primaryKey;autoIncrement:false"`
	UserFollowingID     uint `json:"user_following_id" gorm:"primaryKey;autoIncrement:false;index"`

	Followed  *User `json:"-" gorm:"foreignKey:UserBeingFollowedID;constraint:OnDelete:CASCADE"`
	Following *User `json:"-" gorm:"foreignKey:UserFollowingID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Follow) TableName() string {
	return "follows"
}
