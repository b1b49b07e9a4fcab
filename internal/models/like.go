package models

// Like records that a user endorses a message. A (user, message) pair appears
// at most once.
type Like struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	UserID    uint `json:"user_id" gorm:"not null;uniqueIndex:idx_likes_user_message"`
	MessageID uint `json:"message_id" gorm:"not null;uniqueIndex:idx_likes_user_message;index"`

	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message *Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (Like) TableName() string {
	return "likes"
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Message{}, &Follow{}, &Like{}}
}
