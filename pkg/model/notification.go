package model

import "time"

type NotificationType string

const (
	NotificationBooking      NotificationType = "booking"
	NotificationReview       NotificationType = "review"
	NotificationPayment      NotificationType = "payment"
	NotificationMessage      NotificationType = "message"
	NotificationVerification NotificationType = "verification"
	NotificationSystem       NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string           `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	Type      NotificationType `json:"type" bson:"type" validate:"required,oneof=booking review payment message verification system"`
	Title     string           `json:"title" bson:"title" validate:"required,max=200"`
	Message   string           `json:"message" bson:"message" validate:"required,max=2000"`
	Link      string           `json:"link,omitempty" bson:"link"`
	Read      bool             `json:"read" bson:"read"`
	Data      map[string]any   `json:"data,omitempty" bson:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
}
