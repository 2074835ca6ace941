package model

import (
	"errors"
	"strings"
)

// ErrUserNotFound возвращается хранилищем, если документа users/{id} нет.
var ErrUserNotFound = errors.New("user not found")

// User содержит только те поля users/{id}, которые нужны для уведомлений.
type User struct {
	ID       string `firestore:"-"`
	Username string `firestore:"username,omitempty"`
	FCMToken string `firestore:"fcmToken,omitempty"`
}

// PushToken returns the FCM token without surrounding whitespace.
func (u *User) PushToken() string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FCMToken)
}

// HasPushToken reports whether the user registered a device for push.
func (u *User) HasPushToken() bool {
	return u.PushToken() != ""
}
