package models

// ToastType is the severity of a toast notification.
type ToastType string

const (
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastSuccess ToastType = "success"
)

// ToastNotification is the single-slot notification.
type ToastNotification struct {
	Show    bool      `json:"show"`
	Message string    `json:"message"`
	Type    ToastType `json:"type"`
}
