package data

// Events pushed to clients when a dialog changes. Dialog updates carry the
// Dialog, message events carry the Message.
const (
	EventPublicDialogUpdate  = "public dialog update"
	EventPublicMessage       = "public message"
	EventPrivateDialogUpdate = "private dialog update"
	EventPrivateMessage      = "private message"
)
