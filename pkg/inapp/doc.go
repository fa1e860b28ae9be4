// Package inapp is the in-app delivery channel: notifications persisted as
// rows behind the application's notification center.
//
// Dispatcher implements notify.Dispatcher by creating rows through a
// pluggable Storage (memory for development, Postgres in production).
// Inbox exposes the read side: listing, unread counts, and acknowledgement.
//
//	storage := inapp.NewMemoryStorage()
//	dispatcher := inapp.NewDispatcher(storage)
//	inbox := inapp.NewInbox(storage)
package inapp
