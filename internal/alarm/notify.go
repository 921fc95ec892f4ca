// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package alarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	notifyIcon   = "alarm-symbolic"

	urgencyCritical = byte(2)
)

// DBusNotifier sends desktop notifications through the freedesktop notification service on the
// session bus.
type DBusNotifier struct {
	mu      sync.Mutex
	appName string
	conn    *dbus.Conn
	connect func() (*dbus.Conn, error)
}

// NewDBusNotifier returns a notifier that connects to the session bus on first use.
func NewDBusNotifier(appName string) *DBusNotifier {
	return &DBusNotifier{appName: appName, connect: dbus.ConnectSessionBus}
}

func (n *DBusNotifier) Notify(ctx context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil || !n.conn.Connected() {
		conn, err := n.connect()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		n.conn = conn
	}

	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgencyCritical)}
	obj := n.conn.Object(notifyDest, notifyPath)
	call := obj.CallWithContext(ctx, notifyMethod, 0, n.appName, uint32(0), notifyIcon, title, body,
		[]string{}, hints, int32(-1))
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}
	return nil
}

// Close closes the session bus connection.
func (n *DBusNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}
