// Package notifications sends push notifications through ntfy for
// download, upgrade and failure events. An unconfigured topic yields a
// noop service so callers never branch on configuration.
package notifications
