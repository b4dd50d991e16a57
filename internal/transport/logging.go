// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"

	"wtosc/internal/log"
)

// LoggingTransport implements the Transport interface by logging every
// message at debug level. It is the fallback when no network transport is
// configured.
type LoggingTransport struct {
	logger log.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{logger: log.With("transport")}
	lt.logger.Infof("using logging transport")
	return lt
}

// Send logs the received data. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	if !log.Enabled(log.LevelDebug) {
		return nil
	}
	if encoded, err := json.Marshal(data); err == nil {
		lt.logger.Debugf("%T %s", data, encoded)
	} else {
		lt.logger.Debugf("%T %+v (json: %v)", data, data, err)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
