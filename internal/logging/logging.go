// Package logging configures the logrus logger shared by srihash commands.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Setup creates a logger writing to w. Verbose mode enables debug output
// with full timestamps; otherwise only info and above is shown, untimed.
func Setup(w io.Writer, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	return logger
}
