// Package log is the logging facade shared by the console and the robot
// daemon. Components take a Logger and tag it with WithField (session,
// sink, director) rather than importing logrus directly.
package log

// Logger is the leveled, printf-style logger every component receives.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	// Fatalf logs and exits the process.
	Fatalf(format string, args ...interface{})

	// WithField returns a Logger that appends key=value to every line.
	WithField(key string, value interface{}) Logger
	// WithFields is the multi-key variant of WithField.
	WithFields(fields map[string]interface{}) Logger
}
