package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.WarnLevel)
	logg.SetOutput(os.Stdout)
}

func GetLogger() *logrus.Logger {
	return logg
}

// LogError records a failure with enough fields to locate it without a stack
// trace. Read paths use this before degrading to an empty result.
func LogError(logger *logrus.Logger, module string, funcName string, context string, err error) {
	if logger == nil {
		return
	}
	logger.WithFields(logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}).Error(err.Error())
}
