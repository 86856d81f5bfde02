package notify

import (
	"go.uber.org/zap"
)

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notice")}
}

func (l *LogNotifier) NotifySuccess(n Notice) {
	l.logger.Info(n.Message, zap.Duration("display", n.Duration))
}

func (l *LogNotifier) NotifyFailure(n Notice) {
	l.logger.Error(n.Message, zap.Duration("display", n.Duration))
}

func (l *LogNotifier) Log(line string) {
	l.logger.Info(line)
}
