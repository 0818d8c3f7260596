package test

import (
	"os"

	logging "github.com/inconshreveable/log15"
)

// LogHandler picks the handler of the unittest loggers from
// `FEEDBACK_LOG_HANDLER`; "null" discards, anything else goes to stdout.
func LogHandler() logging.Handler {
	handlers := map[string]func() logging.Handler{
		"null": func() logging.Handler {
			return logging.DiscardHandler()
		},
		"stdout": func() logging.Handler {
			return logging.CallerStackHandler("%+v", logging.StdoutHandler)
		},
	}

	handler := handlers["null"]
	if h, ok := handlers[os.Getenv("FEEDBACK_LOG_HANDLER")]; ok {
		handler = h
	}

	return handler()
}
