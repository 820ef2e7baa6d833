// Package log builds the application logger on top of log/slog.
//
// Every logger created here wraps its handler in a SecureHandler that masks
// secrets before they are written: the registry bearer token, Authorization
// headers and similar credentials. The registry token is configured once and
// handed to many components, so the masking happens at the handler rather
// than at each call site.
//
// # Usage
//
//	logger, closer, err := log.New(os.Stderr, log.Options{Level: "INFO", File: "filizer.log"})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
//	logger.Info("registry request", "authorization", "Bearer abc") // authorization=***REDACTED***
package log
