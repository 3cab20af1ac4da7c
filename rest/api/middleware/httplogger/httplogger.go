package httplogger

import (
	"io/ioutil"
	"os"

	"github.com/buger/jsonparser"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/kataras/iris"
	"github.com/kataras/iris/context"
)

type HTTPLogger struct{}

func New() iris.Handler {
	m := HTTPLogger{}
	return m.ServeHTTP
}

var masks = []string{
	"password",
	"token",
}

func (h *HTTPLogger) ServeHTTP(ctx context.Context) {
	start := clock.Now()
	ctx.Next()
	end := clock.Now()

	var (
		service string
		body    []byte
	)

	if podName := env.GetVar("KUBERNETES_POD_NAME"); podName != "" {
		service = podName
	} else {
		service = os.Args[0]
	}

	// mask the sensitive fields
	if body, _ = ioutil.ReadAll(ctx.Request().Body); len(body) > 0 {
		for _, mask := range masks {
			if _, _, _, err := jsonparser.Get(body, mask); err == nil {
				body, _ = jsonparser.Set(body, []byte(`"xxx"`), mask)
			}
		}
	}

	log.Info(
		"http request",
		"service", service,
		"method", ctx.Request().Method,
		"path", ctx.Request().URL.Path,
		"status", ctx.GetStatusCode(),
		"latency_ms", end.Sub(start).Seconds()*1000,
		"remote_addr", ctx.RemoteAddr(),
		"body", string(body),
	)
}
