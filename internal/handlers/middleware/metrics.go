package middleware

import "net/http"

type httpMetrics interface {
	HTTPRequest(method string, status int)
}

// Label value for methods not known to net/http
const otherMethod = "OTHER"

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// Count requests by method and response status
// Client chosen methods are collapsed into one label value
func MetricsMiddleware(m httpMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lw := newLogWriter(w)
			next.ServeHTTP(lw, r)
			m.HTTPRequest(methodLabel(r.Method), lw.status)
		})
	}
}

func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return otherMethod
}
