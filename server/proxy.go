package server

import (
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
)

// newUpstreamProxy forwards /api/zhbus requests unchanged to the upstream
// origin, so a UI built against the raw service works behind this backend.
func newUpstreamProxy(rawURL string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream URL %q", rawURL)
	}
	p := httputil.NewSingleHostReverseProxy(target)
	director := p.Director
	p.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy %s: %v", r.URL.Path, err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return p, nil
}

func (s *Server) handleProxy(c *gin.Context) {
	s.proxy.ServeHTTP(c.Writer, c.Request)
}
