package rpcserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"code.cryptopower.dev/group/govledger/ledger"
	"decred.org/dcrwallet/v2/errors"
	"github.com/gin-gonic/gin"
)

// PrincipalHeader carries the caller identity asserted by the deployment in
// front of the server.
const PrincipalHeader = "X-Principal"

const shutdownTimeout = 5 * time.Second

// Server exposes the ledger operations over HTTP/JSON.
type Server struct {
	ledger *ledger.Ledger
	engine *gin.Engine
}

// New builds a server routing requests to l.
func New(l *ledger.Ledger) *Server {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	s := &Server{ledger: l, engine: r}
	s.attachRoutes()
	return s
}

func (s *Server) attachRoutes() {
	p := Proposals{ledger: s.ledger}

	v1 := s.engine.Group("/v1")
	v1.Use(callerMiddleware())
	{
		v1.GET("/proposals/count", p.Count)
		v1.GET("/proposals/:key", p.Get)
		v1.PUT("/proposals/:key", p.Create)
		v1.PATCH("/proposals/:key", p.Edit)
		v1.POST("/proposals/:key/end", p.End)
		v1.POST("/proposals/:key/votes", p.Vote)
	}
}

// Handler returns the http.Handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on listen until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listen string) error {
	const op errors.Op = "rpcserver.Run"

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return errors.E(op, errors.IO, err)
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("RPC server listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return errors.E(op, errors.IO, err)
	case <-ctx.Done():
	}

	log.Infof("RPC server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// callerMiddleware attaches the principal from PrincipalHeader to the
// request context.
func callerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := c.GetHeader(PrincipalHeader); p != "" {
			ctx := ledger.WithCaller(c.Request.Context(), ledger.Principal(p))
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugf("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start))
	}
}
