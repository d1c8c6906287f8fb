package echoserver

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
)

// Well-known certificate/key paths for the HTTPS listener, mirroring
// the original implementation's axon.crt/axon.key convention.
const (
	DefaultCertFile = "/etc/axon/axon.crt"
	DefaultKeyFile  = "/etc/axon/axon.key"
)

// CertFile and KeyFile are the paths used by startHTTP when tls is
// requested. They are read each time an HTTPS listener starts, so a
// caller that assigns them before the first server starts changes the
// certificate every HTTPS listener uses.
var (
	CertFile = DefaultCertFile
	KeyFile  = DefaultKeyFile
)

const echoResponseBody = "Hello From Axon"

type httpListener struct {
	server *http.Server
	errCh  chan error
}

func startHTTP(ctx context.Context, addr string, tlsEnabled bool) (Listener, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(echoResponseBody))
	})

	server := &http.Server{Addr: addr, Handler: mux}
	l := &httpListener{server: server, errCh: make(chan error, 1)}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if tlsEnabled {
		cert, err := tls.LoadX509KeyPair(CertFile, KeyFile)
		if err != nil {
			ln.Close()
			return nil, err
		}
		ln = tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	go func() {
		err := server.Serve(ln)
		if err != http.ErrServerClosed {
			l.errCh <- err
		}
		close(l.errCh)
	}()

	return l, nil
}

func (l *httpListener) Close() error {
	err := l.server.Close()
	<-l.errCh
	return err
}
