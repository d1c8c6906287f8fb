package probe

import (
	"context"
	"net"
	"time"
)

type tcpProbe struct{}

func (p *tcpProbe) Ping(ctx context.Context, t Target, rec Recorder) {
	for i := 0; i < t.RequestCount; i++ {
		succeeded := p.attempt(ctx, t)
		record(rec, t, succeeded)
	}
}

func (p *tcpProbe) attempt(ctx context.Context, t Target) bool {
	dialer := &net.Dialer{Timeout: dialTimeout}
	try := func() error {
		conn, err := dialer.DialContext(ctx, "tcp", t.Addr())
		if err != nil {
			return err
		}
		defer conn.Close()
		return sendReceive(conn, payload)
	}

	err := try()
	logAttempt(ctx, t.Protocol, t, err, 1)
	if err != nil {
		time.Sleep(retryBackoff)
		if err := try(); err != nil {
			logAttempt(ctx, t.Protocol, t, err, 2)
			return false
		}
	}
	return true
}

func sendReceive(conn net.Conn, out []byte) error {
	if _, err := conn.Write(out); err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Now().Add(dialTimeout)); err != nil {
		return err
	}
	buf := make([]byte, packetSize)
	_, err := conn.Read(buf)
	return err
}
