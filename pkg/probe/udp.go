package probe

import (
	"context"
	"net"
	"time"
)

type udpProbe struct{}

func (p *udpProbe) Ping(ctx context.Context, t Target, rec Recorder) {
	conn, err := net.DialTimeout("udp", t.Addr(), dialTimeout)
	if err != nil {
		logAttempt(ctx, t.Protocol, t, err, 1)
		for i := 0; i < t.RequestCount; i++ {
			record(rec, t, false)
		}
		return
	}
	defer conn.Close()

	for i := 0; i < t.RequestCount; i++ {
		succeeded := p.attempt(ctx, t, conn)
		record(rec, t, succeeded)
	}
}

func (p *udpProbe) attempt(ctx context.Context, t Target, conn net.Conn) bool {
	if err := sendReceiveDatagram(conn, payload); err != nil {
		logAttempt(ctx, t.Protocol, t, err, 1)
		time.Sleep(retryBackoff)
		if err := sendReceiveDatagram(conn, payload); err != nil {
			logAttempt(ctx, t.Protocol, t, err, 2)
			return false
		}
	}
	return true
}

func sendReceiveDatagram(conn net.Conn, out []byte) error {
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
