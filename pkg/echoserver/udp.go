package echoserver

import (
	"context"
	"net"
	"sync"
)

type udpListener struct {
	conn net.PacketConn
	wg   sync.WaitGroup
}

func startUDP(ctx context.Context, addr string) (Listener, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	l := &udpListener{conn: conn}
	l.wg.Add(1)
	go l.readLoop(ctx)
	return l, nil
}

func (l *udpListener) readLoop(ctx context.Context) {
	defer l.wg.Done()
	go func() {
		<-ctx.Done()
		l.conn.Close()
	}()
	buf := make([]byte, 65535)
	for {
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			return
		}
		l.conn.WriteTo(buf[:n], addr)
	}
}

func (l *udpListener) Close() error {
	err := l.conn.Close()
	l.wg.Wait()
	return err
}
