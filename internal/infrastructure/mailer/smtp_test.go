package mailer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/retry"
)

func newTestMailer(host string, port int) *SMTPMailer {
	m := NewSMTPMailer(&config.Config{
		SMTPServer: host,
		SMTPPort:   port,
		FromEmail:  "orders@colormuse.example",
	}, zerolog.Nop())
	m.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }
	m.timeout = 5 * time.Second
	return m
}

var testMessage = confirmation.Message{
	To:      "ada@example.com",
	Subject: "Your ColorMuse Books Order",
	Body:    "Hello Ada,\n\nThanks!\n",
}

// fakeRelay is a single-recipient SMTP relay answering RCPT TO with rcptReply.
type fakeRelay struct {
	addr      *net.TCPAddr
	rcptReply string
	received  chan string
}

func startRelay(t *testing.T, rcptReply string) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	relay := &fakeRelay{addr: ln.Addr().(*net.TCPAddr), rcptReply: rcptReply, received: make(chan string, 1)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go relay.serve(conn)
		}
	}()
	return relay
}

func (r *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewReader(bufio.NewReader(conn))
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 relay.test ESMTP")
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
		switch verb {
		case "EHLO", "HELO":
			reply("250 relay.test")
		case "RCPT":
			reply(r.rcptReply)
		case "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			r.received <- string(data)
			reply("250 queued")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 OK")
		}
	}
}

func TestCompose(t *testing.T) {
	m := newTestMailer("smtp.example.com", 587)
	msg, err := m.compose(testMessage)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	head, body, found := strings.Cut(raw, "\r\n\r\n")
	assert.True(t, found)
	assert.Contains(t, head, "orders@colormuse.example")
	assert.Contains(t, head, "ada@example.com")
	assert.Contains(t, head, "Subject: Your ColorMuse Books Order")
	assert.Contains(t, head, "Date: Mon, 04 May 2026 09:30:00 +0000")
	assert.Contains(t, head, "@colormuse.example>")
	assert.Contains(t, body, "Hello Ada,")
	assert.Contains(t, body, "Thanks!")
}

func TestCompose_RejectsMalformedRecipient(t *testing.T) {
	_, err := newTestMailer("smtp.example.com", 587).compose(confirmation.Message{To: "not an address", Subject: "x"})
	assert.Error(t, err)
}

func TestSend_RejectsMissingRecipient(t *testing.T) {
	err := newTestMailer("smtp.example.com", 587).Send(context.Background(), confirmation.Message{Subject: "x"})
	assert.True(t, retry.IsPermanent(err))
}

func TestSend_MalformedRecipientIsPermanent(t *testing.T) {
	err := newTestMailer("smtp.example.com", 587).Send(context.Background(), confirmation.Message{To: "not an address", Subject: "x"})
	assert.True(t, retry.IsPermanent(err))
}

func TestSend_DeliversThroughRelay(t *testing.T) {
	relay := startRelay(t, "250 OK")
	m := newTestMailer(relay.addr.IP.String(), relay.addr.Port)

	require.NoError(t, m.Send(context.Background(), testMessage))

	select {
	case data := <-relay.received:
		assert.Contains(t, data, "Subject: Your ColorMuse Books Order")
		assert.Contains(t, data, "Thanks!")
	case <-time.After(5 * time.Second):
		t.Fatal("relay received no message")
	}
}

func TestSend_ClassifiesRelayRejections(t *testing.T) {
	tests := []struct {
		name      string
		rcptReply string
		permanent bool
	}{
		{name: "mailbox unavailable", rcptReply: "550 5.1.1 mailbox unavailable", permanent: true},
		{name: "try later", rcptReply: "451 4.3.0 try later", permanent: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := startRelay(t, tt.rcptReply)
			m := newTestMailer(relay.addr.IP.String(), relay.addr.Port)

			err := m.Send(context.Background(), testMessage)
			require.Error(t, err)
			assert.Equal(t, tt.permanent, retry.IsPermanent(err))
		})
	}
}

func TestClassify(t *testing.T) {
	perm := classify("smtp rcpt to", &textproto.Error{Code: 550, Msg: "mailbox unavailable"})
	assert.True(t, retry.IsPermanent(perm))
	assert.ErrorContains(t, perm, "550")

	temp := classify("smtp rcpt to", &textproto.Error{Code: 451, Msg: "try later"})
	assert.False(t, retry.IsPermanent(temp))

	other := classify("smtp auth", errors.New("connection reset"))
	assert.False(t, retry.IsPermanent(other))
}
