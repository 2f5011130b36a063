// Package integration contains end-to-end tests for the OpenFlow
// control channel.
//
// This file (controlchannel_e2e_test.go) drives two managers joined by
// an in-memory pipe, one in the controller role and one in the agent
// role, exchanging live protocol traffic through the public message
// and transport APIs.
package integration

import (
	"testing"
	"time"

	"github.com/maoweiqiang/indigo/pkg/message"
	"github.com/maoweiqiang/indigo/pkg/transport"
)

// channelPair is a controller and an agent joined by a pipe, with the
// messages each side's handler received.
type channelPair struct {
	t          *testing.T
	pipe       *transport.Pipe
	controller *transport.Manager
	agent      *transport.Manager

	atController chan *transport.ReceivedMessage
	atAgent      chan *transport.ReceivedMessage

	controllerConn *transport.Conn
	agentConn      *transport.Conn
}

// newChannelPair starts a manager on each end of a pipe and waits for
// the handshake to settle on both sides.
func newChannelPair(t *testing.T, controllerMax, agentMax message.Version) *channelPair {
	t.Helper()

	p := &channelPair{
		t:            t,
		atController: make(chan *transport.ReceivedMessage, 16),
		atAgent:      make(chan *transport.ReceivedMessage, 16),
	}

	controllerReady := make(chan *transport.Conn, 1)
	agentReady := make(chan *transport.Conn, 1)

	var err error
	p.controller, err = transport.New(transport.Config{
		Handler:    func(msg *transport.ReceivedMessage) { p.atController <- msg },
		MaxVersion: controllerMax,
		OnConnStateChange: func(c *transport.Conn, s transport.ConnState) {
			if s == transport.StateReady {
				controllerReady <- c
			}
		},
	})
	if err != nil {
		t.Fatalf("create controller manager: %v", err)
	}

	p.agent, err = transport.New(transport.Config{
		Handler:    func(msg *transport.ReceivedMessage) { p.atAgent <- msg },
		MaxVersion: agentMax,
		OnConnStateChange: func(c *transport.Conn, s transport.ConnState) {
			if s == transport.StateReady {
				agentReady <- c
			}
		},
	})
	if err != nil {
		t.Fatalf("create agent manager: %v", err)
	}

	p.pipe = transport.NewPipe()
	p.controller.AddConn(p.pipe.Conn0())
	p.agent.AddConn(p.pipe.Conn1())

	p.controllerConn = waitReady(t, controllerReady, "controller")
	p.agentConn = waitReady(t, agentReady, "agent")

	t.Cleanup(func() {
		p.controller.Stop()
		p.agent.Stop()
		p.pipe.Close()
	})

	return p
}

func waitReady(t *testing.T, ch chan *transport.Conn, side string) *transport.Conn {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the %s handshake", side)
		return nil
	}
}

func (p *channelPair) recvAtAgent() message.Message {
	p.t.Helper()
	select {
	case m := <-p.atAgent:
		return m.Msg
	case <-time.After(5 * time.Second):
		p.t.Fatal("timed out waiting for a message at the agent")
		return nil
	}
}

func (p *channelPair) recvAtController() message.Message {
	p.t.Helper()
	select {
	case m := <-p.atController:
		return m.Msg
	case <-time.After(5 * time.Second):
		p.t.Fatal("timed out waiting for a message at the controller")
		return nil
	}
}

// TestE2E_HandshakeSelectsCommonVersion verifies that both sides settle
// on the lower of the two offered versions.
func TestE2E_HandshakeSelectsCommonVersion(t *testing.T) {
	tests := []struct {
		name          string
		controllerMax message.Version
		agentMax      message.Version
		want          message.Version
	}{
		{"equal versions", message.Version13, message.Version13, message.Version13},
		{"older agent wins", message.Version13, message.Version10, message.Version10},
		{"older controller wins", message.Version10, message.Version15, message.Version10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newChannelPair(t, tc.controllerMax, tc.agentMax)

			if got := p.controllerConn.Version(); got != tc.want {
				t.Errorf("controller negotiated %s, want %s", got, tc.want)
			}
			if got := p.agentConn.Version(); got != tc.want {
				t.Errorf("agent negotiated %s, want %s", got, tc.want)
			}
			if got := p.controllerConn.State(); got != transport.StateReady {
				t.Errorf("controller state = %v, want Ready", got)
			}
			if got := p.agentConn.State(); got != transport.StateReady {
				t.Errorf("agent state = %v, want Ready", got)
			}
		})
	}
}

// TestE2E_FlowModBothPlacements sends a flow-mod under each command
// placement and reads the command back on the far side.
func TestE2E_FlowModBothPlacements(t *testing.T) {
	t.Run("1.0 command at offset 56", func(t *testing.T) {
		p := newChannelPair(t, message.Version10, message.Version10)

		fm := message.New(message.Version10, message.TypeFlowMod, p.controllerConn.NextXID(), 72-message.HeaderSize)
		fm.SetFlowModCommand(message.Version10, message.FlowModAdd)
		if err := p.controllerConn.Send(fm); err != nil {
			t.Fatalf("send flow mod: %v", err)
		}

		got := p.recvAtAgent()
		if got.Type() != message.TypeFlowMod {
			t.Fatalf("received type = %v, want FlowMod", got.Type())
		}
		if cmd := got.FlowModCommand(message.Version10); cmd != message.FlowModAdd {
			t.Errorf("received command = %v, want Add", cmd)
		}
	})

	t.Run("1.3 command at offset 25", func(t *testing.T) {
		p := newChannelPair(t, message.Version13, message.Version13)

		fm := message.New(message.Version13, message.TypeFlowMod, p.controllerConn.NextXID(), 48)
		fm.SetFlowModCommand(message.Version13, message.FlowModDeleteStrict)
		if err := p.controllerConn.Send(fm); err != nil {
			t.Fatalf("send flow mod: %v", err)
		}

		got := p.recvAtAgent()
		if got.Type() != message.TypeFlowMod {
			t.Fatalf("received type = %v, want FlowMod", got.Type())
		}
		if cmd := got.FlowModCommand(message.Version13); cmd != message.FlowModDeleteStrict {
			t.Errorf("received command = %v, want DeleteStrict", cmd)
		}
	})
}

// TestE2E_EchoKeepsChannelAlive verifies the manager answers echo
// requests below the handler, with the peer seeing its payload echoed.
func TestE2E_EchoKeepsChannelAlive(t *testing.T) {
	p := newChannelPair(t, message.Version13, message.Version13)

	xid := p.agentConn.NextXID()
	req := message.New(message.Version13, message.TypeEchoRequest, xid, 4)
	copy(req.Payload(), []byte{0xCA, 0xFE, 0xF0, 0x0D})
	if err := p.agentConn.Send(req); err != nil {
		t.Fatalf("send echo request: %v", err)
	}

	reply := p.recvAtAgent()
	if reply.Type() != message.TypeEchoReply {
		t.Fatalf("received type = %v, want EchoReply", reply.Type())
	}
	if reply.XID() != xid {
		t.Errorf("reply xid = %d, want %d", reply.XID(), xid)
	}
	if got := reply.Payload(); len(got) != 4 || got[0] != 0xCA || got[1] != 0xFE || got[2] != 0xF0 || got[3] != 0x0D {
		t.Errorf("reply payload = %x, want cafef00d", got)
	}

	// The controller's handler never saw the request.
	select {
	case m := <-p.atController:
		t.Errorf("controller handler received %v", m.Msg.Type())
	default:
	}
}

// TestE2E_BarrierXIDCorrelation round-trips a barrier through both
// handlers, correlating request and reply by transaction id.
func TestE2E_BarrierXIDCorrelation(t *testing.T) {
	p := newChannelPair(t, message.Version13, message.Version13)

	xid := p.controllerConn.NextXID()
	if err := p.controllerConn.Send(message.New(message.Version13, message.TypeBarrierRequest, xid, 0)); err != nil {
		t.Fatalf("send barrier request: %v", err)
	}

	req := p.recvAtAgent()
	if req.Type() != message.TypeBarrierRequest {
		t.Fatalf("agent received %v, want BarrierRequest", req.Type())
	}
	if err := p.agentConn.Send(message.New(message.Version13, message.TypeBarrierReply, req.XID(), 0)); err != nil {
		t.Fatalf("send barrier reply: %v", err)
	}

	reply := p.recvAtController()
	if reply.Type() != message.TypeBarrierReply {
		t.Fatalf("controller received %v, want BarrierReply", reply.Type())
	}
	if reply.XID() != xid {
		t.Errorf("reply xid = %d, want %d", reply.XID(), xid)
	}
}

// TestE2E_StatsAndExperimenter delivers a multipart request and an
// experimenter message and reads their version-dependent fields on the
// far side, including the stats-type bytes an experimenter id overlaps.
func TestE2E_StatsAndExperimenter(t *testing.T) {
	p := newChannelPair(t, message.Version13, message.Version13)

	stats := message.New(message.Version13, message.TypeMultipartRequest, p.controllerConn.NextXID(), 8)
	stats.SetStatsType(message.StatsPortStats)
	if err := p.controllerConn.Send(stats); err != nil {
		t.Fatalf("send multipart request: %v", err)
	}

	got := p.recvAtAgent()
	if got.Type() != message.TypeMultipartRequest {
		t.Fatalf("received type = %v, want MultipartRequest", got.Type())
	}
	if st := got.StatsType(); st != message.StatsPortStats {
		t.Errorf("received stats type = %v, want PortStats", st)
	}

	exp := message.New(message.Version13, message.TypeExperimenter, p.controllerConn.NextXID(), 8)
	exp.SetExperimenterID(0xAABBCCDD)
	exp.SetExperimenterSubtype(7)
	if err := p.controllerConn.Send(exp); err != nil {
		t.Fatalf("send experimenter: %v", err)
	}

	got = p.recvAtAgent()
	if got.Type() != message.TypeExperimenter {
		t.Fatalf("received type = %v, want Experimenter", got.Type())
	}
	if id := got.ExperimenterID(); id != 0xAABBCCDD {
		t.Errorf("received experimenter id = %#x, want 0xaabbccdd", id)
	}
	if sub := got.ExperimenterSubtype(); sub != 7 {
		t.Errorf("received experimenter subtype = %d, want 7", sub)
	}
	// The id's high half occupies the stats-type bytes.
	if st := got.StatsType(); st != message.StatsType(0xAABB) {
		t.Errorf("received stats type bytes = %#x, want 0xaabb", uint16(st))
	}
}
